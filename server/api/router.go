// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"log/slog"
	"net/http"

	"github.com/zintix-labs/pavalab"
	v1 "github.com/zintix-labs/pavalab/server/api/v1"
	"github.com/zintix-labs/pavalab/server/netsvr"
	"github.com/zintix-labs/pavalab/server/netsvr/middleware"
	"github.com/zintix-labs/pavalab/server/svrcfg"
)

// RegisterRoutes 註冊 middleware、健康檢查與 v1 api。sCfg 需先通過 Valid()。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, rt *pavalab.FitRuntime) error {
	h, err := v1.NewHandler(sCfg, rt)
	if err != nil {
		return err
	}
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerHealth(svr, rt)           // 2. 健康檢查
	registerV1API(svr, h)             // 3. 註冊 v1 api
	return nil
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.RecoverWith(log))
	svr.Use(middleware.Compression)
}

// runtime 關閉後回 503，讓負載平衡摘掉此節點
func registerHealth(svr netsvr.NetSvr, rt *pavalab.FitRuntime) {
	svr.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if rt.Closed() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("closed: " + rt.ClosedReason() + "\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, h *v1.Handler) {
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		h.Register(vOne)
	})
}
