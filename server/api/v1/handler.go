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

// Package v1 是 pavalab HTTP API 的第一版處理器：fit、bench、selftest、profiles、metrics、stat。
package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/pavalab"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/server/httperr"
	"github.com/zintix-labs/pavalab/server/netsvr"
	"github.com/zintix-labs/pavalab/server/netsvr/middleware"
	"github.com/zintix-labs/pavalab/server/svrcfg"
)

// Handler 持有 v1 所有路由共用的依賴
type Handler struct {
	rt  *pavalab.FitRuntime
	lab *pavalab.Lab
	cfg *svrcfg.SvrCfg
	log *slog.Logger
}

// NewHandler sCfg 需先通過 Valid()
func NewHandler(sCfg *svrcfg.SvrCfg, rt *pavalab.FitRuntime) (*Handler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("server config with lab is required")
	}
	if rt == nil {
		return nil, errs.NewFatal("fit runtime is required")
	}
	return &Handler{rt: rt, lab: sCfg.Lab, cfg: sCfg, log: sCfg.Log}, nil
}

// Register 把 v1 路由掛在 r 底下
func (h *Handler) Register(r netsvr.NetRouter) {
	r.Post("/fit", h.Fit)
	r.Get("/bench", h.Bench)
	r.Post("/bench", h.Bench)
	r.Get("/selftest", h.SelfTest)
	r.Get("/profiles", h.Profiles)
	r.Get("/metrics", h.Metrics)
	r.Post("/stat", h.Stat)
}

// decodeJSON 限制 body 大小並拒絕未知欄位
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errs.InvalidArgf("request body exceeds %d bytes", mbe.Limit)
		}
		return errs.WrapWarn(err, "read request body failed")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.WrapWarn(err, "invalid json")
	}
	return nil
}

// writeJSON 先編碼到記憶體再寫出，避免寫到一半才出錯
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(v); err != nil {
		h.fail(w, r, errs.Wrap(err, "encode response failed"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b.Bytes())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperr.Log(h.log, "api.v1 "+r.URL.Path, err)
	httperr.Errs(w, err, middleware.GetReqId(r))
}
