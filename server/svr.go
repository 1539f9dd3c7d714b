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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/server/api"
	"github.com/zintix-labs/pavalab/server/app"
	"github.com/zintix-labs/pavalab/server/netsvr"
	"github.com/zintix-labs/pavalab/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（包含必要依賴，例如 logger 與 Lab）。
//  2. 建立 HTTP server（netsvr）與 FitRuntime（求解器池）。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 執行 App 直到收到 SIGINT/SIGTERM，回傳停止原因。
//
// Run 不綁定任何檔案路徑或環境變數策略；所有依賴都透過 SvrCfg 注入。
func Run(sCfg *svrcfg.SvrCfg) error {
	return RunContext(context.Background(), sCfg, nil)
}

// RunWithSvr 與 Run 相同，但由呼叫端注入自訂的 NetSvr（例如另外包裝的 adapter 或既有服務的路由）。
//
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	return RunContext(context.Background(), sCfg, svr)
}

// RunContext 由 ctx 或系統信號觸發關閉。svr 為 nil 時以 sCfg.Addr 建立預設 ChiAdapter。
func RunContext(ctx context.Context, sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的 logger 不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		svr = netsvr.NewChiServer(sCfg.Addr)
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	rt, err := sCfg.Lab.BuildRuntime(sCfg.PoolSize)
	if err != nil {
		sCfg.Log.Error("build fit runtime failed", slog.Any("err", err))
		return err
	}

	// 註冊 Api
	if err := api.RegisterRoutes(svr, sCfg, rt); err != nil {
		rt.Close()
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}

	// 運行：server 先關、runtime 後關（反向關閉）
	a := app.NewWith(app.NewCloser(rt.Close), svr).WithLogger(sCfg.Log)
	if c, ok := svr.(*netsvr.ChiAdapter); ok {
		sCfg.Log.Info("[pavalab] listening on http://localhost"+c.Address(), slog.Int("pool", sCfg.PoolSize))
	} else {
		sCfg.Log.Info("[pavalab] listening", slog.Int("pool", sCfg.PoolSize))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.RunContext(ctx); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[pavalab] stopped", slog.String("reason", rt.ClosedReason()))
	return nil
}
