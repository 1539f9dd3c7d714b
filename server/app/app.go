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

package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 5 * time.Second

type App struct {
	comps           []Component
	log             *slog.Logger
	shutdownTimeout time.Duration
}

func New() *App { return &App{shutdownTimeout: defaultShutdownTimeout} }

func NewWith(copms ...Component) *App {
	app := New()
	for _, c := range copms {
		app.Register(c)
	}
	return app
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// WithLogger 設定關閉過程使用的 logger（nil 則不記錄）
func (a *App) WithLogger(log *slog.Logger) *App {
	a.log = log
	return a
}

// WithShutdownTimeout 設定優雅關閉的等待上限，<=0 使用預設 5s
func (a *App) WithShutdownTimeout(td time.Duration) *App {
	if td <= 0 {
		td = defaultShutdownTimeout
	}
	a.shutdownTimeout = td
	return a
}

// Run 等待 SIGINT/SIGTERM 或任一 Component 錯誤後關閉全部 Component。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 與 Run 相同，但由 ctx 結束觸發關閉（測試與嵌入用）。
func (a *App) RunContext(ctx context.Context) error {
	// errCh 用於收集任一 Component 首次返回的錯誤
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	select {
	case <-ctx.Done():
		a.gracefulShutdown(a.shutdownTimeout)
		return nil
	case err := <-errCh:
		a.gracefulShutdown(a.shutdownTimeout)
		// Shutdown 造成的 ErrServerClosed 不算失敗
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	// 反向關閉：後註冊的通常依賴先註冊的
	for i := len(a.comps) - 1; i >= 0; i-- {
		if err := a.comps[i].Shutdown(ctx); err != nil && a.log != nil {
			a.log.Error("shutdown failed", slog.Any("err", err))
		}
	}
}
