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

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/server/httperr"
)

// Recover 使用 chi 內建的 Recoverer（印 stack 到 stderr，回 500）
func Recover(next http.Handler) http.Handler {
	return chimid.Recoverer(next)
}

// RecoverWith 把 panic 記到 log，並以 JSON 錯誤回 500。
// http.ErrAbortHandler 照慣例重新 panic，讓 net/http 中斷連線。
func RecoverWith(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		return Recover
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				reqID := GetReqId(r)
				log.Error("http.panic",
					slog.String("req_id", reqID),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				if r.Header.Get("Connection") != "Upgrade" {
					httperr.Errs(w, errs.NewFatal(fmt.Sprintf("internal panic: %v", rec)), reqID)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
