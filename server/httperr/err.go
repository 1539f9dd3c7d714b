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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/pavalab/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel     → 504/408（請求生命週期問題）
//   - errs.KindCanceled      → 408
//   - errs.KindDivisionByZero → 422（輸入格式正確但無法求解）
//   - errs.Warn              → 400（請求/參數問題）
//   - errs.Fatal             → 500（系統/不可恢復問題）
//
// 注意：本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 core errs）。
func StatusCode(err error) int {
	status := http.StatusInternalServerError

	// 1) 先處理 context 取消/超時（即使被 wrap 也能被 errors.Is 命中）
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	default:
		// fallthrough
	}

	// 2) 再處理內部錯誤分級（errs.E/Wrap）
	var e *errs.E
	if errors.As(err, &e) {
		switch {
		case e.Kind == errs.KindCanceled:
			status = http.StatusRequestTimeout // 408
		case e.Kind == errs.KindDivisionByZero:
			status = http.StatusUnprocessableEntity // 422
		case e.ErrLv == errs.Warn:
			status = http.StatusBadRequest // 400
		case e.ErrLv == errs.Fatal:
			status = http.StatusInternalServerError // 500
		}
	}

	return status
}

// Body 是錯誤回應的 JSON 形狀。
type Body struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func kindOf(err error) string {
	var e *errs.E
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return ""
}

// Errs 寫回 JSON 錯誤。reqID 可為空。
func Errs(w http.ResponseWriter, err error, reqID string) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{Error: err.Error(), Kind: kindOf(err), RequestID: reqID})
}

func Log(log *slog.Logger, msg string, err error) {
	// 4xx 中只有生命週期/併發類值得 warn，其餘是呼叫端問題，不記錄。
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 409) || (status == 429) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}
