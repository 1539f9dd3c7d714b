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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : 錯誤種類，讓呼叫端可以用 errors.Is 判斷是哪一類輸入問題。
//
// Kind 與 ErrLevel 是兩個獨立維度：
//   - ErrLevel 表示嚴重度（決定是否中止、HTTP status）。
//   - Kind 表示原因（參數不合法、除以零…）。
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindDivisionByZero
	KindCanceled
)

var kindMap = map[Kind]string{
	KindUnknown:         "",
	KindInvalidArgument: "invalid_argument",
	KindDivisionByZero:  "division_by_zero",
	KindCanceled:        "canceled",
}

func (k Kind) String() string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return ""
}

// 哨兵錯誤：只用於 errors.Is 比對，不直接回傳。
var (
	ErrInvalidArgument = &E{Kind: KindInvalidArgument, ErrLv: Warn, Message: "invalid argument"}
	ErrDivisionByZero  = &E{Kind: KindDivisionByZero, ErrLv: Warn, Message: "division by zero"}
	ErrCanceled        = &E{Kind: KindCanceled, ErrLv: Warn, Message: "canceled"}
)

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重度；Kind 表示錯誤種類。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if k := e.Kind.String(); k != "" {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), k, e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 只要 Kind 相同（且非 KindUnknown）就視為相符，
// 因此 errors.Is(err, errs.ErrInvalidArgument) 不在意訊息內容。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	if t.Kind == KindUnknown {
		return e == t
	}
	return e.Kind == t.Kind
}

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// InvalidArgf 建立 Warn 等級、KindInvalidArgument 的錯誤（呼叫端給錯參數）。
func InvalidArgf(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Warn, Kind: KindInvalidArgument}
}

// DivByZerof 建立 Warn 等級、KindDivisionByZero 的錯誤。
func DivByZerof(format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Warn, Kind: KindDivisionByZero}
}

// Canceled 把 ctx.Err() 包成 KindCanceled，保留原始 cause 讓 errors.Is(err, context.Canceled) 仍可命中。
func Canceled(cause error, msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Kind: KindCanceled, Cause: cause}
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與種類）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E，而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindUnknown
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapWithExtra 同 Wrap，但另外附帶上下文字串。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

// WrapWarn 包裝外部錯誤並強制 Warn 等級（例如 JSON/YAML 解析失敗屬於請求問題）。
func WrapWarn(cause error, msg string) *E {
	r := Wrap(cause, msg)
	r.ErrLv = Warn
	if r.Kind == KindUnknown {
		r.Kind = KindInvalidArgument
	}
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
