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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/pavalab/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("wrap: %w", context.Canceled), http.StatusRequestTimeout},
		{errs.Canceled(nil, "stop"), http.StatusRequestTimeout},
		{errs.DivByZerof("pool [0,2) has zero weight"), http.StatusUnprocessableEntity},
		{errs.InvalidArgf("bad len"), http.StatusBadRequest},
		{errs.NewWarn("meh"), http.StatusBadRequest},
		{errs.NewFatal("boom"), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for i, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("case %d (%v): got %d want %d", i, c.err, got, c.want)
		}
	}
}

func TestErrsWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Errs(rec, errs.InvalidArgf("y and weights differ in length"), "req-1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code got %d", rec.Code)
	}
	var b Body
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Kind != "invalid_argument" || b.RequestID != "req-1" || !strings.Contains(b.Error, "differ in length") {
		t.Fatalf("unexpected body: %+v", b)
	}

	rec = httptest.NewRecorder()
	Errs(rec, nil, "")
	if rec.Body.Len() != 0 {
		t.Fatalf("nil error must not write")
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	Log(log, "bad input", errs.InvalidArgf("x"))
	if buf.Len() != 0 {
		t.Fatalf("4xx input errors should not be logged: %s", buf.String())
	}
	Log(log, "timeout", context.Canceled)
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("expected warn: %s", buf.String())
	}
	buf.Reset()
	Log(log, "crash", errs.NewFatal("boom"))
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("expected error: %s", buf.String())
	}
}
