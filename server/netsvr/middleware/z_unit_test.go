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
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var payload = strings.Repeat(`{"fitted":[1,13.95,13.95,13.95,13.95,13.95,24]}`, 50)

func jsonHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, payload)
	})
}

func TestCompressionZstd(t *testing.T) {
	h := Compression(jsonHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, zstd")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("encoding got %q", rec.Header().Get("Content-Encoding"))
	}
	dec, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("zstd read: %v", err)
	}
	if string(out) != payload {
		t.Fatalf("payload mismatch")
	}
}

func TestCompressionGzip(t *testing.T) {
	h, err := CompressionWith(CompressConfig{GzipLevel: gzip.BestSpeed, ZstdLevel: zstd.SpeedFastest})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h(jsonHandler()).ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("encoding got %q", rec.Header().Get("Content-Encoding"))
	}
	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	out, _ := io.ReadAll(gr)
	if string(out) != payload {
		t.Fatalf("payload mismatch")
	}
}

func TestCompressionBadConfigAndPassthrough(t *testing.T) {
	if _, err := CompressionWith(CompressConfig{GzipLevel: 42}); err == nil {
		t.Fatalf("expected invalid gzip level error")
	}

	rec := httptest.NewRecorder()
	Compression(jsonHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != payload {
		t.Fatalf("no Accept-Encoding must pass through")
	}

	noBody := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = httptest.NewRecorder()
	Compression(noBody).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("204 must not carry compressed footer: code=%d len=%d", rec.Code, rec.Body.Len())
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetReqId(r) == "" || GetReqIdNumPart(r) == "" {
			t.Errorf("request id missing in context")
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "short")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/fit", nil))
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatalf("response must echo request id")
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("access log not json: %v (%s)", err, buf.String())
	}
	if line["msg"] != "http.access" || line["level"] != "WARN" || line["status"].(float64) != 418 || line["bytes"].(float64) != 5 {
		t.Fatalf("unexpected access line: %v", line)
	}

	// 上游已帶 X-Request-Id 時沿用
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(HeaderRequestID) != "abc-42" {
		t.Fatalf("upstream id not kept: %q", rec.Header().Get(HeaderRequestID))
	}
}

func TestRecoverWith(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestID(RecoverWith(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("solver exploded")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "solver exploded") || !strings.Contains(buf.String(), "http.panic") {
		t.Fatalf("panic not reported: body=%s log=%s", rec.Body.String(), buf.String())
	}
}
