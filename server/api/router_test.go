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
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zintix-labs/pavalab"
	v1 "github.com/zintix-labs/pavalab/server/api/v1"
	"github.com/zintix-labs/pavalab/server/httperr"
	"github.com/zintix-labs/pavalab/server/netsvr"
	"github.com/zintix-labs/pavalab/server/svrcfg"
	"github.com/zintix-labs/pavalab/stats"
)

type testSvr struct {
	h  http.Handler
	rt *pavalab.FitRuntime
}

func newTestSvr(t *testing.T, mutate func(*svrcfg.SvrCfg)) *testSvr {
	t.Helper()
	lab, err := pavalab.NewAuto(nil, pavalab.Configs(fstest.MapFS{
		"tiny.yaml":      {Data: []byte("num_features: 64\nnum_iterations: 3\nseed: 7\n")},
		"multipass.yaml": {Data: []byte("num_features: 32\nnum_iterations: 2\nalgorithm: multipass\nseed: 9\n")},
	}))
	require.NoError(t, err)

	sc := &svrcfg.SvrCfg{
		Log:                slog.New(slog.NewTextHandler(io.Discard, nil)),
		Lab:                lab,
		PoolSize:           2,
		MaxBenchFeatures:   10_000,
		MaxBenchIterations: 10,
	}
	if mutate != nil {
		mutate(sc)
	}
	require.NoError(t, sc.Valid())

	rt, err := lab.BuildRuntime(sc.PoolSize)
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	svr := netsvr.NewChiServer(":0")
	require.NoError(t, RegisterRoutes(svr, sc, rt))
	return &testSvr{h: svr.Handler(), rt: rt}
}

func (s *testSvr) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) httperr.Body {
	t.Helper()
	var b httperr.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

func TestHealthz(t *testing.T) {
	s := newTestSvr(t, nil)
	rec := s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	s.rt.Close()
	rec = s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFitEndpoint(t *testing.T) {
	s := newTestSvr(t, nil)

	rec := s.do(t, http.MethodPost, "/v1/fit", `{"y":[1,41,51,1,2,5,24],"weights":[1,2,3,4,5,6,7]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Fitted   []float64      `json:"fitted"`
		Blocks   []v1.BlockJSON `json:"blocks"`
		Monotone bool           `json:"monotone"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	want := []float64{1, 13.95, 13.95, 13.95, 13.95, 13.95, 24}
	require.Len(t, got.Fitted, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got.Fitted[i], 1e-9, "index %d", i)
	}
	assert.True(t, got.Monotone)
	require.Len(t, got.Blocks, 3)
	assert.Equal(t, 1, got.Blocks[1].Start)
	assert.Equal(t, 6, got.Blocks[1].End)

	// multipass 結果一致
	rec = s.do(t, http.MethodPost, "/v1/fit", `{"y":[3,2,1,4],"weights":[1,1,1,1],"algorithm":"multipass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"fitted":[2,2,2,4]`)

	m := s.rt.Metrics()
	assert.Equal(t, int64(2), m.Served)
	assert.Equal(t, 2, m.PoolSize)
}

func TestFitEndpointErrors(t *testing.T) {
	s := newTestSvr(t, func(sc *svrcfg.SvrCfg) { sc.MaxBodyBytes = 256 })

	rec := s.do(t, http.MethodPost, "/v1/fit", `{"y":[1,2,3],"weights":[1,1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_argument", decodeErr(t, rec).Kind)

	rec = s.do(t, http.MethodPost, "/v1/fit", `{"y":[2,1],"weights":[0,0]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "division_by_zero", decodeErr(t, rec).Kind)

	rec = s.do(t, http.MethodPost, "/v1/fit", `{"y":[1],"weights":[1],"bogus":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/fit", `{"y":[1],"weights":[1],"algorithm":"quick"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := `{"y":[` + strings.Repeat("1,", 200) + `1],"weights":[1]}`
	rec = s.do(t, http.MethodPost, "/v1/fit", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErr(t, rec).Error, "exceeds 256 bytes")

	rec = s.do(t, http.MethodGet, "/v1/fit", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFitPropagateEncodesNull(t *testing.T) {
	s := newTestSvr(t, nil)
	rec := s.do(t, http.MethodPost, "/v1/fit", `{"y":[2,1,5],"weights":[0,0,1],"zero_weight":"propagate"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"fitted":[null,null,5]`)
	assert.Contains(t, rec.Body.String(), `"monotone":false`)
}

func TestBenchEndpoint(t *testing.T) {
	s := newTestSvr(t, nil)

	rec := s.do(t, http.MethodGet, "/v1/bench?profile=tiny", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got struct {
		Profile string              `json:"profile"`
		Report  *stats.TimingReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "tiny", got.Profile)
	assert.Equal(t, 3, got.Report.Summary.Iterations)
	assert.Equal(t, 64, got.Report.Summary.Features)
	assert.Equal(t, int64(7), got.Report.Summary.Seed)

	rec = s.do(t, http.MethodPost, "/v1/bench", `{"setting":{"num_features":16,"num_iterations":2,"workers":2},"seed":11}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Report.Summary.Iterations)
	assert.Equal(t, int64(11), got.Report.Summary.Seed)
	assert.Equal(t, "stack", got.Report.Summary.Algorithm)
}

func TestBenchEndpointErrors(t *testing.T) {
	s := newTestSvr(t, nil)
	cases := map[string]string{
		"missing":   `{}`,
		"both":      `{"profile":"tiny","setting":{"num_features":4}}`,
		"unknown":   `{"profile":"nope"}`,
		"too_big":   `{"setting":{"num_features":20000}}`,
		"too_many":  `{"setting":{"num_features":4,"num_iterations":11}}`,
		"bad_field": `{"setting":{"features":4}}`,
	}
	for name, body := range cases {
		rec := s.do(t, http.MethodPost, "/v1/bench", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s: %s", name, rec.Body.String())
	}
	rec := s.do(t, http.MethodGet, "/v1/bench", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, "/v1/bench?profile=tiny&seed=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelfTestProfilesMetricsStat(t *testing.T) {
	s := newTestSvr(t, nil)

	for _, q := range []string{"", "?algorithm=multipass"} {
		rec := s.do(t, http.MethodGet, "/v1/selftest"+q, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"passed":true`)
	}
	rec := s.do(t, http.MethodGet, "/v1/selftest?algorithm=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var profiles []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	require.Len(t, profiles, 2)
	assert.Equal(t, "multipass", profiles[0]["name"])
	assert.Equal(t, "tiny", profiles[1]["name"])

	rec = s.do(t, http.MethodGet, "/v1/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pool_size":2`)

	rec = s.do(t, http.MethodPost, "/v1/stat", `{"algorithm":"stack","features":1000,"samples":[0.004,0.001,0.003,0.002]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rep stats.TimingReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 4, rep.Summary.Iterations)
	assert.InDelta(t, 0.0025, rep.Summary.Avg, 1e-9)
	assert.InDelta(t, 0.001, rep.Summary.Min, 1e-9)

	rec = s.do(t, http.MethodPost, "/v1/stat", `{"samples":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/v1/stat", `{"samples":[-1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/v1/stat", `{"samples":[0.001,1e300]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeErr(t, rec).Error, "samples[1]")
	rec = s.do(t, http.MethodPost, "/v1/stat", `{"features":-1,"samples":[1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRoutesRequiresRuntime(t *testing.T) {
	lab, err := pavalab.NewAuto(nil, pavalab.Configs(fstest.MapFS{"a.yaml": {Data: []byte("seed: 1\n")}}))
	require.NoError(t, err)
	sc := &svrcfg.SvrCfg{Lab: lab, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	require.NoError(t, sc.Valid())
	assert.Error(t, RegisterRoutes(netsvr.NewChiServer(":0"), sc, nil))
}

