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

package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/zintix-labs/pavalab/bench"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/stats"
)

// BenchRequest 指定 profile，或直接給 setting（兩者擇一）。Seed 非 nil 時覆蓋設定中的種子。
//
// setting 以 bench.ParseSettingJSON 嚴格解析，未給的欄位沿用預設值。
type BenchRequest struct {
	Profile string          `json:"profile,omitempty"`
	Setting json.RawMessage `json:"setting,omitempty"`
	Seed    *int64          `json:"seed,omitempty"`
}

type BenchResponse struct {
	Profile  string              `json:"profile,omitempty"`
	Setting  bench.Setting       `json:"setting"`
	Report   *stats.TimingReport `json:"report"`
	UsedTime int64               `json:"used_ms"`
}

// Bench GET /v1/bench?profile=default&seed=42 或 POST /v1/bench
func (h *Handler) Bench(w http.ResponseWriter, r *http.Request) {
	req := new(BenchRequest)
	switch r.Method {
	case http.MethodGet:
		req.Profile = r.URL.Query().Get("profile")
		if req.Profile == "" {
			h.fail(w, r, errs.InvalidArgf("profile is required"))
			return
		}
		if s := r.URL.Query().Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				h.fail(w, r, errs.InvalidArgf("seed must be int64"))
				return
			}
			req.Seed = &v
		}
	case http.MethodPost:
		if err := h.decodeJSON(w, r, req); err != nil {
			h.fail(w, r, err)
			return
		}
	default:
		h.fail(w, r, errs.InvalidArgf("method not allowed"))
		return
	}

	s, err := h.resolveSetting(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.lab.NewBenchmark(s)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.BenchTimeout)
	defer cancel()
	rep, used, err := b.Run(ctx, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, BenchResponse{
		Profile:  req.Profile,
		Setting:  b.Setting(),
		Report:   rep,
		UsedTime: used.Milliseconds(),
	})
}

// resolveSetting 產生一份已驗證、且在伺服器上限內的設定副本
func (h *Handler) resolveSetting(req *BenchRequest) (*bench.Setting, error) {
	var s *bench.Setting
	hasSetting := len(req.Setting) > 0 && string(req.Setting) != "null"
	switch {
	case req.Profile != "" && hasSetting:
		return nil, errs.InvalidArgf("profile and setting are mutually exclusive")
	case req.Profile != "":
		ps, err := h.lab.Setting(req.Profile)
		if err != nil {
			return nil, err
		}
		s = ps
	case hasSetting:
		ps, err := bench.ParseSettingJSON(req.Setting)
		if err != nil {
			return nil, err
		}
		s = ps
	default:
		return nil, errs.InvalidArgf("profile or setting is required")
	}
	if req.Seed != nil {
		s.Seed = *req.Seed
	}
	if err := s.Valid(); err != nil {
		return nil, err
	}
	if s.NumFeatures > h.cfg.MaxBenchFeatures {
		return nil, errs.InvalidArgf("num_features must be <= %d, got %d", h.cfg.MaxBenchFeatures, s.NumFeatures)
	}
	if s.NumIterations > h.cfg.MaxBenchIterations {
		return nil, errs.InvalidArgf("num_iterations must be <= %d, got %d", h.cfg.MaxBenchIterations, s.NumIterations)
	}
	return s, nil
}
