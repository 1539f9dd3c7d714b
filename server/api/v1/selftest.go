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
	"net/http"

	"github.com/zintix-labs/pavalab/bench"
	"github.com/zintix-labs/pavalab/pava"
	"github.com/zintix-labs/pavalab/server/netsvr/middleware"
)

// SelfTestResponse 不論成敗都帶回報表；失敗時另附錯誤訊息
type SelfTestResponse struct {
	Report *bench.SelfTestReport `json:"report"`
	Error  string                `json:"error,omitempty"`
}

// SelfTest GET /v1/selftest?algorithm=multipass
func (h *Handler) SelfTest(w http.ResponseWriter, r *http.Request) {
	o := h.lab.Options()
	if a := r.URL.Query().Get("algorithm"); a != "" {
		alg, err := pava.ParseAlgorithm(a)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		o.Algorithm = alg
	}
	rep, err := bench.SelfTest(&o)
	if err != nil {
		if rep == nil {
			h.fail(w, r, err)
			return
		}
		h.log.Error("selftest failed", "req_id", middleware.GetReqId(r), "err", err)
		h.writeJSON(w, r, http.StatusInternalServerError, SelfTestResponse{Report: rep, Error: err.Error()})
		return
	}
	h.writeJSON(w, r, http.StatusOK, SelfTestResponse{Report: rep})
}

// Profiles GET /v1/profiles
func (h *Handler) Profiles(w http.ResponseWriter, r *http.Request) {
	sum, err := h.lab.Summary()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, sum)
}

// Metrics GET /v1/metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.rt.Metrics())
}
