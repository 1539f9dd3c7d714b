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
	"math"
	"net/http"
	"time"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/recorder"
)

// StatRequest 外部量測的原始耗時（秒），伺服端只負責統計
type StatRequest struct {
	Algorithm  string    `json:"algorithm"`
	ZeroWeight string    `json:"zero_weight"`
	Features   int       `json:"features"`
	Workers    int       `json:"workers"`
	Seed       int64     `json:"seed"`
	Blocks     int       `json:"blocks"`
	Samples    []float64 `json:"samples"`
}

// maxSampleSec 單筆樣本上限：超過會讓 time.Duration（int64 奈秒）溢位
const maxSampleSec = float64(math.MaxInt64) / float64(time.Second)

// Stat POST /v1/stat：把外部量測的樣本轉成與 bench 相同格式的 TimingReport
func (h *Handler) Stat(w http.ResponseWriter, r *http.Request) {
	req := new(StatRequest)
	if err := h.decodeJSON(w, r, req); err != nil {
		h.fail(w, r, err)
		return
	}
	if len(req.Samples) < 1 {
		h.fail(w, r, errs.InvalidArgf("samples must not be empty"))
		return
	}
	if req.Workers < 1 {
		req.Workers = 1
	}
	rec, err := recorder.NewTimingRecorder(req.Algorithm, req.ZeroWeight, req.Features, req.Workers, req.Seed)
	if err != nil {
		// recorder 的參數錯誤在這裡是請求問題
		h.fail(w, r, errs.WrapWarn(err, "invalid stat request"))
		return
	}
	for i, sec := range req.Samples {
		if !(sec >= 0 && sec < maxSampleSec) {
			h.fail(w, r, errs.InvalidArgf("samples[%d] must be in [0, %.0f) seconds, got %v", i, maxSampleSec, sec))
			return
		}
		rec.Record(time.Duration(sec*float64(time.Second)), req.Blocks)
	}
	h.writeJSON(w, r, http.StatusOK, rec.Done())
}
