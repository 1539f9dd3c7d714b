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
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/zintix-labs/pavalab"
	"github.com/zintix-labs/pavalab/pava"
)

// FitResponse 擬合結果與伺服端耗時（微秒）。
// propagate 模式下零權重區段的值是 NaN，JSON 以 null 表示。
type FitResponse struct {
	Fitted   Floats      `json:"fitted"`
	Blocks   []BlockJSON `json:"blocks"`
	Monotone bool        `json:"monotone"`
	UsedUs   int64       `json:"used_us"`
}

// BlockJSON 與 pava.Block 相同，但 Value 可為 null
type BlockJSON struct {
	Start  int      `json:"start"`
	End    int      `json:"end"`
	Weight float64  `json:"weight"`
	Value  *float64 `json:"value"`
}

// Floats 非有限值（NaN/Inf）編碼成 null
type Floats []float64

func (f Floats) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	b := make([]byte, 0, 2+len(f)*8)
	b = append(b, '[')
	for i, v := range f {
		if i > 0 {
			b = append(b, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b = append(b, "null"...)
			continue
		}
		b = strconv.AppendFloat(b, v, 'g', -1, 64)
	}
	return append(b, ']'), nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Fit POST /v1/fit
//
//	{"y":[1,41,51,1,2,5,24],"weights":[1,2,3,4,5,6,7],"algorithm":"stack"}
func (h *Handler) Fit(w http.ResponseWriter, r *http.Request) {
	req := new(pavalab.FitRequest)
	if err := h.decodeJSON(w, r, req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.FitTimeout)
	defer cancel()

	start := time.Now()
	res, err := h.rt.Fit(ctx, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, NewFitResponse(res, time.Since(start)))
}

// NewFitResponse 把求解結果轉成可安全編碼的 JSON 形狀
func NewFitResponse(res *pava.Result, used time.Duration) FitResponse {
	blocks := make([]BlockJSON, len(res.Blocks))
	for i, b := range res.Blocks {
		blocks[i] = BlockJSON{Start: b.Start, End: b.End, Weight: b.Weight, Value: finite(b.Value)}
	}
	return FitResponse{
		Fitted:   Floats(res.Fitted),
		Blocks:   blocks,
		Monotone: pava.IsMonotone(res.Fitted, 0),
		UsedUs:   used.Microseconds(),
	}
}
