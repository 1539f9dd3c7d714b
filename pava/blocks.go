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

package pava

import (
	"math"

	"github.com/zintix-labs/pavalab/errs"
	"gonum.org/v1/gonum/floats"
)

// Blocks 從擬合序列切出 pool：相鄰且值完全相同（NaN 視為相同）的最大區段。
// w 只用於計算每段的權重和；len(w) 必須等於 len(fitted)，否則回傳 nil。
func Blocks(fitted, w []float64) []Block {
	if len(fitted) != len(w) {
		return nil
	}
	out := make([]Block, 0, 8)
	start := 0
	for i := 1; i <= len(fitted); i++ {
		if i < len(fitted) && sameValue(fitted[i], fitted[start]) {
			continue
		}
		out = append(out, Block{
			Start:  start,
			End:    i,
			Weight: floats.Sum(w[start:i]),
			Value:  fitted[start],
		})
		start = i
	}
	return out
}

func sameValue(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// IsMonotone 回報 y 是否單調不減（允許 tol 誤差）。NaN 視為不單調。
func IsMonotone(y []float64, tol float64) bool {
	for i := 0; i+1 < len(y); i++ {
		if math.IsNaN(y[i]) || math.IsNaN(y[i+1]) {
			return false
		}
		if y[i] > y[i+1]+tol {
			return false
		}
	}
	return true
}

// WeightedSSE 回傳 Σ w[i]·(y[i]−fitted[i])²，也就是保序迴歸要最小化的目標值。
func WeightedSSE(y, fitted, w []float64) (float64, error) {
	if len(y) != len(fitted) || len(y) != len(w) {
		return 0, errs.InvalidArgf("length mismatch: y=%d fitted=%d weights=%d", len(y), len(fitted), len(w))
	}
	if len(y) == 0 {
		return 0, nil
	}
	diff := make([]float64, len(y))
	floats.SubTo(diff, y, fitted)
	floats.Mul(diff, diff)
	return floats.Dot(w, diff), nil
}

// Uniform 回傳長度 n、每個元素皆為 v 的權重。
func Uniform(n int, v float64) []float64 {
	w := make([]float64, max(0, n))
	for i := range w {
		w[i] = v
	}
	return w
}
