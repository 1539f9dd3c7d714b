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

// Package datagen 產生基準測試與性質測試用的輸入序列。
package datagen

import (
	"slices"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/rng"
	"gonum.org/v1/gonum/stat/distuv"
)

// Logistic 產生長度 n 的 0/1 序列。
//
// 先抽 n 個標準常態值並排序，再對每個值 r 抽 u ~ U(0,1)，
// u < r 時為 1.0 否則為 0.0。排序後的 r 讓序列「大致遞增但有雜訊」。
// 相同 seed 產生相同序列。
func Logistic(n int, seed int64) ([]float64, error) {
	if n < 0 {
		return nil, errs.InvalidArgf("datagen: n must be >= 0, got %d", n)
	}
	src := rng.New(seed)
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	unif := distuv.Uniform{Min: 0, Max: 1, Src: src}

	out := make([]float64, n)
	for i := range out {
		out[i] = norm.Rand()
	}
	slices.Sort(out)
	for i, r := range out {
		if unif.Rand() < r {
			out[i] = 1.0
		} else {
			out[i] = 0.0
		}
	}
	return out, nil
}

// Weights 回傳長度 n、全為 v 的權重。
func Weights(n int, v float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = v
	}
	return w
}

// RandomWeights 回傳長度 n、落在 [lo, hi) 的均勻亂數權重。
// lo 必須 >= 0 且 lo <= hi。
func RandomWeights(n int, lo, hi float64, seed int64) ([]float64, error) {
	if n < 0 {
		return nil, errs.InvalidArgf("datagen: n must be >= 0, got %d", n)
	}
	if lo < 0 || hi < lo {
		return nil, errs.InvalidArgf("datagen: invalid weight range [%v, %v)", lo, hi)
	}
	w := make([]float64, n)
	if lo == hi {
		for i := range w {
			w[i] = lo
		}
		return w, nil
	}
	u := distuv.Uniform{Min: lo, Max: hi, Src: rng.New(seed)}
	for i := range w {
		w[i] = u.Rand()
	}
	return w, nil
}
