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
	"gonum.org/v1/gonum/floats"
)

// multiPass 重複整段掃描版 PAVA（對照組）。
//
// 每一輪：
//  1. 游標 i 從 0 開始。
//  2. 由 i 往右延伸 k，只要 y[k] >= y[k+1]（非遞增區段，含相等值）。
//  3. 若 i..k 至少兩個位置且端點不同，代表確實違反單調：
//     把 y[i..k] 全部設為 Σ y·w / Σ w，並標記本輪有合併。
//  4. i = k+1 繼續。
//
// 一整輪沒有任何合併即為單調，結束。每次合併都讓「相異值區段數」嚴格減少，
// 因此最多 n 輪必定終止。
//
// 已合併的位置值相同，Σ y·w 以目前值計算等於以原始值計算，所以不需另存原始資料。
// w 必須全為正；含 0 權重的輸入由 solveWithZeros 先行拆分。
func multiPass(y, w []float64) {
	n := len(y) - 1
	for {
		pooled := false
		i := 0
		for i < n {
			k := i
			for k < n && y[k] >= y[k+1] {
				k++
			}
			if k > i && y[i] != y[k] {
				mean := floats.Dot(y[i:k+1], w[i:k+1]) / floats.Sum(w[i:k+1])
				for j := i; j <= k; j++ {
					y[j] = mean
				}
				pooled = true
			}
			i = k + 1
		}
		if !pooled {
			return
		}
	}
}
