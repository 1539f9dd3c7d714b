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

// stackBased 單次掃描版 PAVA。
//
// 演算法：
//  1. 由左至右把每個點當成一個新 pool 推入。
//  2. 若堆疊頂端的值 > 新 pool 的值（違反單調），兩者以加權平均合併，
//     合併後再與新的頂端比較，直到不再違反。
//  3. 掃描完畢後依堆疊把每個 pool 的值寫回 y。
//
// w 必須全為正；含 0 權重的輸入由 solveWithZeros 先行拆分。
// 比較使用嚴格 >，相等的相鄰值不合併（數值上等價，但省下合併成本）。
func (s *Solver) stackBased(y, w []float64) {
	st := s.stack[:0]
	for i, v := range y {
		cur := pool{start: i, sw: w[i], swy: v * w[i], mean: v}
		for len(st) > 0 {
			top := st[len(st)-1]
			if !(top.mean > cur.mean) {
				break
			}
			cur.start = top.start
			cur.sw += top.sw
			cur.swy += top.swy
			cur.mean = cur.swy / cur.sw
			st = st[:len(st)-1]
		}
		st = append(st, cur)
	}

	// 寫回
	for k, p := range st {
		for j := p.start; j < poolEnd(st, k, len(y)); j++ {
			y[j] = p.mean
		}
	}
	s.stack = st[:0]
}

// poolEnd 回傳第 k 個 pool 的結束位置（不含）
func poolEnd(st []pool, k, n int) int {
	if k+1 < len(st) {
		return st[k+1].start
	}
	return n
}
