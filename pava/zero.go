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
)

// solveWithZeros 處理含 0 權重的輸入。
//
//  1. 只取權重 > 0 的點，用選定的演算法求解（此時不可能出現權重和為 0 的 pool）。
//  2. 每個 0 權重點的值夾在左右最近有權重點的擬合值之間；0 權重點不影響目標函數，
//     這是最接近原值的可行選擇。
//  3. 相鄰的 0 權重點夾完仍違反單調時，只能彼此合併，而合併後權重和為 0，
//     此時才套用 ZeroWeightPolicy。
//
// 結果與演算法無關，也不受相等值比較順序影響。y 只在確認成功後才寫入。
func (s *Solver) solveWithZeros(y, w []float64) error {
	s.ys, s.ws = s.ys[:0], s.ws[:0]
	for i, wi := range w {
		if wi > 0 {
			s.ys = append(s.ys, y[i])
			s.ws = append(s.ws, wi)
		}
	}
	if len(s.ys) > 1 {
		s.run(s.ys, s.ws)
	}

	out := append(s.scratch[:0], y...)
	s.scratch = out
	lo, k := math.Inf(-1), 0
	for i := 0; i < len(y); {
		if w[i] > 0 {
			out[i] = s.ys[k]
			lo = s.ys[k]
			k++
			i++
			continue
		}
		j := i
		for j < len(y) && w[j] == 0 {
			j++
		}
		hi := math.Inf(1)
		if k < len(s.ys) {
			hi = s.ys[k]
		}
		for m := i; m < j; m++ {
			out[m] = min(max(out[m], lo), hi)
		}
		if err := s.settleZeroRun(out[i:j], i); err != nil {
			return err
		}
		i = j
	}
	copy(y, out)
	return nil
}

// settleZeroRun 把一段 0 權重點中違反單調的部分合併；合併出的 pool 權重和為 0，
// 依 ZeroWeightPolicy 回傳錯誤或設為 NaN。base 是 seg 在原始序列中的起點（錯誤訊息用）。
func (s *Solver) settleZeroRun(seg []float64, base int) error {
	st := s.stack[:0]
	defer func() { s.stack = st[:0] }()
	for i, v := range seg {
		cur := pool{start: i, mean: v}
		for len(st) > 0 && st[len(st)-1].mean > cur.mean {
			cur.start = st[len(st)-1].start
			cur.merged = true
			st = st[:len(st)-1]
		}
		st = append(st, cur)
	}
	for k, p := range st {
		if !p.merged {
			continue
		}
		end := poolEnd(st, k, len(seg))
		if s.opts.ZeroWeight == ZeroWeightFail {
			return errs.DivByZerof("pool [%d,%d] has zero total weight", base+p.start, base+end-1)
		}
		for j := p.start; j < end; j++ {
			seg[j] = math.NaN()
		}
	}
	return nil
}
