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
	"slices"

	"github.com/zintix-labs/pavalab/errs"
)

// Solver 持有可重用的暫存空間（pool 堆疊、0 權重拆分用的緩衝），
// 適合在熱路徑或 worker pool 中重複求解，避免每次重新配置。
//
// Solver 不是 goroutine-safe：一個 Solver 同一時間只能給一個 goroutine 使用。
// 需要並行時，每個 goroutine 各自持有一個 Solver（或直接呼叫套件層級的 SolveInPlace）。
type Solver struct {
	opts    Options
	stack   []pool
	scratch []float64
	ys, ws  []float64 // 0 權重拆分後的有權重點
}

// pool 是堆疊上的一個區段：從 start 開始，權重和 sw，加權和 swy，目前的值 mean。
// merged 表示區段由兩個以上的 pool 合併而成。
type pool struct {
	start  int
	sw     float64
	swy    float64
	mean   float64
	merged bool
}

// NewSolver 建立 Solver；opts 為 nil 時使用 DefaultOptions()。
func NewSolver(opts *Options) *Solver {
	return &Solver{opts: opts.orDefault()}
}

// Options 回傳此 Solver 的設定
func (s *Solver) Options() Options {
	return s.opts
}

// Solve 把 y 就地改寫成擬合值。失敗時 y 保持原樣。
func (s *Solver) Solve(y, w []float64) error {
	hasZero, err := validate(y, w)
	if err != nil {
		return err
	}
	if len(y) <= 1 {
		return nil
	}
	if s.opts.Algorithm != StackBased && s.opts.Algorithm != MultiPass {
		return errs.InvalidArgf("unknown algorithm %d", s.opts.Algorithm)
	}
	if hasZero {
		return s.solveWithZeros(y, w)
	}
	s.run(y, w)
	return nil
}

// run 以選定的演算法就地求解；w 必須全為正。
func (s *Solver) run(y, w []float64) {
	if s.opts.Algorithm == MultiPass {
		multiPass(y, w)
		return
	}
	s.stackBased(y, w)
}

// Fit 與 Solve 相同，但不修改 y，回傳新的 Result（含 Blocks）。
func (s *Solver) Fit(y, w []float64) (*Result, error) {
	fitted := slices.Clone(y)
	if fitted == nil {
		fitted = []float64{}
	}
	if err := s.Solve(fitted, w); err != nil {
		return nil, err
	}
	return &Result{
		Fitted: fitted,
		Blocks: Blocks(fitted, w),
	}, nil
}

// SolveInPlace 以 opts 求解並就地改寫 y。
func SolveInPlace(y, w []float64, opts *Options) error {
	return NewSolver(opts).Solve(y, w)
}

// Fit 以 opts 求解，回傳新的 Result，y 不被修改。
func Fit(y, w []float64, opts *Options) (*Result, error) {
	return NewSolver(opts).Fit(y, w)
}
