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

package pavalab

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
)

// fitWorker 一個可重用的求解單位，依選項快取求解器（含其 stack/scratch 緩衝）。
//
// 同一個 fitWorker 不應被多 goroutine 同時使用；併發由 SolverPool 借出/歸還保證。
type fitWorker struct {
	id      int
	solvers map[pava.Options]*pava.Solver
}

func newFitWorker(id int) *fitWorker {
	return &fitWorker{id: id, solvers: make(map[pava.Options]*pava.Solver, 2)}
}

func (fw *fitWorker) fit(y, w []float64, o pava.Options) (*pava.Result, error) {
	s, ok := fw.solvers[o]
	if !ok {
		s = pava.NewSolver(&o)
		fw.solvers[o] = s
	}
	return s.Fit(y, w)
}

// SolverPool 管理所有求解器實例。
// 它透過兩個通道管理 worker 生命週期：
//  1. pool：健康且可用的 worker，供 Fit() 借出 / 歸還。
//  2. broken：在運作過程中發生 panic 或 fatal error 的 worker，送往此通道後丟棄。
//
// 若某個 worker 發生 panic 或 fatal error，會立即補上一個新的以維持容量。
type SolverPool struct {
	opts          pava.Options
	run           func(fw *fitWorker, y, w []float64, o pava.Options) (*pava.Result, error)
	pool          chan *fitWorker // 可用 worker
	broken        chan *fitWorker // 壞掉的 worker
	done          chan struct{}   // 關閉訊號：關閉後不再允許借出/歸還/補充
	closeOnce     sync.Once
	poolsize      int
	nextID        atomic.Int32
	rebuild       atomic.Int32 // 補充次數
	inflight      atomic.Int32 // 使用中
	served        atomic.Int64 // 成功求解次數
	failed        atomic.Int64 // 非致命錯誤次數（多半是輸入驗證）
	panics        atomic.Int32 // panic 次數
	fatals        atomic.Int32 // fatal 次數
	closeReason   atomic.Value // string: 關閉原因
	closeInflight atomic.Int32 // 關閉當下 inflight（快照）
	closeAvail    atomic.Int32 // 關閉當下 pool 可用數量（快照）
	closeBroken   atomic.Int32 // 關閉當下 broken backlog（快照）
}

// newSolverPool 建立 n 個（至少 1 個）worker 的求解器池
func newSolverPool(n int, opts pava.Options) (*SolverPool, error) {
	n = max(1, n)
	p := &SolverPool{
		opts:     opts,
		run:      (*fitWorker).fit,
		pool:     make(chan *fitWorker, n),
		broken:   make(chan *fitWorker, 100),
		done:     make(chan struct{}),
		poolsize: n,
	}
	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)
	p.closeBroken.Store(-1)

	for i := 0; i < n; i++ {
		p.pool <- p.newWorker()
	}
	return p, nil
}

func (p *SolverPool) newWorker() *fitWorker {
	return newFitWorker(int(p.nextID.Add(1)))
}

// Close 進入關閉狀態，之後所有 Fit() 直接回 error
func (p *SolverPool) Close() {
	p.closeWithReason("closed")
}

// Closed 回報池是否已進入關閉狀態。
func (p *SolverPool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 進入關閉狀態並記錄原因（reason 只會被寫入一次）。
func (p *SolverPool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		p.closeBroken.Store(int32(len(p.broken)))
		close(p.done)
	})
}

// isFatalErr 只有錯誤本身明確宣告 fatal 時，worker 狀態才視為不可信。
// 輸入驗證與零權重池錯誤屬於 Warn，不淘汰 worker。
func isFatalErr(err error) bool {
	if e, ok := errs.AsErr(err); ok {
		return e.ErrLv == errs.Fatal
	}
	return false
}

// Fit 借出一個 worker 求解。ctx 取消或池已關閉時不阻塞直接回錯誤。
func (p *SolverPool) Fit(ctx context.Context, y, w []float64, o pava.Options) (res *pava.Result, err error) {
	var fw *fitWorker
	select {
	case <-p.done:
		return nil, errs.NewFatal("solver pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return nil, errs.Canceled(ctx.Err(), "fit canceled/timeout")
	case fw = <-p.pool:
		p.inflight.Add(1)
	}

	if fw == nil {
		return nil, errs.NewFatal("solver pool got nil worker")
	}

	var isPanic bool

	defer func() {
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			isPanic = true
			p.panics.Add(1)
			res = nil
			err = errs.NewFatal(fmt.Sprintf("solver worker %d panic : %v", fw.id, r))
		}
		switch {
		case err == nil:
			p.served.Add(1)
		case !isPanic && !isFatalErr(err):
			p.failed.Add(1)
		}

		// 已關閉：丟棄 worker，不歸還、不補充
		if p.Closed() {
			return
		}

		if isPanic || isFatalErr(err) {
			if !isPanic {
				p.fatals.Add(1)
			}
			select {
			case p.broken <- fw:
			default:
				// broken 滿代表連續故障：進入關閉狀態讓上層接管
				p.closeWithReason("overwhelmed_by_failures")
				return
			}

			p.rebuild.Add(1)
			select {
			case <-p.done:
			case p.pool <- p.newWorker():
			}
			return
		}

		// 非致命錯誤：worker 仍然健康，原樣歸還
		select {
		case <-p.done:
		case p.pool <- fw:
		}
	}()

	return p.run(fw, y, w, o)
}

func (p *SolverPool) PoolSize() int {
	return p.poolsize
}

func (p *SolverPool) Inflight() int {
	return int(p.inflight.Load())
}

func (p *SolverPool) Available() int {
	return len(p.pool)
}

func (p *SolverPool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// PoolMetrics 拉取式（pull）觀測快照。
//
// Available/BrokenBacklog 來自 len(chan)，在高併發下是近似值。
// Close* 欄位只在 Close 時寫入一次，-1 表示尚未關閉。
type PoolMetrics struct {
	Algorithm  string `json:"algorithm"`
	ZeroWeight string `json:"zero_weight"`

	PoolSize      int    `json:"pool_size"`
	Available     int    `json:"available"`
	Inflight      int    `json:"inflight"`
	BrokenBacklog int    `json:"broken_backlog"`
	Served        int64  `json:"served"`
	Failed        int64  `json:"failed"`
	Rebuild       int    `json:"rebuild"`
	Panics        int    `json:"panics"`
	Fatals        int    `json:"fatals"`
	Closed        bool   `json:"closed"`
	CloseReason   string `json:"close_reason"`

	CloseInflight int `json:"close_inflight"`
	CloseAvail    int `json:"close_avail"`
	CloseBroken   int `json:"close_broken"`
}

func (p *SolverPool) Metrics() PoolMetrics {
	return PoolMetrics{
		Algorithm:     p.opts.Algorithm.String(),
		ZeroWeight:    p.opts.ZeroWeight.String(),
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Served:        p.served.Load(),
		Failed:        p.failed.Load(),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
		CloseBroken:   int(p.closeBroken.Load()),
	}
}
