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

package bench

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/pavalab/datagen"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
	"github.com/zintix-labs/pavalab/recorder"
	"github.com/zintix-labs/pavalab/rng"
	"github.com/zintix-labs/pavalab/stats"
)

// Benchmark 以固定輸入重複求解並計時。
//
// 輸入只在建立時產生一次，每次迭代都在新的副本上求解，計時涵蓋複製與求解。
type Benchmark struct {
	setting *Setting
	opts    *pava.Options
	seed    int64
	data    []float64
	weights []float64
}

// worker 每個併發單位各自持有求解器、暫存與紀錄員
type worker struct {
	solver  *pava.Solver
	scratch []float64
	rec     *recorder.TimingRecorder
}

// NewBenchmark 驗證設定並產生輸入資料
func NewBenchmark(s *Setting) (*Benchmark, error) {
	if s == nil {
		s = DefaultSetting()
	}
	cp := *s
	if err := cp.Valid(); err != nil {
		return nil, err
	}
	seed := cp.Seed
	if seed < 1 {
		seed = rng.NewSeed()
	}
	data, err := datagen.Logistic(cp.NumFeatures, seed)
	if err != nil {
		return nil, err
	}
	var w []float64
	if cp.Weights == WeightsRandom {
		w, err = datagen.RandomWeights(cp.NumFeatures, 0.5, 2, seed+1)
		if err != nil {
			return nil, err
		}
	} else {
		w = datagen.Weights(cp.NumFeatures, 1.0)
	}
	return &Benchmark{
		setting: &cp,
		opts:    cp.Options(),
		seed:    seed,
		data:    data,
		weights: w,
	}, nil
}

// Setting 回傳正規化後的設定副本
func (b *Benchmark) Setting() Setting {
	return *b.setting
}

// Seed 實際使用的種子
func (b *Benchmark) Seed() int64 {
	return b.seed
}

// Input 回傳輸入資料副本
func (b *Benchmark) Input() (y, w []float64) {
	y = make([]float64, len(b.data))
	copy(y, b.data)
	w = make([]float64, len(b.weights))
	copy(w, b.weights)
	return y, w
}

// Run 執行 num_iterations 次求解，回傳報表與總用時。
//
// workers == 1 時依序執行；否則以 goroutine pool 分派迭代。
// ctx 取消時於迭代之間停止，回傳 KindCanceled 錯誤。
func (b *Benchmark) Run(ctx context.Context, showpb bool) (*stats.TimingReport, time.Duration, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := b.setting
	mp := min(s.Workers, s.NumIterations)

	ws := make([]*worker, mp)
	recs := make([]*recorder.TimingRecorder, mp)
	for i := range ws {
		r, err := recorder.NewTimingRecorder(s.Algorithm, s.ZeroWeight, s.NumFeatures, s.Workers, b.seed)
		if err != nil {
			return nil, 0, err
		}
		ws[i] = &worker{
			solver:  pava.NewSolver(b.opts),
			scratch: make([]float64, len(b.data)),
			rec:     r,
		}
		recs[i] = r
	}

	bar := pb.New(s.NumIterations)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	bar.Start()

	var runErr error
	if mp == 1 {
		runErr = b.runSerial(ctx, ws[0], s.NumIterations, bar)
	} else {
		runErr = b.runParallel(ctx, ws, s.NumIterations, bar)
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	if runErr != nil {
		return nil, used, runErr
	}

	rec, err := recorder.MergeTimingRecorder(recs)
	if err != nil {
		return nil, used, err
	}
	return rec.Done(), used, nil
}

func (b *Benchmark) runSerial(ctx context.Context, w *worker, rounds int, bar *pb.ProgressBar) error {
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return errs.Canceled(err, "benchmark canceled")
		}
		if err := b.iterate(w); err != nil {
			return err
		}
		bar.Increment()
	}
	return nil
}

func (b *Benchmark) runParallel(ctx context.Context, ws []*worker, rounds int, bar *pb.ProgressBar) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan struct{}, len(ws))
	var (
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	wg := new(sync.WaitGroup)
	wg.Add(len(ws))
	for _, w := range ws {
		go func(w *worker) {
			defer wg.Done()
			for range jobs {
				if err := b.iterate(w); err != nil {
					fail(err)
					return
				}
				bar.Increment()
			}
		}(w)
	}

feed:
	for i := 0; i < rounds; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- struct{}{}:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return errs.Canceled(err, "benchmark canceled")
	}
	return nil
}

// iterate 一次迭代：複製輸入後求解並紀錄耗時
func (b *Benchmark) iterate(w *worker) error {
	start := time.Now()
	copy(w.scratch, b.data)
	if err := w.solver.Solve(w.scratch, b.weights); err != nil {
		return err
	}
	used := time.Since(start)
	w.rec.Record(used, len(pava.Blocks(w.scratch, b.weights)))
	return nil
}
