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

package recorder

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/stats"
)

// TimingRecorder 計時紀錄員
//
// TimingRecorder 負責紀錄每次求解耗時，並透過Done輸出統計報表。
// 每個 worker 各持有一個，結束後以 MergeTimingRecorder 合併。
type TimingRecorder struct {
	Algorithm  string
	ZeroWeight string
	Features   int
	Workers    int
	Seed       int64
	Blocks     int // 最近一次求解的池數
	Samples    []float64
}

func NewTimingRecorder(algo, zeroWeight string, features, workers int, seed int64) (*TimingRecorder, error) {
	t := new(TimingRecorder)
	if features < 0 {
		return t, errs.NewFatal(fmt.Sprintf("features must not negative integer, got: %d", features))
	}
	if workers < 1 {
		return t, errs.NewFatal(fmt.Sprintf("workers must be positive, got: %d", workers))
	}
	// 通過valid
	t.Algorithm = algo
	t.ZeroWeight = zeroWeight
	t.Features = features
	t.Workers = workers
	t.Seed = seed
	t.Samples = make([]float64, 0, 16)
	return t, nil
}

// MergeTimingRecorder 合併多個 worker 的紀錄
func MergeTimingRecorder(r []*TimingRecorder) (*TimingRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge timing record err : empty recorders")
	}
	r0 := r[0]
	t, err := NewTimingRecorder(r0.Algorithm, r0.ZeroWeight, r0.Features, r0.Workers, r0.Seed)
	if err != nil {
		return t, err
	}
	for _, v := range r {
		if v.Algorithm != r0.Algorithm {
			return t, errs.NewFatal("merge timing record err : different algorithm")
		}
		if v.Features != r0.Features {
			return t, errs.NewFatal("merge timing record err : different features")
		}
		if v.Seed != r0.Seed {
			return t, errs.NewFatal("merge timing record err : different seed")
		}
		t.Samples = append(t.Samples, v.Samples...)
		if v.Blocks > 0 {
			t.Blocks = v.Blocks
		}
	}
	return t, nil
}

// Record 紀錄一次求解耗時與池數
func (t *TimingRecorder) Record(d time.Duration, blocks int) {
	t.Samples = append(t.Samples, d.Seconds())
	t.Blocks = blocks
}

// Rounds 已紀錄次數
func (t *TimingRecorder) Rounds() int {
	return len(t.Samples)
}

func (t *TimingRecorder) Done() *stats.TimingReport {
	report := &stats.TimingReport{
		Summary: &stats.SummaryReport{
			RunID:      uuid.NewString(),
			Algorithm:  t.Algorithm,
			ZeroWeight: t.ZeroWeight,
			Features:   t.Features,
			Workers:    t.Workers,
			Seed:       t.Seed,
			Blocks:     t.Blocks,
		},
	}
	report.Done(t.Samples)
	return report
}
