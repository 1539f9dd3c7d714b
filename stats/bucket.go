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

package stats

import "sort"

// LatencyBuckets
//
// 用來定位單次耗時 -> DistReport 位置
//
// 請勿修改預設值
//   - 區間(秒): [0,1µs), [1µs,10µs), [10µs,100µs), ..., [1s,10s), [10s,+inf)
type LatencyBuckets struct {
	bound []float64
	label []string
}

// Buckets 預設耗時分桶
var Buckets *LatencyBuckets = &LatencyBuckets{
	bound: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 1e-1, 1, 10},
	label: []string{"[0,1µs)", "[1µs,10µs)", "[10µs,100µs)", "[100µs,1ms)", "[1ms,10ms)", "[10ms,100ms)", "[100ms,1s)", "[1s,10s)", "[10s,+inf)"},
}

func (b *LatencyBuckets) Labels() []string {
	return b.label
}

// Index 回傳 sec 所在分桶；負值歸入第一桶
func (b *LatencyBuckets) Index(sec float64) int {
	return sort.Search(len(b.bound), func(i int) bool { return sec < b.bound[i] })
}

func newDistReport(samples []float64) *DistReport {
	L := len(Buckets.label)
	d := &DistReport{
		Bucket:  Buckets.Labels(),
		Collect: make([]int, L),
		Ratio:   make([]float64, L),
	}
	for _, v := range samples {
		d.Collect[Buckets.Index(v)]++
	}
	if n := len(samples); n > 0 {
		for i, c := range d.Collect {
			d.Ratio[i] = float64(c) / float64(n)
		}
	}
	return d
}
