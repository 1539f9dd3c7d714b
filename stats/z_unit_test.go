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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/pavalab/stats"
)

// buildTimingReport constructs a finished report over the given samples.
func buildTimingReport(samples []float64) *stats.TimingReport {
	rep := &stats.TimingReport{
		Summary: &stats.SummaryReport{
			RunID:      "test-run",
			Algorithm:  "stack",
			ZeroWeight: "fail",
			Features:   1000,
			Workers:    1,
			Seed:       42,
		},
	}
	rep.Done(samples)
	return rep
}

func TestTimingReportCoreMetrics(t *testing.T) {
	rep := buildTimingReport([]float64{4, 1, 3, 2})

	if rep.Summary.Iterations != 4 {
		t.Fatalf("iterations got %d want 4", rep.Summary.Iterations)
	}
	if rep.Summary.Total != 10 {
		t.Fatalf("total got %v want 10", rep.Summary.Total)
	}
	if rep.Summary.Avg != 2.5 {
		t.Fatalf("avg got %v want 2.5", rep.Summary.Avg)
	}
	if rep.Summary.Min != 1 || rep.Summary.Max != 4 {
		t.Fatalf("min/max got %v/%v", rep.Summary.Min, rep.Summary.Max)
	}
	wantStd := math.Sqrt(5.0 / 3.0)
	if math.Abs(rep.Summary.Std-wantStd) > 1e-12 {
		t.Fatalf("std got %.12f want %.12f", rep.Summary.Std, wantStd)
	}
	if rep.Summary.AvgCI.Lo > rep.Summary.Avg || rep.Summary.AvgCI.Hi < rep.Summary.Avg {
		t.Fatalf("avg CI %+v does not contain avg", rep.Summary.AvgCI)
	}
	if math.Abs(rep.Summary.SolvesPerSec-0.4) > 1e-12 {
		t.Fatalf("solves/sec got %v want 0.4", rep.Summary.SolvesPerSec)
	}
	if math.Abs(rep.Summary.FeaturesPerSec-400) > 1e-9 {
		t.Fatalf("features/sec got %v want 400", rep.Summary.FeaturesPerSec)
	}

	// distribution covers every sample
	total := 0
	for _, c := range rep.Dist.Collect {
		total += c
	}
	if total != 4 || len(rep.Dist.Collect) != len(rep.Dist.Bucket) {
		t.Fatalf("distribution mismatch: %+v", rep.Dist)
	}

	rep.Done([]float64{100}) // idempotent
	if rep.Summary.Avg != 2.5 {
		t.Fatalf("avg changed after second Done")
	}
}

func TestQuantiles(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(100 - i)
	}
	rep := buildTimingReport(samples)
	q := rep.Quantile
	if q.P50 < 50 || q.P50 > 51 {
		t.Fatalf("P50 got %v", q.P50)
	}
	if q.P90 < 90 || q.P90 > 91 {
		t.Fatalf("P90 got %v", q.P90)
	}
	if !(q.P50 <= q.P90 && q.P90 <= q.P99 && q.P99 <= rep.Summary.Max) {
		t.Fatalf("quantiles not ordered: %+v", q)
	}
	if rep.Estimate == nil {
		t.Fatalf("estimate missing")
	}
	med := rep.Estimate.Median
	if med.CI.Lo > med.Hat || med.CI.Hi < med.Hat {
		t.Fatalf("median CI %+v does not contain %v", med.CI, med.Hat)
	}
	if math.Abs(rep.Estimate.UnderAvg.Hat-0.5) > 1e-12 {
		t.Fatalf("under avg got %v want 0.5", rep.Estimate.UnderAvg.Hat)
	}
}

func TestEmptyAndSingle(t *testing.T) {
	rep := buildTimingReport(nil)
	if rep.Summary.Avg != 0 || rep.Summary.SolvesPerSec != 0 || rep.Estimate != nil {
		t.Fatalf("empty report should be zero: %+v", rep.Summary)
	}
	rep = buildTimingReport([]float64{0.5})
	if rep.Summary.Std != 0 || rep.Quantile.P99 != 0.5 {
		t.Fatalf("single sample report wrong: %+v %+v", rep.Summary, rep.Quantile)
	}
}

func TestBucketIndex(t *testing.T) {
	cases := []struct {
		sec  float64
		want int
	}{
		{0, 0},
		{5e-7, 0},
		{1e-6, 1},
		{5e-5, 2},
		{2e-3, 4},
		{20, 8},
	}
	for _, c := range cases {
		if got := stats.Buckets.Index(c.sec); got != c.want {
			t.Fatalf("Index(%v) got %d want %d", c.sec, got, c.want)
		}
	}
	if len(stats.Buckets.Labels()) != 9 {
		t.Fatalf("labels length got %d", len(stats.Buckets.Labels()))
	}
}

func TestRenderers(t *testing.T) {
	rep := buildTimingReport([]float64{0.001, 0.002, 0.003})

	var jb bytes.Buffer
	if err := rep.WriteWith(&jb, &stats.JsonTimingReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(jb.Bytes(), &decoded); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if _, ok := decoded["Summary"]; !ok {
		t.Fatalf("json missing Summary: %s", jb.String())
	}

	r, err := stats.RenderFor("yaml")
	if err != nil {
		t.Fatalf("RenderFor yaml: %v", err)
	}
	var yb bytes.Buffer
	if err := rep.WriteWith(&yb, r); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !strings.Contains(yb.String(), "collect: [") {
		t.Fatalf("yaml inner sequences should be flow style:\n%s", yb.String())
	}

	r, err = stats.RenderFor("table")
	if err != nil {
		t.Fatalf("RenderFor table: %v", err)
	}
	var tb bytes.Buffer
	if err := rep.WriteWith(&tb, r); err != nil {
		t.Fatalf("table render: %v", err)
	}
	if !strings.Contains(tb.String(), "Average time: 0.002\n") {
		t.Fatalf("table missing average line:\n%s", tb.String())
	}

	if _, err := stats.RenderFor("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestStdOut(t *testing.T) {
	rep := buildTimingReport([]float64{1.5, 2.5})
	var b bytes.Buffer
	rep.StdOut(&b, 4*time.Second)
	out := b.String()
	if !strings.Contains(out, "used: 4.00 seconds") {
		t.Fatalf("missing duration line:\n%s", out)
	}
	if !strings.Contains(out, "| Algorithm") || !strings.Contains(out, "Average time: 2\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
