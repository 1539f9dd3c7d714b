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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
)

func TestDefaultSetting(t *testing.T) {
	s := DefaultSetting()
	if s.NumFeatures != 1000 || s.NumIterations != 5 || s.Workers != 1 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if err := s.Valid(); err != nil {
		t.Fatalf("default setting invalid: %v", err)
	}
}

func TestParseSettingYAML(t *testing.T) {
	s, err := ParseSettingYAML([]byte("num_features: 64\nalgorithm: multipass\nweights: random\nseed: 3\n"))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	if s.NumFeatures != 64 || s.NumIterations != 5 || s.Algorithm != "multipass" || s.Weights != WeightsRandom || s.Seed != 3 {
		t.Fatalf("unexpected setting: %+v", s)
	}

	if _, err := ParseSettingYAML([]byte("num_feature: 64\n")); err == nil {
		t.Fatalf("expected strict decode error for unknown field")
	}
	_, err = ParseSettingYAML([]byte("num_iterations: 0\n"))
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := ParseSettingYAML([]byte("algorithm: bubble\n")); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
	if _, err := ParseSettingYAML([]byte("weights: gaussian\n")); err == nil {
		t.Fatalf("expected error for unknown weights mode")
	}
}

func TestParseSettingJSONAndLoad(t *testing.T) {
	s, err := ParseSettingJSON([]byte(`{"num_features": 10, "zero_weight": "propagate"}`))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if s.NumFeatures != 10 || s.ZeroWeight != "propagate" {
		t.Fatalf("unexpected setting: %+v", s)
	}
	if _, err := ParseSettingJSON([]byte(`{"bogus": 1}`)); err == nil {
		t.Fatalf("expected error for unknown json field")
	}

	dir := t.TempDir()
	yp := filepath.Join(dir, "bench.yaml")
	if err := os.WriteFile(yp, []byte("num_iterations: 2\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	s, err = LoadSetting(yp)
	if err != nil || s.NumIterations != 2 {
		t.Fatalf("load yaml: %+v %v", s, err)
	}
	jp := filepath.Join(dir, "bench.json")
	if err := os.WriteFile(jp, []byte(`{"workers": 3}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	s, err = LoadSetting(jp)
	if err != nil || s.Workers != 3 {
		t.Fatalf("load json: %+v %v", s, err)
	}
	if _, err := LoadSetting(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestBenchmarkRun(t *testing.T) {
	for _, workers := range []int{1, 4} {
		s := DefaultSetting()
		s.NumFeatures = 200
		s.NumIterations = 7
		s.Workers = workers
		s.Seed = 11
		b, err := NewBenchmark(s)
		if err != nil {
			t.Fatalf("new benchmark: %v", err)
		}
		if b.Seed() != 11 {
			t.Fatalf("seed got %d want 11", b.Seed())
		}
		rep, used, err := b.Run(context.Background(), false)
		if err != nil {
			t.Fatalf("run (workers=%d): %v", workers, err)
		}
		if rep.Summary.Iterations != 7 {
			t.Fatalf("iterations got %d want 7", rep.Summary.Iterations)
		}
		if rep.Summary.Features != 200 || rep.Summary.Workers != workers {
			t.Fatalf("unexpected summary: %+v", rep.Summary)
		}
		if rep.Summary.Blocks < 1 || rep.Summary.Blocks > 200 {
			t.Fatalf("blocks out of range: %d", rep.Summary.Blocks)
		}
		if used <= 0 || rep.Summary.Avg < 0 {
			t.Fatalf("unexpected timing: used=%v avg=%v", used, rep.Summary.Avg)
		}

		// 輸入不因求解而改變
		y, w := b.Input()
		if pava.IsMonotone(y, 0) {
			t.Fatalf("input appears to have been fitted in place")
		}
		if len(w) != 200 || w[0] != 1 {
			t.Fatalf("unexpected weights: len=%d w0=%v", len(w), w[0])
		}
	}
}

func TestBenchmarkDeterministicInput(t *testing.T) {
	s := DefaultSetting()
	s.NumFeatures = 50
	s.Seed = 5
	s.Weights = WeightsRandom
	a, err := NewBenchmark(s)
	if err != nil {
		t.Fatalf("new benchmark: %v", err)
	}
	b, _ := NewBenchmark(s)
	ya, wa := a.Input()
	yb, wb := b.Input()
	for i := range ya {
		if ya[i] != yb[i] || wa[i] != wb[i] {
			t.Fatalf("input differs at %d", i)
		}
	}

	s.Seed = 0
	c, err := NewBenchmark(s)
	if err != nil {
		t.Fatalf("new benchmark: %v", err)
	}
	if c.Seed() < 1 {
		t.Fatalf("random seed should be positive, got %d", c.Seed())
	}
}

func TestBenchmarkCanceled(t *testing.T) {
	for _, workers := range []int{1, 3} {
		s := DefaultSetting()
		s.NumFeatures = 10
		s.NumIterations = 100
		s.Workers = workers
		b, err := NewBenchmark(s)
		if err != nil {
			t.Fatalf("new benchmark: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err = b.Run(ctx, false)
		if !errors.Is(err, errs.ErrCanceled) {
			t.Fatalf("expected canceled error (workers=%d), got %v", workers, err)
		}
	}
}

func TestNewBenchmarkInvalid(t *testing.T) {
	s := DefaultSetting()
	s.NumFeatures = 0
	if _, err := NewBenchmark(s); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if s.NumFeatures != 0 {
		t.Fatalf("caller setting mutated")
	}
}

func TestSelfTest(t *testing.T) {
	for _, a := range []pava.Algorithm{pava.StackBased, pava.MultiPass} {
		rep, err := SelfTest(&pava.Options{Algorithm: a})
		if err != nil {
			t.Fatalf("self test (%s): %v", a, err)
		}
		if !rep.Passed || len(rep.Fitted) != 7 || rep.Algorithm != a.String() {
			t.Fatalf("unexpected report: %+v", rep)
		}
	}
	rep, err := SelfTest(nil)
	if err != nil || rep.Algorithm != "stack" {
		t.Fatalf("default self test: %+v %v", rep, err)
	}
}

func TestSelfTestMismatchMessage(t *testing.T) {
	saved := selfTestExpected
	defer func() { selfTestExpected = saved }()
	selfTestExpected = []float64{1.0, 13.95, 13.95, 99, 13.95, 13.95, 24}

	rep, err := SelfTest(nil)
	if err == nil || rep.Passed {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(err.Error(), "index 3") || !strings.Contains(err.Error(), "want 99") {
		t.Fatalf("error should name index and values: %v", err)
	}
}
