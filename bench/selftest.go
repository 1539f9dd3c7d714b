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
	"math"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
)

// SelfTestTolerance 每個元素允許的絕對誤差
const SelfTestTolerance float64 = 0.01

var (
	selfTestY        = []float64{1, 41, 51, 1, 2, 5, 24}
	selfTestW        = []float64{1, 2, 3, 4, 5, 6, 7}
	selfTestExpected = []float64{1.0, 13.95, 13.95, 13.95, 13.95, 13.95, 24}
)

// SelfTestReport 自我檢測結果
type SelfTestReport struct {
	Algorithm string    `json:"algorithm" yaml:"algorithm"`
	Input     []float64 `json:"input" yaml:"input"`
	Weights   []float64 `json:"weights" yaml:"weights"`
	Expected  []float64 `json:"expected" yaml:"expected"`
	Fitted    []float64 `json:"fitted" yaml:"fitted"`
	Tolerance float64   `json:"tolerance" yaml:"tolerance"`
	Passed    bool      `json:"passed" yaml:"passed"`
}

// SelfTest 以固定輸入檢查求解器輸出。
//
// 不符時回傳 Fatal 錯誤並指出第一個不符的位置、實際值與期望值；報表仍會回傳。
func SelfTest(opts *pava.Options) (*SelfTestReport, error) {
	o := pava.DefaultOptions()
	if opts != nil {
		o = *opts
	}
	rep := &SelfTestReport{
		Algorithm: o.Algorithm.String(),
		Input:     append([]float64(nil), selfTestY...),
		Weights:   append([]float64(nil), selfTestW...),
		Expected:  append([]float64(nil), selfTestExpected...),
		Tolerance: SelfTestTolerance,
	}
	res, err := pava.Fit(selfTestY, selfTestW, &o)
	if err != nil {
		return rep, errs.Wrap(err, "bad test")
	}
	rep.Fitted = res.Fitted
	for i, want := range selfTestExpected {
		got := res.Fitted[i]
		if !(math.Abs(got-want) <= SelfTestTolerance) {
			return rep, errs.Fatalf("bad test: index %d got %v want %v", i, got, want)
		}
	}
	rep.Passed = true
	return rep, nil
}
