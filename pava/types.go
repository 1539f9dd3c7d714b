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
	"strings"

	"github.com/zintix-labs/pavalab/errs"
)

// Algorithm 選擇 PAVA 的實作方式
type Algorithm uint8

const (
	// StackBased 單次掃描 + pool 堆疊，O(n)
	StackBased Algorithm = iota
	// MultiPass 重複整段掃描直到穩定，最壞 O(n²)
	MultiPass
)

var algoNames = map[Algorithm]string{
	StackBased: "stack",
	MultiPass:  "multipass",
}

func (a Algorithm) String() string {
	if s, ok := algoNames[a]; ok {
		return s
	}
	return "unknown"
}

// ParseAlgorithm 解析 "stack" / "multipass"（不分大小寫），空字串視為 StackBased。
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stack", "stackbased", "stack_based":
		return StackBased, nil
	case "multipass", "multi_pass", "multi-pass", "reference":
		return MultiPass, nil
	default:
		return StackBased, errs.InvalidArgf("unknown algorithm %q (want stack|multipass)", s)
	}
}

// ZeroWeightPolicy 決定 pool 權重總和為 0 時的行為
type ZeroWeightPolicy uint8

const (
	// ZeroWeightFail 回傳 errs.KindDivisionByZero，輸入保持原樣
	ZeroWeightFail ZeroWeightPolicy = iota
	// ZeroWeightPropagate 照 IEEE 0/0 規則，在該 pool 的位置填 NaN
	ZeroWeightPropagate
)

var zwNames = map[ZeroWeightPolicy]string{
	ZeroWeightFail:      "fail",
	ZeroWeightPropagate: "propagate",
}

func (p ZeroWeightPolicy) String() string {
	if s, ok := zwNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParseZeroWeightPolicy 解析 "fail" / "propagate"，空字串視為 ZeroWeightFail。
func ParseZeroWeightPolicy(s string) (ZeroWeightPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail", "error":
		return ZeroWeightFail, nil
	case "propagate", "nan":
		return ZeroWeightPropagate, nil
	default:
		return ZeroWeightFail, errs.InvalidArgf("unknown zero weight policy %q (want fail|propagate)", s)
	}
}

// Options 設定求解行為；nil 等同 DefaultOptions()。
type Options struct {
	Algorithm  Algorithm
	ZeroWeight ZeroWeightPolicy
}

// DefaultOptions 回傳 StackBased + ZeroWeightFail
func DefaultOptions() Options {
	return Options{
		Algorithm:  StackBased,
		ZeroWeight: ZeroWeightFail,
	}
}

func (o *Options) orDefault() Options {
	if o == nil {
		return DefaultOptions()
	}
	return *o
}

// Block 是一個 pool：擬合後共用同一個值的最大連續區段 [Start, End)。
type Block struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`    // exclusive
	Weight float64 `json:"weight"` // Σ w[Start:End]
	Value  float64 `json:"value"`  // 擬合值（區段加權平均）
}

// Len 回傳區段長度
func (b Block) Len() int {
	return b.End - b.Start
}

// Result 是 Fit 的輸出，Fitted 由呼叫端獨佔持有。
type Result struct {
	Fitted []float64 `json:"fitted"`
	Blocks []Block   `json:"blocks"`
}
