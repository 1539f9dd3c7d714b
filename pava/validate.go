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

// Validate 檢查輸入是否可求解：
//   - len(y) == len(w)
//   - y 皆為有限值
//   - w 皆為有限且 >= 0
//
// 任一不符回傳 errs.KindInvalidArgument。
func Validate(y, w []float64) error {
	_, err := validate(y, w)
	return err
}

// validate 另外回報是否含有 0 權重（決定 MultiPass 是否需要暫存副本）。
func validate(y, w []float64) (hasZero bool, err error) {
	if len(y) != len(w) {
		return false, errs.InvalidArgf("length mismatch: len(y)=%d len(weights)=%d", len(y), len(w))
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false, errs.InvalidArgf("y[%d] is not finite: %v", i, v)
		}
	}
	for i, v := range w {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return false, errs.InvalidArgf("weights[%d] is not finite: %v", i, v)
		case v < 0:
			return false, errs.InvalidArgf("weights[%d] is negative: %v", i, v)
		case v == 0:
			hasZero = true
		}
	}
	return hasZero, nil
}
