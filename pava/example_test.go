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

package pava_test

import (
	"fmt"

	"github.com/zintix-labs/pavalab/pava"
)

func ExampleFit() {
	y := []float64{1, 41, 51, 1, 2, 5, 24}
	w := []float64{1, 2, 3, 4, 5, 6, 7}

	res, err := pava.Fit(y, w, nil)
	if err != nil {
		panic(err)
	}
	for _, b := range res.Blocks {
		fmt.Printf("[%d,%d) weight=%.0f value=%.2f\n", b.Start, b.End, b.Weight, b.Value)
	}
	// Output:
	// [0,1) weight=1 value=1.00
	// [1,6) weight=20 value=13.95
	// [6,7) weight=7 value=24.00
}

func ExampleSolveInPlace() {
	y := []float64{3, 2, 1, 4}
	opts := pava.Options{Algorithm: pava.MultiPass}
	if err := pava.SolveInPlace(y, pava.Uniform(len(y), 1), &opts); err != nil {
		panic(err)
	}
	fmt.Println(y)
	// Output:
	// [2 2 2 4]
}
