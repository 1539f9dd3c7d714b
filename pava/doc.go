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

// Package pava 實作一維加權保序迴歸（weighted isotonic regression），
// 演算法為 Pool Adjacent Violators（PAVA）。
//
// 給定有序觀測值 y[0..n-1] 與非負權重 w[0..n-1]，求單調不減序列 f，
// 使 Σ w[i]·(y[i]−f[i])² 最小。權重 > 0 的位置解是唯一的，且每個 f[i] 等於它所屬 pool
// （連續位置的最大區段）在原始資料上的加權平均。
//
// 提供兩種演算法，輸出相同：
//   - StackBased（預設）：單次由左至右掃描，維護 pool 堆疊；新點與堆疊頂端違反單調時
//     以加權平均合併，並持續往左合併直到不再違反。時間 O(n)。
//   - MultiPass：重複整段由左至右掃描，把每段非遞增的連續區段合併成加權平均，
//     直到一整輪沒有合併為止。最壞 O(n²)，保留作為對照組。
//
// 呼叫慣例：
//
//	res, err := pava.Fit(y, w, nil)      // 不動 y，回傳新的 Result
//	err := pava.SolveInPlace(y, w, nil)  // 直接把 y 改寫成擬合值
//
// 錯誤一律在修改任何資料之前檢查：
//   - len(y) != len(w)、負權重、NaN/Inf → errs.KindInvalidArgument
//   - 某個 pool 權重總和為 0 → errs.KindDivisionByZero（ZeroWeightFail，預設）
//     或以 NaN 表示（ZeroWeightPropagate）
//
// 0 權重點不影響目標函數。它們的值夾在左右最近有權重點的擬合值之間；
// 只有相鄰 0 權重點夾完後仍彼此違反單調、必須合併成權重和為 0 的 pool 時，
// 才套用上面的 0 權重策略。兩種演算法對 0 權重的處理相同。
//
// 套件沒有任何全域可變狀態；每次呼叫都是獨立的，可在多個 goroutine 中並行使用，
// 只要每個呼叫持有自己的 y。
//
// 本套件只處理單調不減。要求單調不增時，呼叫端先反轉輸入、擬合後再反轉輸出。
package pava
