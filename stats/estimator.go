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

import (
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// LatencyEstimate 單次耗時分位數的無母數區間估計
type LatencyEstimate struct {
	Median PointStat `json:"Median"`
	P90    PointStat `json:"P90"`
	// UnderAvg 耗時不超過平均值的比例
	UnderAvg PointStat `json:"UnderAvg"`
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64 `json:"Hat"`
	CI  CI      `json:"CI"`
}

// ============================================================
// ** 對外 **
// ============================================================

// EstimateLatency 以 order statistic 估計中位數與 P90 的 95% 區間，
// 以及耗時不超過平均值之比例的 Clopper–Pearson 區間。
func EstimateLatency(samples []float64) *LatencyEstimate {
	out := &LatencyEstimate{}
	n := len(samples)
	if n == 0 {
		return out
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	medLo, medHi := quantileCI(sorted, 0.5, 0.95)
	p90Lo, p90Hi := quantileCI(sorted, 0.9, 0.95)
	out.Median = PointStat{Hat: quantilePoint(sorted, 0.5), CI: CI{Lo: medLo, Hi: medHi}}
	out.P90 = PointStat{Hat: quantilePoint(sorted, 0.9), CI: CI{Lo: p90Lo, Hi: p90Hi}}

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	hat, ci := percentileCIForValue(sorted, sum/float64(n), 0.95)
	out.UnderAvg = PointStat{Hat: hat, CI: ci}
	return out
}

// Out 以文字輸出估計結果
func (est *LatencyEstimate) Out(w io.Writer) {
	fmt.Fprintln(w, "=== Latency Estimate (95% CI) ===")
	fmt.Fprintf(w, "  %-9s : %s\n", "Median", fmtHatCISec(est.Median))
	fmt.Fprintf(w, "  %-9s : %s\n", "P90", fmtHatCISec(est.P90))
	fmt.Fprintf(w, "  %-9s : %.2f%% [%.2f%%, %.2f%%]\n", "Under avg", est.UnderAvg.Hat*100, est.UnderAvg.CI.Lo*100, est.UnderAvg.CI.Hi*100)
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 給定已排序樣本與門檻 x0，估計 p = P(X ≤ x0) 的點估計與 CI 區間
func percentileCIForValue(sorted []float64, x0 float64, confidence float64) (pHat float64, ci CI) {
	n := len(sorted)
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 0}
	}
	k := 0
	for _, v := range sorted {
		if v <= x0 {
			k++
		}
	}
	return proportionCICP(k, n, confidence)
}

// 把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
// sorted 需已排序，回傳 (loValue, hiValue)
func quantileCI(sorted []float64, q, confidence float64) (float64, float64) {
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return sorted[0], sorted[0]
	}

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	li = min(max(li, 0), n-1)
	ui = min(max(ui, 0), n-1)
	return sorted[li], sorted[ui]
}

// quantilePoint 最近秩法的經驗分位數，sorted 需已排序
func quantilePoint(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(q * float64(n))
	idx = min(max(idx, 0), n-1)
	return sorted[idx]
}

func fmtHatCISec(ps PointStat) string {
	return fmt.Sprintf("%.6gs [%.6gs, %.6gs]", ps.Hat, ps.CI.Lo, ps.CI.Hi)
}
