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
	"math"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// TimingReport 基準測試報告
type TimingReport struct {
	Summary  *SummaryReport   `json:"Summary"`
	Quantile *QuantileReport  `json:"Quantile"`
	Dist     *DistReport      `json:"Dist"`
	Estimate *LatencyEstimate `json:"Estimate,omitempty"`
	isDone   bool
}

// SummaryReport 基本資訊與時間統計，時間單位皆為秒
type SummaryReport struct {
	RunID          string  `json:"RunID"`
	Algorithm      string  `json:"Algorithm"`
	ZeroWeight     string  `json:"ZeroWeight"`
	Features       int     `json:"Features"`
	Iterations     int     `json:"Iterations"`
	Workers        int     `json:"Workers"`
	Seed           int64   `json:"Seed"`
	Blocks         int     `json:"Blocks"`
	Total          float64 `json:"Total"`
	Avg            float64 `json:"Avg"`
	Min            float64 `json:"Min"`
	Max            float64 `json:"Max"`
	Std            float64 `json:"Std"`
	AvgCI          CI      `json:"AvgCI"`
	SolvesPerSec   float64 `json:"SolvesPerSec"`
	FeaturesPerSec float64 `json:"FeaturesPerSec"`
}

// QuantileReport 單次求解耗時的分位數（秒）
type QuantileReport struct {
	P50 float64 `json:"P50"`
	P90 float64 `json:"P90"`
	P99 float64 `json:"P99"`
}

// DistReport 耗時區間落點統計
type DistReport struct {
	Bucket  []string  `json:"Bucket"`
	Collect []int     `json:"Collect"`
	Ratio   []float64 `json:"Ratio"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 由樣本計算最終統計結果並鎖定 isDone 標記。
//
// samples 為每次求解的耗時（秒），Done 只會生效一次。
func (s *TimingReport) Done(samples []float64) {
	if s.isDone {
		return
	}
	n := len(samples)
	s.Summary.Iterations = n
	if s.Quantile == nil {
		s.Quantile = &QuantileReport{}
	}
	s.Dist = newDistReport(samples)

	if n > 0 {
		sorted := slices.Clone(samples)
		slices.Sort(sorted)

		total := 0.0
		for _, v := range sorted {
			total += v
		}
		s.Summary.Total = total
		s.Summary.Avg = stat.Mean(sorted, nil)
		s.Summary.Min = sorted[0]
		s.Summary.Max = sorted[n-1]
		if n > 1 {
			s.Summary.Std = stat.StdDev(sorted, nil)
		}
		s.Summary.AvgCI = s.Ci()

		s.Quantile.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
		s.Quantile.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
		s.Quantile.P99 = stat.Quantile(0.99, stat.Empirical, sorted, nil)

		if total > 0 {
			s.Summary.SolvesPerSec = float64(n) / total
			s.Summary.FeaturesPerSec = float64(n) * float64(s.Summary.Features) / total
		}
		if n >= 2 {
			s.Estimate = EstimateLatency(sorted)
		}
	}
	s.isDone = true
}

// Ci 回傳平均耗時的 95% 信賴區間
func (s *TimingReport) Ci() CI {
	avg := s.Summary.Avg
	se := 0.0
	if s.Summary.Iterations > 1 {
		se = s.Summary.Std / math.Sqrt(float64(s.Summary.Iterations))
	}
	return CI{
		Lo: max(avg-1.96*se, 0.0),
		Hi: avg + 1.96*se,
	}
}

func (s *TimingReport) WriteWith(w io.Writer, rep TimingReportRender) error {
	return rep.Write(w, s)
}

// StdOut 輸出表格與 Average time 行
func (s *TimingReport) StdOut(w io.Writer, ut time.Duration) {
	fmt.Fprint(w, formatDuration(ut, s.Summary.Iterations))
	sk, sm := s.fmtBasic()
	fmt.Fprintln(w, fmtTable("PAVA Benchmark", sk, sm))
	if s.Estimate != nil {
		s.Estimate.Out(w)
	}
	fmt.Fprintf(w, "Average time: %s\n", fmtAvg(s.Summary.Avg))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, solves int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(solves) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nsps : %d solves/sec\n", sec, sps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nsps : %d solves/sec\n", m, s, sps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nsps : %d solves/sec\n", h, m, s, sps)
}

// fmtAvg 平均秒數，六位有效數字
func fmtAvg(sec float64) string {
	return fmt.Sprintf("%.6g", sec)
}

func fmtSec(p *message.Printer, v float64) string {
	switch {
	case v < 1e-3:
		return p.Sprintf("%.2f µs", v*1e6)
	case v < 1:
		return p.Sprintf("%.3f ms", v*1e3)
	default:
		return p.Sprintf("%.3f s", v)
	}
}

func (s *TimingReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Run ID":       s.Summary.RunID,
		"Algorithm":    s.Summary.Algorithm,
		"Zero Weight":  s.Summary.ZeroWeight,
		"Features":     p.Sprintf("%d", s.Summary.Features),
		"Iterations":   p.Sprintf("%d", s.Summary.Iterations),
		"Workers":      p.Sprintf("%d", s.Summary.Workers),
		"Seed":         fmt.Sprintf("%d", s.Summary.Seed),
		"Blocks":       p.Sprintf("%d", s.Summary.Blocks),
		"Total":        fmtSec(p, s.Summary.Total),
		"Avg":          fmtSec(p, s.Summary.Avg),
		"Avg 95% CI":   "[" + fmtSec(p, s.Summary.AvgCI.Lo) + ", " + fmtSec(p, s.Summary.AvgCI.Hi) + "]",
		"Min":          fmtSec(p, s.Summary.Min),
		"Max":          fmtSec(p, s.Summary.Max),
		"STD":          fmtSec(p, s.Summary.Std),
		"P50":          fmtSec(p, s.Quantile.P50),
		"P90":          fmtSec(p, s.Quantile.P90),
		"P99":          fmtSec(p, s.Quantile.P99),
		"Features/sec": p.Sprintf("%.0f", s.Summary.FeaturesPerSec),
	}
	keys := []string{"Run ID", "Algorithm", "Zero Weight", "Features", "Iterations", "Workers", "Seed", "Blocks", "Total", "Avg", "Avg 95% CI", "Min", "Max", "STD", "P50", "P90", "P99", "Features/sec"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
