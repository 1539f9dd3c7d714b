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
	"encoding/json"
	"io"
	"strings"

	"github.com/zintix-labs/pavalab/errs"
	"gopkg.in/yaml.v3"
)

// TimingReportRender 定義輸出行為
type TimingReportRender interface {
	Write(w io.Writer, r *TimingReport) error
}

// Json渲染
type JsonTimingReportRender struct{}

func (jr *JsonTimingReportRender) Write(w io.Writer, r *TimingReport) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLTimingReportRender struct{}

func (yr *YAMLTimingReportRender) Write(w io.Writer, r *TimingReport) error {
	// 只有「最內層的一維陣列」輸出成 flow style：[..., ...]
	return forceReadableList(w, r)
}

// Table渲染：等同 StdOut，但不含耗時行
type TableTimingReportRender struct{}

func (tr *TableTimingReportRender) Write(w io.Writer, r *TimingReport) error {
	sk, sm := r.fmtBasic()
	if _, err := io.WriteString(w, fmtTable("PAVA Benchmark", sk, sm)); err != nil {
		return err
	}
	if r.Estimate != nil {
		r.Estimate.Out(w)
	}
	_, err := io.WriteString(w, "Average time: "+fmtAvg(r.Summary.Avg)+"\n")
	return err
}

// RenderFor 依格式名稱取得渲染器：table | json | yaml
func RenderFor(format string) (TimingReportRender, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return &TableTimingReportRender{}, nil
	case "json":
		return &JsonTimingReportRender{}, nil
	case "yaml", "yml":
		return &YAMLTimingReportRender{}, nil
	default:
		return nil, errs.InvalidArgf("unknown report format %q", format)
	}
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		return

	case yaml.SequenceNode:
		// 包含子 sequence 代表外層維度
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && c.Kind == yaml.SequenceNode {
				hasChildSeq = true
				break
			}
		}
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
		return

	default:
		return
	}
}
