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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFeatures   int = 1000
	DefaultIterations int = 5
)

// 權重模式
const (
	WeightsUniform = "uniform"
	WeightsRandom  = "random"
)

// Setting 基準測試設定
type Setting struct {
	NumFeatures   int    `yaml:"num_features" json:"num_features"`
	NumIterations int    `yaml:"num_iterations" json:"num_iterations"`
	Workers       int    `yaml:"workers" json:"workers"`
	Algorithm     string `yaml:"algorithm" json:"algorithm"`
	ZeroWeight    string `yaml:"zero_weight" json:"zero_weight"`
	Seed          int64  `yaml:"seed" json:"seed"`       // < 1 時隨機產生
	Weights       string `yaml:"weights" json:"weights"` // uniform | random
}

// DefaultSetting 預設值：1000 個特徵、5 次迭代
func DefaultSetting() *Setting {
	return &Setting{
		NumFeatures:   DefaultFeatures,
		NumIterations: DefaultIterations,
		Workers:       1,
		Algorithm:     pava.StackBased.String(),
		ZeroWeight:    pava.ZeroWeightFail.String(),
		Weights:       WeightsUniform,
	}
}

// ParseSettingYAML 嚴格解析：多寫/拼錯欄位就報錯。未出現的欄位保留預設值。
func ParseSettingYAML(data []byte) (*Setting, error) {
	s := DefaultSetting()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, errs.WrapWarn(err, "bench.setting : decode yaml failed")
	}
	if err := s.Valid(); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseSettingJSON 嚴格解析 JSON 設定
func ParseSettingJSON(data []byte) (*Setting, error) {
	s := DefaultSetting()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, errs.WrapWarn(err, "bench.setting : decode json failed")
	}
	if err := s.Valid(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSetting 依副檔名讀取設定檔（.json 以外皆視為 YAML）
func LoadSetting(path string) (*Setting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "bench.setting : read file failed")
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseSettingJSON(data)
	}
	return ParseSettingYAML(data)
}

// Valid 檢查設定，並把空字串正規化為預設值
func (s *Setting) Valid() error {
	if s.NumFeatures < 1 {
		return errs.InvalidArgf("num_features must be positive, got %d", s.NumFeatures)
	}
	if s.NumIterations < 1 {
		return errs.InvalidArgf("num_iterations must be positive, got %d", s.NumIterations)
	}
	if s.Workers < 1 {
		return errs.InvalidArgf("workers must be positive, got %d", s.Workers)
	}
	algo, err := pava.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return err
	}
	zw, err := pava.ParseZeroWeightPolicy(s.ZeroWeight)
	if err != nil {
		return err
	}
	s.Algorithm = algo.String()
	s.ZeroWeight = zw.String()

	switch strings.ToLower(s.Weights) {
	case "", WeightsUniform:
		s.Weights = WeightsUniform
	case WeightsRandom:
		s.Weights = WeightsRandom
	default:
		return errs.InvalidArgf("weights must be %q or %q, got %q", WeightsUniform, WeightsRandom, s.Weights)
	}
	return nil
}

// Options 轉成求解器選項；需先通過 Valid
func (s *Setting) Options() *pava.Options {
	algo, _ := pava.ParseAlgorithm(s.Algorithm)
	zw, _ := pava.ParseZeroWeightPolicy(s.ZeroWeight)
	return &pava.Options{Algorithm: algo, ZeroWeight: zw}
}
