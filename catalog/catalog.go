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

package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/pavalab/bench"
	"github.com/zintix-labs/pavalab/errs"
)

var (
	ErrDupName = errs.NewFatal("duplicate profile name")
)

// Entry 一個具名的基準測試設定檔
type Entry struct {
	Name       string
	ConfigName string
}

// Summary 對外列出設定檔時使用
type Summary struct {
	Name          string `json:"name"`
	Config        string `json:"config"`
	NumFeatures   int    `json:"num_features"`
	NumIterations int    `json:"num_iterations"`
	Workers       int    `json:"workers"`
	Algorithm     string `json:"algorithm"`
	ZeroWeight    string `json:"zero_weight"`
	Weights       string `json:"weights"`
}

// Catalog 基準測試設定檔目錄，名稱大小寫不敏感
type Catalog struct {
	byName map[string]Entry
	names  []string            // 用來穩定排序
	unique map[string]struct{} // 一組設定，檔名需唯一
	config *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byName: map[string]Entry{},
		names:  make([]string, 0, 16),
		unique: map[string]struct{}{},
		config: multFS,
		frozen: false,
	}, nil
}

// ProfileName 由檔名取得設定名稱：去掉副檔名並轉小寫
func ProfileName(configName string) string {
	base := filepath.Base(configName)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

func (c *Catalog) Register(metas ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for i, meta := range metas {
		meta.Name = strings.ToLower(strings.TrimSpace(meta.Name))
		if meta.Name == "" {
			return errs.NewFatal("profile name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.index[meta.ConfigName]; !ok {
			return errs.NewFatal(fmt.Sprintf("config file not found: %s", meta.ConfigName))
		}
		if _, ok := c.byName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := c.unique[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		if _, ok := seenName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := seenCfg[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		seenName[meta.Name] = struct{}{}
		seenCfg[meta.ConfigName] = struct{}{}
		metas[i] = meta
	}
	for _, meta := range metas {
		c.unique[meta.ConfigName] = struct{}{}
		c.byName[meta.Name] = meta
		c.names = append(c.names, meta.Name)
	}
	sort.Strings(c.names)
	return nil
}

// RegisterAll 掃描所有來源中的 .yaml/.yml/.json，全部解析成功才一次性註冊。
//
// 依檔名排序處理；任何一個檔案失敗都立即回傳錯誤。
func (c *Catalog) RegisterAll() error {
	entries := make([]Entry, 0, len(c.config.index))
	for _, name := range c.config.sortedNames() {
		if _, err := c.settingOf(name); err != nil {
			return errs.Wrap(err, fmt.Sprintf("parse profile failed: %s", name))
		}
		entries = append(entries, Entry{Name: ProfileName(name), ConfigName: name})
	}
	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return c.Register(entries...)
}

func (c *Catalog) Get(name string) (Entry, bool) {
	m, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

func (c *Catalog) Names() []string {
	if len(c.names) == 0 {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Catalog) All() []Entry {
	m := make([]Entry, 0, len(c.names))
	for _, n := range c.names {
		m = append(m, c.byName[n])
	}
	return m
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

// Setting
//
// 每次呼叫都重新讀取 fs.FS 中的設定並回傳新的 *bench.Setting，呼叫端可自由修改
func (c *Catalog) Setting(name string) (*bench.Setting, error) {
	e, ok := c.Get(name)
	if !ok {
		return nil, errs.InvalidArgf("profile %q does not exist in catalog", name)
	}
	return c.settingOf(e.ConfigName)
}

// Summary 依名稱排序列出所有設定
func (c *Catalog) Summary() ([]Summary, error) {
	out := make([]Summary, 0, len(c.names))
	for _, e := range c.All() {
		s, err := c.settingOf(e.ConfigName)
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{
			Name:          e.Name,
			Config:        e.ConfigName,
			NumFeatures:   s.NumFeatures,
			NumIterations: s.NumIterations,
			Workers:       s.Workers,
			Algorithm:     s.Algorithm,
			ZeroWeight:    s.ZeroWeight,
			Weights:       s.Weights,
		})
	}
	return out, nil
}

func (c *Catalog) settingOf(configName string) (*bench.Setting, error) {
	src, ok := c.config.GetFS(configName)
	if !ok {
		return nil, errs.NewWarn("file name dose not exist in catalog")
	}
	raw, err := fs.ReadFile(src, configName)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return parseSettingByExt(configName, raw)
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 1) 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename; no / \\\\ :) ", file))
	}
	// 2) 必須以 .yaml/.yml/.json 結尾（大小寫不敏感）
	if !isConfigFile(file) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file))
	}
	// 3) 不能以 . 開頭
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}

func isConfigFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")
}

func parseSettingByExt(filename string, raw []byte) (*bench.Setting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return bench.ParseSettingYAML(raw)
	case ".json":
		return bench.ParseSettingJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 16),
	}

	// eager validate: build index and detect duplicates
	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 只允許根目錄
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			if strings.HasPrefix(path, ".") || !isConfigFile(path) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

func (m *multiFS) sortedNames() []string {
	names := make([]string, 0, len(m.index))
	for n := range m.index {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
