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

// Package pavalab 提供保序回歸（isotonic regression）實驗室的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把下列地基組裝在一起：
//  1. Catalog：具名的基準測試設定檔（profiles），來源一律以 fs.FS 注入。
//  2. 預設求解選項（pava.Options）：演算法與零權重池策略。
//
// 典型使用情境：
//   - 基準測試（bench）：由 Lab 依設定檔建立 Benchmark 並執行。
//   - 後端服務（HTTP）：由 Lab 建立 FitRuntime，FitRuntime 以求解器池對外提供 Fit。
package pavalab

import (
	"io/fs"

	"github.com/zintix-labs/pavalab/bench"
	"github.com/zintix-labs/pavalab/catalog"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把設定檔編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是組裝器與運行入口。
//
// 使用流程分成兩階段：
//   - 註冊/組裝階段：建立 catalog、掃描設定檔。
//   - 執行階段：Freeze 之後建立 Benchmark 或 FitRuntime。
//
//	lab, _ := pavalab.NewAuto(nil, pavalab.Configs(cfgFS))
//	b, _ := lab.NewBenchmarkByProfile("default")
//	rep, used, _ := b.Run(ctx, true)
type Lab struct {
	cat  *catalog.Catalog
	opts pava.Options
}

// New 建立一個 Lab instance。opts 為 nil 時使用 pava.DefaultOptions()。
//
// cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 profile。
func New(opts *pava.Options, cfgs []fs.FS) (*Lab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	o := pava.DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Algorithm != pava.StackBased && o.Algorithm != pava.MultiPass {
		return nil, errs.InvalidArgf("unknown algorithm %d", o.Algorithm)
	}
	return &Lab{cat: cata, opts: o}, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab instance：註冊全部設定檔後 Freeze。
func NewAuto(opts *pava.Options, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(opts, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll 掃描所有設定檔，全部解析成功才一次性註冊
func (l *Lab) RegisterAll() error {
	return l.cat.RegisterAll()
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

// Options 回傳預設求解選項
func (l *Lab) Options() pava.Options {
	return l.opts
}

func (l *Lab) Profiles() []string {
	return l.cat.Names()
}

func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.Summary()
}

// Setting 取得 profile 對應設定的副本
func (l *Lab) Setting(profile string) (*bench.Setting, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.Setting(profile)
}

// NewBenchmark 以呼叫端提供的設定建立 Benchmark；s 為 nil 時使用預設設定
func (l *Lab) NewBenchmark(s *bench.Setting) (*bench.Benchmark, error) {
	if s == nil {
		s = l.defaultSetting()
	}
	return bench.NewBenchmark(s)
}

// NewBenchmarkByProfile 以 catalog 內的 profile 建立 Benchmark
func (l *Lab) NewBenchmarkByProfile(profile string) (*bench.Benchmark, error) {
	s, err := l.Setting(profile)
	if err != nil {
		return nil, err
	}
	return bench.NewBenchmark(s)
}

func (l *Lab) NewBenchmarkByJSON(raw []byte) (*bench.Benchmark, error) {
	s, err := bench.ParseSettingJSON(raw)
	if err != nil {
		return nil, err
	}
	return bench.NewBenchmark(s)
}

func (l *Lab) NewBenchmarkByYAML(raw []byte) (*bench.Benchmark, error) {
	s, err := bench.ParseSettingYAML(raw)
	if err != nil {
		return nil, err
	}
	return bench.NewBenchmark(s)
}

// SelfTest 以 Lab 的預設選項執行固定輸入檢查
func (l *Lab) SelfTest() (*bench.SelfTestReport, error) {
	o := l.opts
	return bench.SelfTest(&o)
}

// BuildRuntime 建立對外服務用的求解器池。進入 runtime 前 catalog 必須 Freeze。
func (l *Lab) BuildRuntime(poolSize int) (*FitRuntime, error) {
	l.Freeze()
	sp, err := newSolverPool(poolSize, l.opts)
	if err != nil {
		return nil, err
	}
	rt := &FitRuntime{
		lab:  l,
		pool: sp,
		done: make(chan struct{}),
	}
	rt.reason.Store("")
	return rt, nil
}

func (l *Lab) defaultSetting() *bench.Setting {
	s := bench.DefaultSetting()
	s.Algorithm = l.opts.Algorithm.String()
	s.ZeroWeight = l.opts.ZeroWeight.String()
	return s
}
