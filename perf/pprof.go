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

// Package perf 包裝 runtime/pprof，讓 CLI 可以用一個 flag 切換 profiling 模式。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/pavalab/errs"
)

const DefaultDir = "build/profiling" // pprof檔案寫入路徑

// Modes 可用的 profiling 模式（空字串表示不開）
var Modes = []string{"", "cpu", "heap", "allocs"}

// ValidMode 檢查模式字串
func ValidMode(mode string) error {
	for _, m := range Modes {
		if m == mode {
			return nil
		}
	}
	return errs.InvalidArgf("unknown pprof mode %q (want cpu|heap|allocs)", mode)
}

// RunPProf 依 mode 包住 exe 執行；dir 為空時寫到 build/profiling。
// exe 的錯誤原樣回傳，profiling 本身的錯誤以 Fatal 回傳。
func RunPProf(exe func() error, mode, dir string) error {
	if err := ValidMode(mode); err != nil {
		return err
	}
	if mode == "" {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "perf : create profiling dir failed")
	}
	switch mode {
	case "cpu":
		return PProfCPU(exe, dir)
	case "heap":
		return PProfHeap(exe, dir)
	default:
		return PProfAllocs(exe, dir)
	}
}

// PProfCPU 在 exe 執行期間收集 CPU profile，輸出 <dir>/cpu.pprof。
//
// 可以作性能分析，也可以拿來做構建時給pgo的優化blueprint
//
// Usage like:
//
//	go run ./cmd/run --pprof cpu
func PProfCPU(exe func() error, dir string) error {
	f, err := os.Create(filepath.Join(dir, "cpu.pprof"))
	if err != nil {
		return errs.Wrap(err, "perf : create cpu.pprof failed")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "perf : start cpu profile failed")
	}
	defer pprof.StopCPUProfile()

	return exe()
}

// PProfHeap 會在 exe() 執行完後，寫出一次 Heap Snapshot（in-use memory）。
// 寫出前呼叫一次 runtime.GC()，讓快照貼近 live objects。
// 輸出檔：<dir>/heap.pprof
func PProfHeap(exe func() error, dir string) error {
	exeErr := exe()

	runtime.GC()
	f, err := os.Create(filepath.Join(dir, "heap.pprof"))
	if err != nil {
		return errs.Wrap(err, "perf : create heap.pprof failed")
	}
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errs.Wrap(err, "perf : write heap profile failed")
	}
	return exeErr
}

// PProfAllocs 會在 exe() 後寫出累積配置 (allocs) Profile，
// 搭配 -alloc_space / -alloc_objects 查看分配熱點。
// 輸出檔：<dir>/allocs.pprof
func PProfAllocs(exe func() error, dir string) error {
	exeErr := exe()

	f, err := os.Create(filepath.Join(dir, "allocs.pprof"))
	if err != nil {
		return errs.Wrap(err, "perf : create allocs.pprof failed")
	}
	defer f.Close()
	if prof := pprof.Lookup("allocs"); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			return errs.Wrap(err, "perf : write allocs profile failed")
		}
	}
	return exeErr
}
