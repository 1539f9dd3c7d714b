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

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// lineFilter 決定某行輸出要不要印；回傳 false 代表略過
type lineFilter func(line string) bool

// onlyResult 對應 grep -E '^(ok|FAIL)'，但保留編譯錯誤關鍵字，避免完全看不到原因
func onlyResult(line string) bool {
	return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
		strings.Contains(line, "build failed") || strings.Contains(line, "setup failed")
}

func skipNoTestFiles(line string) bool {
	return !strings.Contains(line, "[no test files]")
}

func cleanTestCache() error {
	cmd := exec.Command("go", "clean", "-testcache")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// runGo 執行 go 子指令；filter 為 nil 時直接接到終端，否則逐行過濾並上色
func runGo(filter lineFilter, args ...string) error {
	cmd := exec.Command("go", args...)
	if filter == nil {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	// 對應 Shell 的 "2>&1"
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	printFiltered(pipe, filter)
	return cmd.Wait()
}

func printFiltered(r io.Reader, filter lineFilter) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !filter(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"):
			PrintRed(line)
		case strings.HasPrefix(line, "Benchmark"):
			PrintBlue(line)
		default:
			fmt.Println(line)
		}
	}
	if err := sc.Err(); err != nil {
		PrintRed(fmt.Sprintf("scanner error: %v", err))
	}
}

func runTest() error {
	PrintGreen("running tests")
	if err := cleanTestCache(); err != nil {
		// clean 失敗不一定要中斷
		PrintYellow(err.Error())
	}
	return runGo(onlyResult, "test", "./...", "-cover", "-count=1")
}

func runTestAll() error {
	PrintGreen("running tests (all with coverage)")
	if err := cleanTestCache(); err != nil {
		return err
	}
	return runGo(nil, "test", "./...", "-cover")
}

func runTestDetail() error {
	PrintGreen("running tests (detail)")
	if err := cleanTestCache(); err != nil {
		return err
	}
	return runGo(skipNoTestFiles, "test", "./...", "-v", "-count=1")
}

func runBench() error {
	PrintGreen("running pava benchmarks")
	return runGo(skipNoTestFiles, "test", "./pava/...", "-run", "^$", "-bench", ".", "-benchmem")
}

func runSelfTest() error {
	for _, algo := range []string{"stack", "multipass"} {
		PrintGreen("selftest: " + algo)
		if err := runGo(nil, "run", "./cmd/run", "selftest", "--algo", algo); err != nil {
			return err
		}
	}
	return nil
}

// runPGO 產生 PGO 用的 profile：go build 會自動讀取 main package 旁的 default.pgo
func runPGO() error {
	dir := filepath.Join("build", "profiling")
	PrintGreen("collecting cpu profile (profile: large)")
	if err := runGo(nil, "run", "./cmd/run", "-p", "large", "--progress=false", "--pprof", "cpu", "--pprof-dir", dir); err != nil {
		return err
	}
	src, err := os.ReadFile(filepath.Join(dir, "cpu.pprof"))
	if err != nil {
		return err
	}
	dst := filepath.Join("cmd", "run", "default.pgo")
	if err := os.WriteFile(dst, src, 0o644); err != nil {
		return err
	}
	PrintGreen("wrote " + dst)
	return nil
}
