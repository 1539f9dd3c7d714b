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

// ops 是開發用任務入口：go run ./scripts <task>
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

type task struct {
	desc string
	run  func() error
}

var tasks = map[string]task{
	"test":        {"go test ./... -cover -count=1 (只顯示 ok/FAIL)", runTest},
	"test-all":    {"go test ./... -cover", runTestAll},
	"test-detail": {"go test ./... -v -count=1 (略過 no test files)", runTestDetail},
	"bench":       {"pava 求解器 micro benchmark", runBench},
	"selftest":    {"go run ./cmd/run selftest（stack 與 multipass）", runSelfTest},
	"pgo":         {"以 large profile 收集 CPU profile，輸出 cmd/run/default.pgo", runPGO},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	name := os.Args[1] // 取第一個參數 (os.Args[0] 是執行檔本身)
	t, ok := tasks[name]
	if !ok {
		PrintYellow(fmt.Sprintf("Unknown task: %s", name))
		usage()
		os.Exit(1)
	}
	if err := t.run(); err != nil {
		PrintRed(fmt.Sprintf("\n%s finished with errors: %v", name, err))
		os.Exit(1) // 告訴 Makefile / CI 失敗了
	}
}

func usage() {
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("Usage: go run ./scripts [task]\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  %-12s %s\n", n, tasks[n].desc)
	}
	PrintDefault(b.String())
}
