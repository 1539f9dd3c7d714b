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
	"strings"
	"testing"
)

func TestFilters(t *testing.T) {
	if !onlyResult("ok  \tgithub.com/zintix-labs/pavalab/pava\t0.01s") || !onlyResult("FAIL\tgithub.com/x") {
		t.Fatalf("ok/FAIL lines must pass")
	}
	if onlyResult("=== RUN   TestFit") {
		t.Fatalf("verbose lines must be dropped")
	}
	if skipNoTestFiles("?   \tgithub.com/zintix-labs/pavalab/cmd/svr\t[no test files]") {
		t.Fatalf("no test files must be dropped")
	}
}

func TestTasksRegistered(t *testing.T) {
	for _, name := range []string{"test", "test-all", "test-detail", "bench", "selftest", "pgo"} {
		tk, ok := tasks[name]
		if !ok || tk.run == nil || strings.TrimSpace(tk.desc) == "" {
			t.Fatalf("task %q not registered", name)
		}
	}
}
