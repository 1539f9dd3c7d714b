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

package profiles

import (
	"testing"
)

func TestEmbeddedProfiles(t *testing.T) {
	cat, err := New()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if err := cat.RegisterAll(); err != nil {
		t.Fatalf("register: %v", err)
	}
	cat.Freeze()

	want := []string{"default", "large", "multipass", "random_weights"}
	got := cat.Names()
	if len(got) != len(want) {
		t.Fatalf("names got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names got %v want %v", got, want)
		}
	}

	s, err := cat.Setting("default")
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if s.NumFeatures != 1000 || s.NumIterations != 5 || s.Algorithm != "stack" {
		t.Fatalf("default profile drifted: %+v", s)
	}
	rw, _ := cat.Setting("random_weights")
	if rw.Weights != "random" || rw.ZeroWeight != "propagate" {
		t.Fatalf("random_weights profile: %+v", rw)
	}
}

func TestNewLabAndServerConfig(t *testing.T) {
	lab, err := NewLab(nil)
	if err != nil {
		t.Fatalf("lab: %v", err)
	}
	if _, err := lab.SelfTest(); err != nil {
		t.Fatalf("selftest: %v", err)
	}
	sc, err := NewServerConfig()
	if err != nil {
		t.Fatalf("server config: %v", err)
	}
	if err := sc.Valid(); err != nil {
		t.Fatalf("valid: %v", err)
	}
	if len(sc.Lab.Profiles()) != 4 {
		t.Fatalf("profiles got %v", sc.Lab.Profiles())
	}
}
