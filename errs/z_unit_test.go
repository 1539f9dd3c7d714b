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

package errs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindMatchesSentinel(t *testing.T) {
	err := InvalidArgf("length mismatch: y=%d weights=%d", 3, 2)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("invalid argument must not match division by zero")
	}
	if err.ErrLv != Warn {
		t.Fatalf("expected warn level, got %s", ErrLv(err.ErrLv))
	}
	if !strings.Contains(err.Error(), "kind=invalid_argument") {
		t.Fatalf("kind missing from message: %q", err.Error())
	}
}

func TestWrapKeepsLevelAndKind(t *testing.T) {
	inner := DivByZerof("pool [%d,%d] has zero weight", 1, 2)
	outer := Wrap(fmt.Errorf("solve: %w", inner), "fit failed")
	if outer.ErrLv != Warn {
		t.Fatalf("wrap must keep warn level, got %s", ErrLv(outer.ErrLv))
	}
	if !errors.Is(outer, ErrDivisionByZero) {
		t.Fatalf("wrapped error lost its kind: %v", outer)
	}

	plain := Wrap(errors.New("io"), "read failed")
	if plain.ErrLv != Fatal || plain.Kind != KindUnknown {
		t.Fatalf("foreign cause must be fatal/unknown, got %s/%s", ErrLv(plain.ErrLv), plain.Kind)
	}
	if errors.Is(plain, ErrInvalidArgument) {
		t.Fatalf("unknown kind must not match sentinel")
	}
}

func TestWrapWarnAndCanceled(t *testing.T) {
	w := WrapWarn(errors.New("bad json"), "decode failed")
	if w.ErrLv != Warn || !errors.Is(w, ErrInvalidArgument) {
		t.Fatalf("WrapWarn must produce warn/invalid_argument, got %v", w)
	}

	c := Canceled(context.DeadlineExceeded, "bench canceled")
	if !errors.Is(c, ErrCanceled) {
		t.Fatalf("expected canceled kind")
	}
	if !errors.Is(c, context.DeadlineExceeded) {
		t.Fatalf("cause must stay reachable")
	}
}

func TestAsErr(t *testing.T) {
	if _, ok := AsErr(errors.New("x")); ok {
		t.Fatalf("plain error must not convert")
	}
	e, ok := AsErr(fmt.Errorf("ctx: %w", NewFatal("boom")))
	if !ok || e.ErrLv != Fatal {
		t.Fatalf("expected fatal *E, got %v %v", e, ok)
	}
}
