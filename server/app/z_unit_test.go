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

package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeComp struct {
	runErr   error
	block    chan struct{}
	shutdown atomic.Int32
}

func (f *fakeComp) Run() error {
	if f.runErr != nil {
		return f.runErr
	}
	<-f.block
	return nil
}

func (f *fakeComp) Shutdown(ctx context.Context) error {
	if f.shutdown.Add(1) == 1 && f.block != nil {
		close(f.block)
	}
	return nil
}

func TestRunContextStopsOnCancel(t *testing.T) {
	c := &fakeComp{block: make(chan struct{})}
	closed := 0
	cl := NewCloser(func() { closed++ })
	a := NewWith(c, cl).WithShutdownTimeout(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.RunContext(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("app did not stop")
	}
	if c.shutdown.Load() != 1 || closed != 1 {
		t.Fatalf("components not shut down: comp=%d closer=%d", c.shutdown.Load(), closed)
	}
	// 重複 Shutdown 不會再次呼叫 close
	_ = cl.Shutdown(context.Background())
	if closed != 1 {
		t.Fatalf("closer called twice")
	}
}

func TestRunContextReturnsComponentError(t *testing.T) {
	boom := errors.New("listen failed")
	other := &fakeComp{block: make(chan struct{})}
	a := NewWith(other, &fakeComp{runErr: boom})
	err := a.RunContext(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("got %v want %v", err, boom)
	}
	if other.shutdown.Load() != 1 {
		t.Fatalf("healthy component should be shut down")
	}
}
