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
	"sync"
)

// Component 是 App 管理的長生命週期元件（HTTP server、FitRuntime…）。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Closer 把只有 Close() 的資源包成 Component：Run 阻塞到 Shutdown 被呼叫。
type Closer struct {
	close func()
	done  chan struct{}
	once  sync.Once
}

func NewCloser(close func()) *Closer {
	return &Closer{close: close, done: make(chan struct{})}
}

func (c *Closer) Run() error {
	<-c.done
	return nil
}

func (c *Closer) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		close(c.done)
		if c.close != nil {
			c.close()
		}
	})
	return nil
}
