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

package netsvr

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultAddr string = ":5808"

// Timeouts 控制 http.Server 的讀寫期限。
// bench 請求可能跑數秒，WriteTimeout 需大於最長的 bench。
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

var DefaultTimeouts = Timeouts{
	Read:  10 * time.Second,
	Write: 60 * time.Second,
	Idle:  120 * time.Second,
}

// ChiAdapter 以 chi 實作 NetSvr
type ChiAdapter struct {
	router chi.Router
	server *http.Server
	addr   string
}

func NewChiServer(addr string) *ChiAdapter {
	return NewChiServerWith(addr, DefaultTimeouts)
}

func NewChiServerDefault() *ChiAdapter {
	return NewChiServerWith(defaultAddr, DefaultTimeouts)
}

// NewChiServerWith 以指定位址與逾時建立；addr 為空使用 :5808，零值逾時沿用預設。
func NewChiServerWith(addr string, to Timeouts) *ChiAdapter {
	if addr == "" {
		addr = defaultAddr
	}
	if to.Read <= 0 {
		to.Read = DefaultTimeouts.Read
	}
	if to.Write <= 0 {
		to.Write = DefaultTimeouts.Write
	}
	if to.Idle <= 0 {
		to.Idle = DefaultTimeouts.Idle
	}
	cr := chi.NewRouter()
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:              addr,
			Handler:           cr,
			ReadTimeout:       to.Read,
			ReadHeaderTimeout: to.Read,
			WriteTimeout:      to.Write,
			IdleTimeout:       to.Idle,
		},
		addr: addr,
	}
}

func (c *ChiAdapter) Ready() bool {
	return (c != nil) && (c.router != nil) && (c.server != nil) &&
		(c.addr != "") && (strings.HasPrefix(c.addr, ":") || strings.Contains(c.addr, ":")) &&
		(c.server.Handler != nil) && (c.server.Handler == c.router)
}

func (c *ChiAdapter) Run() error {
	return c.server.ListenAndServe()
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) {
	c.router.Use(mw)
}

func (c *ChiAdapter) Get(path string, h http.HandlerFunc) {
	c.router.Get(path, h)
}

func (c *ChiAdapter) Post(path string, h http.HandlerFunc) {
	c.router.Post(path, h)
}

func (c *ChiAdapter) Put(path string, h http.HandlerFunc) {
	c.router.Put(path, h)
}

func (c *ChiAdapter) Delete(path string, h http.HandlerFunc) {
	c.router.Delete(path, h)
}

func (c *ChiAdapter) Group(path string, fn func(subRouter NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		subAdapter := &ChiAdapter{
			router: r,
			server: nil,
		}
		fn(subAdapter)
	})
}

// Handler 回傳根路由，httptest 直接拿來打
func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}

func (c *ChiAdapter) Address() string {
	return c.addr
}
