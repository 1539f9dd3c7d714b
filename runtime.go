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

package pavalab

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
)

// FitRequest 一次求解請求。Algorithm / ZeroWeight 為空時使用 Lab 的預設選項。
type FitRequest struct {
	Y          []float64 `json:"y"`
	Weights    []float64 `json:"weights"`
	Algorithm  string    `json:"algorithm,omitempty"`
	ZeroWeight string    `json:"zero_weight,omitempty"`
}

// FitRuntime 對外服務的運行入口，持有求解器池與生命週期狀態
type FitRuntime struct {
	lab  *Lab
	pool *SolverPool

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

// Fit 解析請求選項後借出求解器求解；回傳的 Result 由呼叫端獨佔持有。
func (rt *FitRuntime) Fit(ctx context.Context, req *FitRequest) (*pava.Result, error) {
	select {
	case <-ctx.Done():
		return nil, errs.Canceled(ctx.Err(), "fit canceled/timeout")
	case <-rt.done:
		rt.closed.Store(true)
		return nil, errs.NewFatal("fit runtime closed: " + rt.ClosedReason())
	default:
	}
	if req == nil {
		return nil, errs.InvalidArgf("fit request required")
	}
	opts, err := rt.options(req)
	if err != nil {
		return nil, err
	}
	return rt.pool.Fit(ctx, req.Y, req.Weights, opts)
}

func (rt *FitRuntime) options(req *FitRequest) (pava.Options, error) {
	o := rt.lab.opts
	if req.Algorithm != "" {
		a, err := pava.ParseAlgorithm(req.Algorithm)
		if err != nil {
			return o, err
		}
		o.Algorithm = a
	}
	if req.ZeroWeight != "" {
		zw, err := pava.ParseZeroWeightPolicy(req.ZeroWeight)
		if err != nil {
			return o, err
		}
		o.ZeroWeight = zw
	}
	return o, nil
}

// Lab 回傳建立此 runtime 的 Lab
func (rt *FitRuntime) Lab() *Lab {
	return rt.lab
}

// Metrics 求解器池的觀測快照
func (rt *FitRuntime) Metrics() PoolMetrics {
	return rt.pool.Metrics()
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *FitRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and its pool, recording the reason once.
func (rt *FitRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		rt.pool.closeWithReason(reason)
	})
}

// Closed reports whether the runtime has been closed.
func (rt *FitRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *FitRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
