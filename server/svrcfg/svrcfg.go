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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/pavalab"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/server/logger"
)

const (
	DefaultPoolSize     = 4
	DefaultMaxBodyBytes = 8 << 20 // 8 MiB
	DefaultFitTimeout   = 5 * time.Second
	DefaultBenchTimeout = 60 * time.Second
	// 單次 HTTP bench 的上限，避免一個請求佔住整台機器
	DefaultMaxBenchFeatures   = 1_000_000
	DefaultMaxBenchIterations = 1_000
)

type SvrCfg struct {
	Log          *slog.Logger
	Addr         string
	PoolSize     int
	MaxBodyBytes int64
	FitTimeout   time.Duration
	BenchTimeout time.Duration

	MaxBenchFeatures   int
	MaxBenchIterations int

	Lab *pavalab.Lab
}

// Valid 補齊預設值並檢查必要依賴
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	// 1 <= PoolSize <= 64
	// for 資源管理
	if sc.PoolSize < 1 {
		sc.PoolSize = DefaultPoolSize
	}
	sc.PoolSize = min(64, sc.PoolSize)

	if sc.MaxBodyBytes <= 0 {
		sc.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if sc.FitTimeout <= 0 {
		sc.FitTimeout = DefaultFitTimeout
	}
	if sc.BenchTimeout <= 0 {
		sc.BenchTimeout = DefaultBenchTimeout
	}
	if sc.MaxBenchFeatures <= 0 {
		sc.MaxBenchFeatures = DefaultMaxBenchFeatures
	}
	if sc.MaxBenchIterations <= 0 {
		sc.MaxBenchIterations = DefaultMaxBenchIterations
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}
