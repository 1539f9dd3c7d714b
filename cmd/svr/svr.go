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
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zintix-labs/pavalab"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
	"github.com/zintix-labs/pavalab/profiles"
	"github.com/zintix-labs/pavalab/profiles/profile_configs"
	"github.com/zintix-labs/pavalab/server"
	"github.com/zintix-labs/pavalab/server/logger"
	"github.com/zintix-labs/pavalab/server/svrcfg"
)

// pavalab HTTP 服務入口：內建 profile，可用 --profiles-dir 追加本機設定檔目錄。
func main() {
	if err := prepareRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type config struct {
	addr         string
	logMode      string
	pool         int
	algo         string
	zeroWeight   string
	profilesDir  string
	maxBody      int64
	fitTimeout   time.Duration
	benchTimeout time.Duration
}

func prepareRootCmd() *cobra.Command {
	return newRootCmd(new(config))
}

func newRootCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		SilenceUsage: true,
		Use:          "pavalab-svr [flags]",
		Short:        "Serve isotonic fits and benchmarks over HTTP",
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sCfg, err := cfg.serverConfig()
			if err != nil {
				return err
			}
			return server.RunContext(cmd.Context(), sCfg, nil)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.addr, "addr", ":5808", "listen address")
	f.StringVar(&cfg.logMode, "log-mode", "dev", "log mode: dev|prod|silence")
	f.IntVar(&cfg.pool, "pool", svrcfg.DefaultPoolSize, "number of solver workers (1..64)")
	f.StringVar(&cfg.algo, "algo", "stack", "default solver: stack|multipass")
	f.StringVar(&cfg.zeroWeight, "zero-weight", "fail", "default zero total weight policy: fail|propagate")
	f.StringVar(&cfg.profilesDir, "profiles-dir", "", "extra directory of benchmark profile YAML/JSON files")
	f.Int64Var(&cfg.maxBody, "max-body", svrcfg.DefaultMaxBodyBytes, "max request body in bytes")
	f.DurationVar(&cfg.fitTimeout, "fit-timeout", svrcfg.DefaultFitTimeout, "per-request fit timeout")
	f.DurationVar(&cfg.benchTimeout, "bench-timeout", svrcfg.DefaultBenchTimeout, "per-request benchmark timeout")
	return cmd
}

func (cfg *config) serverConfig() (*svrcfg.SvrCfg, error) {
	mode, err := logger.ParseLogMode(cfg.logMode)
	if err != nil {
		return nil, err
	}
	a, err := pava.ParseAlgorithm(cfg.algo)
	if err != nil {
		return nil, err
	}
	zw, err := pava.ParseZeroWeightPolicy(cfg.zeroWeight)
	if err != nil {
		return nil, err
	}
	opts := &pava.Options{Algorithm: a, ZeroWeight: zw}

	var lab *pavalab.Lab
	if cfg.profilesDir == "" {
		lab, err = profiles.NewLab(opts)
	} else {
		fi, statErr := os.Stat(cfg.profilesDir)
		if statErr != nil || !fi.IsDir() {
			return nil, errs.InvalidArgf("profiles-dir %q is not a directory", cfg.profilesDir)
		}
		lab, err = pavalab.NewAuto(opts, pavalab.Configs(profile_configs.FS, os.DirFS(cfg.profilesDir)))
	}
	if err != nil {
		return nil, err
	}

	log, _ := logger.NewAsync(4096, mode)
	return &svrcfg.SvrCfg{
		Log:          log,
		Addr:         cfg.addr,
		PoolSize:     cfg.pool,
		MaxBodyBytes: cfg.maxBody,
		FitTimeout:   cfg.fitTimeout,
		BenchTimeout: cfg.benchTimeout,
		Lab:          lab,
	}, nil
}
