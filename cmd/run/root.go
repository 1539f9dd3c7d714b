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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zintix-labs/pavalab/bench"
	"github.com/zintix-labs/pavalab/perf"
)

// config 收集 CLI flag；只有使用者明確給的 flag 會覆蓋 profile/設定檔的值
type config struct {
	numFeatures   int
	numIterations int
	workers       int
	algo          string
	zeroWeight    string
	seed          int64
	weights       string

	configPath string
	profile    string
	format     string
	progress   bool
	logMode    string

	pprofMode string
	pprofDir  string
}

func prepareRootCmd() *cobra.Command {
	cfg := new(config)

	rootCmd := &cobra.Command{
		SilenceUsage:  true,
		SilenceErrors: true,

		Use:   "pavalab [flags]",
		Short: "Weighted isotonic regression (PAVA) self-test and benchmark",
		Long: `pavalab runs the fixed self-test scenario, then times num_iterations
isotonic fits of a sorted logistic-like 0/1 sequence of num_features points
and prints the timing report ending with "Average time: <seconds>".`,
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return reportErr(cmd, perf.RunPProf(func() error {
				return executeBenchmark(cmd, cfg)
			}, cfg.pprofMode, cfg.pprofDir))
		},
	}

	f := rootCmd.Flags()
	f.IntVar(&cfg.numFeatures, "num_features", bench.DefaultFeatures, "number of points per fit")
	f.IntVar(&cfg.numIterations, "num_iterations", bench.DefaultIterations, "number of timed fits")
	f.IntVarP(&cfg.workers, "workers", "w", 1, "number of concurrent workers")
	f.StringVar(&cfg.algo, "algo", "stack", "solver: stack|multipass")
	f.StringVar(&cfg.zeroWeight, "zero-weight", "fail", "zero total weight pool: fail|propagate")
	f.Int64Var(&cfg.seed, "seed", 0, "int64 seed for data generation (< 1 picks a random seed)")
	f.StringVar(&cfg.weights, "weights", bench.WeightsUniform, "weights: uniform|random")
	f.StringVarP(&cfg.configPath, "config", "c", "", "benchmark setting file (.yaml|.yml|.json)")
	f.StringVarP(&cfg.profile, "profile", "p", "", "built-in profile: "+profileList())
	f.StringVarP(&cfg.format, "format", "o", "table", "report format: table|json|yaml")
	f.BoolVar(&cfg.progress, "progress", true, "show progress bar on stderr (table format only)")
	f.StringVar(&cfg.logMode, "log-mode", "silence", "log mode: dev|prod|silence (logs go to stderr)")
	f.StringVar(&cfg.pprofMode, "pprof", "", "pprof: '', cpu, heap, allocs")
	f.StringVar(&cfg.pprofDir, "pprof-dir", perf.DefaultDir, "directory for pprof output")
	rootCmd.MarkFlagsMutuallyExclusive("config", "profile")

	rootCmd.AddCommand(prepareSelfTestCmd(), prepareFitCmd(), prepareProfilesCmd())
	return rootCmd
}

// reportErr 把錯誤寫到 stderr；main 只負責 exit code
func reportErr(cmd *cobra.Command, err error) error {
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
	return err
}
