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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/pavalab"
	"github.com/zintix-labs/pavalab/bench"
	"github.com/zintix-labs/pavalab/errs"
	"github.com/zintix-labs/pavalab/pava"
	"github.com/zintix-labs/pavalab/profiles"
	v1 "github.com/zintix-labs/pavalab/server/api/v1"
	"github.com/zintix-labs/pavalab/server/logger"
	"github.com/zintix-labs/pavalab/stats"
)

const (
	green = "\033[1;32m"
	reset = "\033[0m"
)

func executeBenchmark(cmd *cobra.Command, cfg *config) error {
	log, err := newLogger(cmd, cfg.logMode)
	if err != nil {
		return err
	}
	render, err := stats.RenderFor(cfg.format)
	if err != nil {
		return err
	}
	lab, err := profiles.NewLab(nil)
	if err != nil {
		return err
	}
	s, err := cfg.resolveSetting(cmd, lab)
	if err != nil {
		return err
	}
	log.Debug("setting resolved", slog.Any("setting", s))

	// 先跑自我檢測，失敗就不做基準測試
	if _, err := bench.SelfTest(s.Options()); err != nil {
		return err
	}
	log.Info("self-test passed", slog.String("algorithm", s.Algorithm))

	b, err := lab.NewBenchmark(s)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	table := strings.EqualFold(cfg.format, "table")
	if table {
		p := message.NewPrinter(language.English)
		p.Fprintf(out, "%s[ALGO:%s] [FEATURES:%d] [ITERATIONS:%d] [WORKERS:%d] [SEED:%d]%s\n",
			green, s.Algorithm, s.NumFeatures, s.NumIterations, s.Workers, b.Seed(), reset)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	rep, used, err := b.Run(ctx, table && cfg.progress)
	if err != nil {
		return err
	}
	log.Info("benchmark done", slog.Duration("used", used), slog.String("run_id", rep.Summary.RunID))

	if table {
		rep.StdOut(out, used)
		return nil
	}
	return rep.WriteWith(out, render)
}

// resolveSetting 基底：--profile > --config > 預設；再以明確給出的 flag 覆蓋
func (cfg *config) resolveSetting(cmd *cobra.Command, lab *pavalab.Lab) (*bench.Setting, error) {
	var (
		s   *bench.Setting
		err error
	)
	switch {
	case cfg.profile != "":
		s, err = lab.Setting(cfg.profile)
	case cfg.configPath != "":
		s, err = bench.LoadSetting(cfg.configPath)
	default:
		s = bench.DefaultSetting()
	}
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("num_features") {
		s.NumFeatures = cfg.numFeatures
	}
	if f.Changed("num_iterations") {
		s.NumIterations = cfg.numIterations
	}
	if f.Changed("workers") {
		s.Workers = cfg.workers
	}
	if f.Changed("algo") {
		s.Algorithm = cfg.algo
	}
	if f.Changed("zero-weight") {
		s.ZeroWeight = cfg.zeroWeight
	}
	if f.Changed("seed") {
		s.Seed = cfg.seed
	}
	if f.Changed("weights") {
		s.Weights = cfg.weights
	}
	if err := s.Valid(); err != nil {
		return nil, err
	}
	return s, nil
}

func newLogger(cmd *cobra.Command, mode string) (*slog.Logger, error) {
	m, err := logger.ParseLogMode(mode)
	if err != nil {
		return nil, err
	}
	return logger.NewWriterLogger(cmd.ErrOrStderr(), m), nil
}

func profileList() string {
	cat, err := profiles.New()
	if err != nil {
		return ""
	}
	if err := cat.RegisterAll(); err != nil {
		return ""
	}
	return strings.Join(cat.Names(), "|")
}

// ============================================================
// ** selftest **
// ============================================================

func prepareSelfTestCmd() *cobra.Command {
	var algo, zeroWeight, format string
	cmd := &cobra.Command{
		Use:          "selftest",
		Short:        "Run the fixed self-test scenario and print the fitted values",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := parseOptions(algo, zeroWeight)
			if err != nil {
				return reportErr(cmd, err)
			}
			rep, err := bench.SelfTest(o)
			if rep != nil {
				if werr := writeSelfTest(cmd.OutOrStdout(), rep, format); werr != nil {
					return reportErr(cmd, werr)
				}
			}
			return reportErr(cmd, err)
		},
	}
	cmd.Flags().StringVar(&algo, "algo", "stack", "solver: stack|multipass")
	cmd.Flags().StringVar(&zeroWeight, "zero-weight", "fail", "zero total weight pool: fail|propagate")
	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table|json|yaml")
	return cmd
}

func writeSelfTest(w io.Writer, rep *bench.SelfTestReport, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rep)
	case "table":
		status := "PASSED"
		if !rep.Passed {
			status = "FAILED"
		}
		fmt.Fprintf(w, "self-test %s [algo:%s tol:%g]\n", status, rep.Algorithm, rep.Tolerance)
		fmt.Fprintf(w, "  input   : %v\n  weights : %v\n  expected: %v\n  fitted  : %v\n",
			rep.Input, rep.Weights, rep.Expected, rep.Fitted)
		return nil
	default:
		return errs.InvalidArgf("unknown format %q (want table|json|yaml)", format)
	}
}

func parseOptions(algo, zeroWeight string) (*pava.Options, error) {
	a, err := pava.ParseAlgorithm(algo)
	if err != nil {
		return nil, err
	}
	zw, err := pava.ParseZeroWeightPolicy(zeroWeight)
	if err != nil {
		return nil, err
	}
	return &pava.Options{Algorithm: a, ZeroWeight: zw}, nil
}

// ============================================================
// ** fit **
// ============================================================

func prepareFitCmd() *cobra.Command {
	var algo, zeroWeight, format string
	cmd := &cobra.Command{
		Use:   "fit [file|-]",
		Short: "Fit a JSON request {\"y\":[..],\"weights\":[..]} read from a file or stdin",
		Example: `  echo '{"y":[1,41,51,1,2,5,24],"weights":[1,2,3,4,5,6,7]}' | pavalab fit
  pavalab fit request.json --algo multipass -o json`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			raw, err := readInput(cmd, src)
			if err != nil {
				return reportErr(cmd, err)
			}
			req := new(pavalab.FitRequest)
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(req); err != nil {
				return reportErr(cmd, errs.WrapWarn(err, "invalid fit request json"))
			}
			if cmd.Flags().Changed("algo") || req.Algorithm == "" {
				req.Algorithm = algo
			}
			if cmd.Flags().Changed("zero-weight") || req.ZeroWeight == "" {
				req.ZeroWeight = zeroWeight
			}
			return reportErr(cmd, runFit(cmd, req, format))
		},
	}
	cmd.Flags().StringVar(&algo, "algo", "stack", "solver: stack|multipass")
	cmd.Flags().StringVar(&zeroWeight, "zero-weight", "fail", "zero total weight pool: fail|propagate")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text|json")
	return cmd
}

func readInput(cmd *cobra.Command, src string) ([]byte, error) {
	if src == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, errs.Wrap(err, "read stdin failed")
		}
		return raw, nil
	}
	raw, err := os.ReadFile(src)
	if err != nil {
		return nil, errs.WrapWarn(err, "read fit request file failed")
	}
	return raw, nil
}

// runFit 走 FitRuntime（單一求解器），與 HTTP /v1/fit 共用同一條路徑
func runFit(cmd *cobra.Command, req *pavalab.FitRequest, format string) error {
	lab, err := profiles.NewLab(nil)
	if err != nil {
		return err
	}
	rt, err := lab.BuildRuntime(1)
	if err != nil {
		return err
	}
	defer rt.Close()

	start := time.Now()
	res, err := rt.Fit(context.Background(), req)
	if err != nil {
		return err
	}
	used := time.Since(start)

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		return json.NewEncoder(out).Encode(v1.NewFitResponse(res, used))
	case "text":
		for _, v := range res.Fitted {
			fmt.Fprintf(out, "%g\n", v)
		}
		return nil
	default:
		return errs.InvalidArgf("unknown format %q (want text|json)", format)
	}
}

// ============================================================
// ** profiles **
// ============================================================

func prepareProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "profiles",
		Short:        "List built-in benchmark profiles",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lab, err := profiles.NewLab(nil)
			if err != nil {
				return reportErr(cmd, err)
			}
			sum, err := lab.Summary()
			if err != nil {
				return reportErr(cmd, err)
			}
			p := message.NewPrinter(language.English)
			out := cmd.OutOrStdout()
			p.Fprintf(out, "%-16s %12s %10s %8s %-10s %-10s %-8s\n",
				"NAME", "FEATURES", "ITERS", "WORKERS", "ALGO", "ZERO_W", "WEIGHTS")
			for _, s := range sum {
				p.Fprintf(out, "%-16s %12d %10d %8d %-10s %-10s %-8s\n",
					s.Name, s.NumFeatures, s.NumIterations, s.Workers, s.Algorithm, s.ZeroWeight, s.Weights)
			}
			return nil
		},
	}
}
