package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rfielding/spmm-learner/models/catalog"
	"github.com/rfielding/spmm-learner/spmm"
)

var (
	benchWorkers int
	benchPretty  bool
	benchSkipRng bool
)

// benchCmd learns every bundled system with every handler
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Learn all bundled and random systems with every handler",
	Long: `Runs one learning job per (system, handler) pair, concurrently up to the
configured number of workers, and prints a comparison table. Random systems
are generated from bench.seeds in the configuration.`,
	Args: cobra.NoArgs,
	RunE: runBenchCmd,
}

func init() {
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 0, "Concurrent learning runs (default from config)")
	benchCmd.Flags().BoolVar(&benchPretty, "pretty", false, "Render the table for the terminal")
	benchCmd.Flags().BoolVar(&benchSkipRng, "no-random", false, "Skip generated random systems")
}

func benchJobs(specs []spmm.Spec) []spmm.BenchJob {
	handlers := []spmm.CounterexampleHandler{spmm.MalerPnueli, spmm.RivestSchapire}
	jobs := make([]spmm.BenchJob, 0, len(specs)*len(handlers))
	for _, s := range specs {
		for _, h := range handlers {
			jobs = append(jobs, spmm.BenchJob{Model: s, Handler: h})
		}
	}
	return jobs
}

func runBenchCmd(cmd *cobra.Command, args []string) error {
	specs, err := catalog.All()
	if err != nil {
		return err
	}
	if !benchSkipRng {
		b := cfg.Bench
		specs = append(specs, catalog.RandomSpecs(b.Seeds, b.Procedures, b.Internals, b.Size)...)
	}
	workers := benchWorkers
	if workers <= 0 {
		workers = cfg.Bench.Workers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	jobs := benchJobs(specs)
	logger.Info("benchmark", zap.Int("jobs", len(jobs)), zap.Int("workers", workers))
	results, err := spmm.RunBench(ctx, jobs, workers, logger)
	if err != nil {
		return err
	}

	md := "# Benchmark\n\n" + spmm.GenerateBenchTable(results)
	if err := writeMarkdown(cmd.OutOrStdout(), md, benchPretty); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil || !r.Equivalent {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(results))
	}
	return nil
}
