package spmm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BenchJob is one learning run of a benchmark.
type BenchJob struct {
	Model   Spec
	Handler CounterexampleHandler
}

// BenchResult is the outcome of one BenchJob.
type BenchResult struct {
	Model      string
	Handler    string
	Stats      Stats
	Equivalent bool
	Err        error
}

// RunBench learns every job concurrently with at most workers runs at a
// time. A failing run is reported in its result; only cancellation of ctx
// aborts the benchmark.
func RunBench(ctx context.Context, jobs []BenchJob, workers int, logger *zap.Logger) ([]BenchResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	results := make([]BenchResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = runJob(job, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runJob(job BenchJob, logger *zap.Logger) BenchResult {
	res := BenchResult{Model: job.Model.Name(), Handler: job.Handler.String()}
	truth, err := job.Model.Build()
	if err != nil {
		res.Err = err
		return res
	}
	log := logger.With(zap.String("model", res.Model), zap.String("handler", res.Handler))
	hyp, stats, err := LearnSystem(truth, LStarFactory(job.Handler), WithLogger(log))
	res.Stats = stats
	if err != nil {
		res.Err = err
		log.Warn("learning failed", zap.Error(err))
		return res
	}
	res.Equivalent = Equivalent(truth, hyp)
	return res
}

// GenerateBenchTable renders results as a markdown table sorted by model
// and handler.
func GenerateBenchTable(results []BenchResult) string {
	sorted := append([]BenchResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Model != sorted[j].Model {
			return sorted[i].Model < sorted[j].Model
		}
		return sorted[i].Handler < sorted[j].Handler
	})

	var sb strings.Builder
	sb.WriteString("| Model | Handler | Result | Rounds | Queries | Symbols | Local refinements | Size | Run |\n")
	sb.WriteString("|-------|---------|--------|--------|---------|---------|-------------------|------|-----|\n")
	for _, r := range sorted {
		result := "equivalent"
		switch {
		case r.Err != nil:
			result = "error: " + r.Err.Error()
		case !r.Equivalent:
			result = "not equivalent"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %d | %d | %d | %d | %s |\n",
			r.Model, r.Handler, result, r.Stats.Rounds, r.Stats.Queries, r.Stats.QuerySymbols,
			r.Stats.Refiner.LocalRefinements, r.Stats.HypothesisSize, shortID(r.Stats.RunID)))
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
