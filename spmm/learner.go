package spmm

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrStillCounterexample: after refinement the hypothesis still disagrees
// on the counterexample.
var ErrStillCounterexample = errors.New("counterexample still disagrees after refinement")

// Learner runs the outer loop: ask the equivalence checker, refine, repeat.
type Learner struct {
	refiner *Refiner
	eq      EquivalenceChecker
	counter *CountingOracle
	logger  *zap.Logger
	runID   string
	rounds  int
	elapsed time.Duration
}

func NewLearner(refiner *Refiner, eq EquivalenceChecker, counter *CountingOracle, opts ...Option) *Learner {
	o := buildOptions(opts)
	id := uuid.NewString()
	return &Learner{
		refiner: refiner,
		eq:      eq,
		counter: counter,
		logger:  o.logger.With(zap.String("run", id)),
		runID:   id,
	}
}

func (l *Learner) RunID() string { return l.runID }
func (l *Learner) Rounds() int   { return l.rounds }

// Learn refines until the equivalence checker finds no counterexample and
// returns the final hypothesis.
func (l *Learner) Learn() (*System, error) {
	started := time.Now()
	defer func() { l.elapsed = time.Since(started) }()

	l.refiner.StartLearning()
	hyp := l.refiner.Hypothesis()
	for {
		ce, found := l.eq.FindCounterexample(hyp)
		if !found {
			break
		}
		l.rounds++
		if _, err := l.refiner.Refine(ce.Input, ce.Output); err != nil {
			return nil, fmt.Errorf("round %d: %w", l.rounds, err)
		}
		hyp = l.refiner.Hypothesis()

		prefix, prefixOut := ce.Input, ce.Output
		if i := hyp.outputs.FirstPostReturn(ce.Output); i != -1 {
			prefix, prefixOut = ce.Input[:i], ce.Output[:i]
		}
		if !hyp.Compute(prefix).Equal(prefixOut) {
			return nil, fmt.Errorf("round %d: %w: %v", l.rounds, ErrStillCounterexample, prefix)
		}
		l.logger.Debug("round complete",
			zap.Int("round", l.rounds),
			zap.Int("ce_length", len(ce.Input)),
			zap.Int("hypothesis_size", hyp.Size()))
	}
	st := l.Stats()
	l.logger.Info("learning finished",
		zap.Int("rounds", st.Rounds),
		zap.Int("procedures", len(hyp.Calls())),
		zap.Int("hypothesis_size", hyp.Size()),
		zap.Int64("queries", st.Queries),
		zap.Int64("query_symbols", st.QuerySymbols))
	return hyp, nil
}

// Stats snapshots the counters of this run.
func (l *Learner) Stats() Stats {
	hyp := l.refiner.Hypothesis()
	s := Stats{
		RunID:          l.runID,
		Rounds:         l.rounds,
		Refiner:        l.refiner.Stats(),
		HypothesisSize: hyp.Size(),
		Procedures:     len(hyp.Calls()),
		Elapsed:        l.elapsed,
	}
	if l.counter != nil {
		s.Queries = l.counter.Queries()
		s.QuerySymbols = l.counter.Symbols()
	}
	return s
}

// LearnSystem learns truth from scratch through a simulator oracle with the
// given sub-learner factory.
func LearnSystem(truth *System, factory LearnerFactory, opts ...Option) (*System, Stats, error) {
	eq, err := NewEquivalenceOracle(truth, opts...)
	if err != nil {
		return nil, Stats{}, err
	}
	counter := NewCountingOracle(NewSimulatorOracle(truth))
	refiner := NewRefiner(truth.inputs, truth.outputs, counter, factory, opts...)
	learner := NewLearner(refiner, eq, counter, opts...)
	hyp, err := learner.Learn()
	return hyp, learner.Stats(), err
}
