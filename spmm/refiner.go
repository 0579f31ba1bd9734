package spmm

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrLengthMismatch: a counterexample's input and output differ in length.
	ErrLengthMismatch = errors.New("input and output lengths differ")
	// ErrMalformedQuery: a counterexample is empty or does not start with a call.
	ErrMalformedQuery = errors.New("counterexample must start with a call symbol")
	// ErrNotCounterexample: refinement neither changed sequences nor any procedure.
	ErrNotCounterexample = errors.New("word is not a counterexample")
	// ErrRefinementFailed: a sub-learner refused a genuine local counterexample.
	ErrRefinementFailed = errors.New("sub-learner did not refine on a local counterexample")
)

// Option configures a Refiner, Learner or EquivalenceOracle.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	updater SequenceUpdater
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSequenceUpdater installs a sequence shortening hook on the tracker.
func WithSequenceUpdater(u SequenceUpdater) Option {
	return func(o *options) { o.updater = u }
}

// RefinerStats are the counters of a Refiner.
type RefinerStats struct {
	GlobalRefinements          int
	Counterexamples            int
	SequenceOnlyCEs            int
	TSConformanceChecks        int
	LocalRefinements           int
	LocalCounterexampleSymbols int
}

// Refiner turns global counterexamples into procedure discoveries, sequence
// updates and local refinements of per-procedure sub-learners.
type Refiner struct {
	inputs  *InputAlphabet
	outputs *OutputAlphabet
	mapper  Mapper
	tracker *SequenceTracker
	oracle  MembershipOracle
	factory LearnerFactory
	logger  *zap.Logger

	initialCall Symbol
	learners    map[Symbol]SubLearner
	active      SymbolSet

	stats RefinerStats
}

func NewRefiner(inputs *InputAlphabet, outputs *OutputAlphabet, oracle MembershipOracle,
	factory LearnerFactory, opts ...Option) *Refiner {

	o := buildOptions(opts)
	mapper := NewMapper(inputs, outputs)
	tracker := NewSequenceTracker(mapper)
	tracker.updater = o.updater
	return &Refiner{
		inputs:   inputs,
		outputs:  outputs,
		mapper:   mapper,
		tracker:  tracker,
		oracle:   oracle,
		factory:  factory,
		logger:   o.logger,
		learners: make(map[Symbol]SubLearner),
		active:   NewSymbolSet(),
	}
}

// StartLearning is a no-op: sub-learners are created on discovery.
func (r *Refiner) StartLearning() {}

func (r *Refiner) Tracker() *SequenceTracker { return r.tracker }

// ActiveCalls lists the activated calls in alphabet order.
func (r *Refiner) ActiveCalls() []Symbol { return r.inputs.SortCalls(r.active) }

// KnownCalls lists calls that have a sub-learner, in alphabet order.
func (r *Refiner) KnownCalls() []Symbol {
	set := NewSymbolSet()
	for c := range r.learners {
		set.Add(c)
	}
	return r.inputs.SortCalls(set)
}

// ActiveAlphabet is internals, active calls and the return symbol.
func (r *Refiner) ActiveAlphabet() []Symbol {
	out := r.inputs.Internals()
	out = append(out, r.ActiveCalls()...)
	return append(out, r.inputs.Return())
}

func (r *Refiner) Stats() RefinerStats {
	s := r.stats
	for _, l := range r.learners {
		s.LocalRefinements += l.Refinements()
		s.LocalCounterexampleSymbols += l.CounterexampleSymbols()
	}
	return s
}

func (r *Refiner) subModels() map[Symbol]Procedure {
	out := make(map[Symbol]Procedure, len(r.learners))
	for c, l := range r.learners {
		out[c] = l.HypothesisModel()
	}
	return out
}

// Hypothesis assembles the current system hypothesis.
func (r *Refiner) Hypothesis() *System {
	if len(r.learners) == 0 {
		return NewEmptySystem(r.inputs, r.outputs)
	}
	sys, err := NewSystem(r.inputs, r.outputs, r.initialCall, r.subModels(), r.ActiveCalls())
	if err != nil {
		panic(fmt.Sprintf("spmm: inconsistent hypothesis: %v", err))
	}
	return sys
}

// Refine processes a counterexample. It returns true when the hypothesis or
// the tracked sequences changed.
func (r *Refiner) Refine(input Word, output OutputWord) (bool, error) {
	if len(input) != len(output) {
		return false, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(input), len(output))
	}
	if len(input) == 0 || !r.inputs.IsCall(input[0]) {
		return false, fmt.Errorf("%w: %v", ErrMalformedQuery, input)
	}

	fed := make(map[string]bool)
	changed, err := r.discover(input, output, fed)
	if err != nil {
		return false, err
	}

	refined := false
	for {
		ok, err := r.refineLocal(input, output, fed)
		if err != nil {
			return false, err
		}
		if !ok {
			break
		}
		refined = true
		r.stats.GlobalRefinements++
	}

	if changed || refined {
		r.stats.Counterexamples++
	}
	if changed && !refined {
		r.stats.SequenceOnlyCEs++
	}
	if !changed && !refined {
		return false, fmt.Errorf("%w: %v / %v", ErrNotCounterexample, input, output)
	}
	return true, nil
}

// discover updates the initial call, tracked sequences and sub-learners.
func (r *Refiner) discover(input Word, output OutputWord, fed map[string]bool) (bool, error) {
	changed := false
	if r.outputs.FirstError(output) != 0 && r.outputs.FirstPostReturn(output) != 0 {
		if r.initialCall != input[0] {
			r.logger.Debug("initial call set", zap.String("call", string(input[0])))
			r.initialCall = input[0]
			changed = true
		}
	}

	discovered, scanned := r.tracker.Scan(input, output)
	changed = changed || scanned

	for _, c := range r.tracker.TerminatingCalls(r.KnownCalls()) {
		if !r.active.Has(c) {
			r.activate(c)
		}
	}

	for _, c := range discovered {
		oracle := NewProceduralOracle(c, r.oracle, r.mapper, r.tracker)
		l := r.factory(r.inputs.Internals(), oracle)
		l.StartLearning()
		l.AddAlphabetSymbol(r.inputs.Return())
		for _, a := range r.ActiveCalls() {
			l.AddAlphabetSymbol(a)
		}
		r.learners[c] = l
		access, _ := r.tracker.AccessSequence(c)
		r.logger.Debug("procedure discovered",
			zap.String("call", string(c)),
			zap.Stringer("access", access))
		if r.tracker.IsTerminating(c) {
			r.activate(c)
		}
	}

	if len(discovered) > 0 || changed {
		r.updateSequences()
		for {
			conform, err := r.tsConform(fed)
			if err != nil {
				return false, err
			}
			if conform {
				break
			}
			r.updateSequences()
		}
		return true, nil
	}
	return false, nil
}

// activate commits c to call semantics in every sub-learner.
func (r *Refiner) activate(c Symbol) {
	r.active.Add(c)
	for _, l := range r.learners {
		l.AddAlphabetSymbol(c)
	}
	ts, _ := r.tracker.TerminatingSequence(c)
	r.logger.Debug("call activated", zap.String("call", string(c)), zap.Stringer("terminating", ts))
}

func (r *Refiner) updateSequences() {
	transformers := make(map[Symbol]AccessSequenceTransformer, len(r.learners))
	for c, l := range r.learners {
		transformers[c] = l
	}
	r.tracker.UpdateSequences(r.subModels(), transformers, r.ActiveCalls())
}

// tsConform replays every active call's terminating sequence against the
// sub-models and refines those that disagree. Each position is checked
// against the sub-learner's current hypothesis.
func (r *Refiner) tsConform(fed map[string]bool) (bool, error) {
	r.stats.TSConformanceChecks++
	conform := true
	for _, c := range r.ActiveCalls() {
		ts, _ := r.tracker.TerminatingSequence(c)
		tsOut, _ := r.tracker.TerminatingOutput(c)
		input := Concat(Word{c}, ts)
		output := ConcatOutputs(OutputWord{r.outputs.Start()}, tsOut)
		for i, sym := range input {
			if !r.inputs.IsCall(sym) || !r.outputs.IsStart(output[i]) {
				continue
			}
			l, ok := r.learners[sym]
			if !ok {
				continue
			}
			lin, lout := r.mapper.LocalQuery(input, output, i)
			if ComputeProcedure(l.HypothesisModel(), lin).Equal(lout) || !r.visible(lin) {
				continue
			}
			if err := r.feed(fed, sym, l, lin, lout); err != nil {
				return false, fmt.Errorf("terminating sequence of %s: %w", c, err)
			}
			r.logger.Debug("terminating sequence refined procedure",
				zap.String("call", string(sym)),
				zap.Stringer("local", lin))
			conform = false
		}
	}
	return conform, nil
}

// visible reports whether every call in a local word is active, so that
// sub-learners know it.
func (r *Refiner) visible(local Word) bool {
	for _, s := range local {
		if r.inputs.IsCall(s) && !r.active.Has(s) {
			return false
		}
	}
	return true
}

// feed forwards a local counterexample to l. fed holds the local
// counterexamples already forwarded for the current global one, keyed with
// the hypothesis size at the time: the same word at the same size means l
// made no progress.
func (r *Refiner) feed(fed map[string]bool, call Symbol, l SubLearner, lin Word, lout OutputWord) error {
	key := fmt.Sprintf("%s\x1d%s\x1d%s\x1d%d", call, wordKey(lin), wordKey(wordOf(lout)), l.HypothesisModel().Size())
	if fed[key] {
		return fmt.Errorf("%w: %s on %v again", ErrRefinementFailed, call, lin)
	}
	fed[key] = true
	if !l.RefineHypothesis(lin, lout) {
		return fmt.Errorf("%w: %s on %v", ErrRefinementFailed, call, lin)
	}
	return nil
}

// refineLocal finds the first disagreement with the hypothesis and forwards
// the local counterexample to the responsible sub-learner.
func (r *Refiner) refineLocal(input Word, output OutputWord, fed map[string]bool) (bool, error) {
	hypOut := r.Hypothesis().Compute(input)
	idx := output.FirstDifference(hypOut)
	if idx <= 0 {
		return false, nil
	}
	callIdx := r.mapper.FindCallIndex(input, output, idx)
	if callIdx == -1 {
		return false, nil
	}
	call := input[callIdx]
	l, ok := r.learners[call]
	if !ok {
		return false, nil
	}
	lin, lout := r.mapper.LocalQuery(input, output, callIdx)
	hout := ComputeProcedure(l.HypothesisModel(), lin)
	d := lout.FirstDifference(hout)
	if d == -1 {
		return false, nil
	}
	lin, lout = lin[:d+1], lout[:d+1]
	if !r.visible(lin) {
		return false, nil
	}
	r.logger.Debug("local counterexample",
		zap.String("call", string(call)),
		zap.Int("index", idx),
		zap.Stringer("input", lin),
		zap.Stringer("output", lout))
	if err := r.feed(fed, call, l, lin, lout); err != nil {
		return false, err
	}
	return true, nil
}
