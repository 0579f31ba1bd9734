package spmm

import (
	"fmt"

	"go.uber.org/zap"
)

// Counterexample is a global word on which a hypothesis and the ground
// truth disagree. Output is the ground truth's answer.
type Counterexample struct {
	Input  Word
	Output OutputWord
}

// EquivalenceChecker finds counterexamples for hypotheses.
type EquivalenceChecker interface {
	FindCounterexample(hyp *System) (Counterexample, bool)
}

// EquivalenceOracle compares hypotheses procedure by procedure against a
// known ground-truth system.
type EquivalenceOracle struct {
	truth          *System
	mapper         Mapper
	access         map[Symbol]Word
	terminating    map[Symbol]Word
	terminatingOut map[Symbol]OutputWord
	logger         *zap.Logger
}

// NewEquivalenceOracle precomputes access and terminating sequences of the
// ground truth. It fails if the truth is malformed, has a procedure that
// cannot terminate or one that cannot be reached.
func NewEquivalenceOracle(truth *System, opts ...Option) (*EquivalenceOracle, error) {
	o := buildOptions(opts)
	if err := CheckSinks(truth); err != nil {
		return nil, err
	}
	ts, err := ComputeTerminatingSequences(truth)
	if err != nil {
		return nil, err
	}
	as, err := ComputeAccessSequences(truth, ts)
	if err != nil {
		return nil, err
	}
	tsOut := make(map[Symbol]OutputWord, len(ts))
	for c, w := range ts {
		tsOut[c] = truth.ComputeSuffix(Concat(as[c], Word{c}), w)
	}
	for _, c := range truth.Calls() {
		o.logger.Debug("ground truth sequences",
			zap.String("call", string(c)),
			zap.Stringer("access", as[c]),
			zap.Stringer("terminating", ts[c]))
	}
	return &EquivalenceOracle{
		truth:          truth,
		mapper:         NewMapper(truth.inputs, truth.outputs),
		access:         as,
		terminating:    ts,
		terminatingOut: tsOut,
		logger:         o.logger,
	}, nil
}

func (o *EquivalenceOracle) AccessSequence(c Symbol) Word      { return o.access[c] }
func (o *EquivalenceOracle) TerminatingSequence(c Symbol) Word { return o.terminating[c] }

func (o *EquivalenceOracle) counterexample(input Word, rule string) (Counterexample, bool) {
	ce := Counterexample{Input: input, Output: o.truth.Compute(input)}
	o.logger.Debug("counterexample",
		zap.String("rule", rule),
		zap.Stringer("input", ce.Input),
		zap.Stringer("output", ce.Output))
	return ce, true
}

// filler is some symbol to run inside a freshly entered procedure.
func (o *EquivalenceOracle) filler() Symbol {
	if in := o.truth.inputs.internals; len(in) > 0 {
		return in[0]
	}
	return o.truth.inputs.ret
}

// FindCounterexample returns a global counterexample, or false when every
// procedure of hyp is equivalent to the truth over the active alphabet and
// every procedure is known and active.
func (o *EquivalenceOracle) FindCounterexample(hyp *System) (Counterexample, bool) {
	trueInit, _ := o.truth.InitialCall()
	if hypInit, ok := hyp.InitialCall(); !ok || hypInit != trueInit {
		return o.counterexample(Word{trueInit, o.filler()}, "initial-call")
	}

	alphabet := o.truth.inputs.Internals()
	alphabet = append(alphabet, hyp.Activated()...)
	alphabet = append(alphabet, o.truth.inputs.Return())
	for _, c := range hyp.Calls() {
		tp, ok := o.truth.Procedure(c)
		if !ok {
			continue
		}
		hp, _ := hyp.Procedure(c)
		sep, found := FindSeparatingWord(tp, hp, alphabet)
		if !found {
			continue
		}
		local := Concat(sep, Word{o.truth.inputs.Return()})
		localOut := ComputeProcedure(tp, local)
		expanded, _ := o.mapper.ExpandInputOutput(local, localOut,
			func(c Symbol) Word { return o.terminating[c] },
			func(c Symbol) OutputWord { return o.terminatingOut[c] })
		return o.counterexample(Concat(o.access[c], Word{c}, expanded), "separating-word")
	}

	for _, c := range o.truth.Calls() {
		if _, ok := hyp.Procedure(c); !ok {
			return o.counterexample(Concat(o.access[c], Word{c, o.filler()}), "missing-procedure")
		}
	}
	for _, c := range hyp.Calls() {
		if !hyp.IsActivated(c) {
			return o.counterexample(Concat(o.access[c], Word{c}, o.terminating[c]), "inactive-procedure")
		}
	}
	return Counterexample{}, false
}

// Equivalent reports whether a and b have the same initial call, the same
// procedures and activated calls, and pairwise equivalent procedures over
// the full input alphabet.
func Equivalent(a, b *System) bool {
	ai, _ := a.InitialCall()
	bi, _ := b.InitialCall()
	if ai != bi {
		return false
	}
	if !NewSymbolSet(a.Calls()...).Equals(NewSymbolSet(b.Calls()...)) ||
		!a.activated.Equals(b.activated) {
		return false
	}
	symbols := a.inputs.Symbols()
	for _, c := range a.Calls() {
		pa, _ := a.Procedure(c)
		pb, _ := b.Procedure(c)
		if _, diff := FindSeparatingWord(pa, pb, symbols); diff {
			return false
		}
	}
	return true
}

// Describe is a one-line summary of a system.
func Describe(sys *System) string {
	init, _ := sys.InitialCall()
	return fmt.Sprintf("initial=%s procedures=%v activated=%v size=%d",
		init, sys.Calls(), sys.Activated(), sys.Size())
}
