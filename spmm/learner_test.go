package spmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestLearnSystem(t *testing.T) {
	for _, h := range []CounterexampleHandler{MalerPnueli, RivestSchapire} {
		t.Run(h.String(), func(t *testing.T) {
			truth := palindromeSystem(t)
			hyp, stats, err := LearnSystem(truth, LStarFactory(h), WithLogger(zaptest.NewLogger(t)))
			require.NoError(t, err)

			assert.True(t, Equivalent(truth, hyp), Describe(hyp))
			assert.NotEmpty(t, stats.RunID)
			assert.Positive(t, stats.Rounds)
			assert.Positive(t, stats.Queries)
			assert.GreaterOrEqual(t, stats.QuerySymbols, stats.Queries)
			assert.Equal(t, 2, stats.Procedures)
			assert.Equal(t, hyp.Size(), stats.HypothesisSize)

			for _, w := range []string{"PaPbbRaR", "PTcPaaRcR", "PaaRa"} {
				in := ParseWord(w)
				assert.Equal(t, truth.Compute(in), hyp.Compute(in), w)
			}
		})
	}
}

func TestLearnerRunIDs(t *testing.T) {
	sys := palindromeSystem(t)
	eq, err := NewEquivalenceOracle(sys)
	require.NoError(t, err)
	mk := func() *Learner {
		r := NewRefiner(sys.InputAlphabet(), sys.OutputAlphabet(), NewSimulatorOracle(sys), LStarFactory(MalerPnueli))
		return NewLearner(r, eq, nil, WithLogger(zap.NewNop()))
	}
	a, b := mk(), mk()
	assert.NotEqual(t, a.RunID(), b.RunID())

	_, err = a.Learn()
	require.NoError(t, err)
	assert.Equal(t, a.Rounds(), a.Stats().Rounds)
	assert.Zero(t, a.Stats().Queries)
}

func TestLearnSystemRejectsMalformedTruth(t *testing.T) {
	in, out := palindromeAlphabets(t)
	p, err := NewProcedureBuilder(in, out).Initial("p0").Call("p0", "P", "p1").Return("p1").Build()
	require.NoError(t, err)
	sys, err := NewFullyActivatedSystem(in, out, "P", map[Symbol]Procedure{"P": p})
	require.NoError(t, err)

	_, _, err = LearnSystem(sys, LStarFactory(MalerPnueli))
	assert.ErrorIs(t, err, ErrNonTerminatingProcedure)
}

// fixedChecker replays a list of counterexamples.
type fixedChecker struct {
	ces []Counterexample
}

func (f *fixedChecker) FindCounterexample(*System) (Counterexample, bool) {
	if len(f.ces) == 0 {
		return Counterexample{}, false
	}
	ce := f.ces[0]
	f.ces = f.ces[1:]
	return ce, true
}

func TestLearnerPropagatesRefineErrors(t *testing.T) {
	sys := palindromeSystem(t)
	r := NewRefiner(sys.InputAlphabet(), sys.OutputAlphabet(), NewSimulatorOracle(sys), LStarFactory(MalerPnueli))
	in := ParseWord("TccR")
	l := NewLearner(r, &fixedChecker{ces: []Counterexample{{Input: in, Output: sys.Compute(in)}}}, nil)

	_, err := l.Learn()
	assert.ErrorIs(t, err, ErrNotCounterexample)
	assert.Equal(t, 1, l.Rounds())
}
