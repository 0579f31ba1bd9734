package spmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquivalenceOracleSequences(t *testing.T) {
	eq, err := NewEquivalenceOracle(palindromeSystem(t))
	require.NoError(t, err)
	assert.Equal(t, Word{"P"}, eq.AccessSequence("T"))
	assert.Equal(t, ParseWord("ccR"), eq.TerminatingSequence("T"))
}

func TestFindCounterexampleEmptyHypothesis(t *testing.T) {
	sys := palindromeSystem(t)
	eq, err := NewEquivalenceOracle(sys)
	require.NoError(t, err)

	ce, ok := eq.FindCounterexample(NewEmptySystem(sys.InputAlphabet(), sys.OutputAlphabet()))
	require.True(t, ok)
	assert.Equal(t, ParseWord("Pa"), ce.Input)
	assert.Equal(t, outputs("open a"), ce.Output)
}

func TestFindCounterexampleMissingProcedure(t *testing.T) {
	sys := palindromeSystem(t)
	in, out := palindromeAlphabets(t)
	procs := palindromeProcedures(t, in, out)
	hyp, err := NewSystem(in, out, "P", map[Symbol]Procedure{"P": procs["P"]}, []Symbol{"P"})
	require.NoError(t, err)

	eq, err := NewEquivalenceOracle(sys)
	require.NoError(t, err)
	ce, ok := eq.FindCounterexample(hyp)
	require.True(t, ok)
	// P is correct over its active alphabet, so the missing T is reported
	// with the first internal symbol as filler
	assert.Equal(t, ParseWord("PTa"), ce.Input)
	assert.NotEqual(t, hyp.Compute(ce.Input), ce.Output)
}

func TestFindCounterexampleInactiveProcedure(t *testing.T) {
	sys := palindromeSystem(t)
	in, out := palindromeAlphabets(t)
	hyp, err := NewSystem(in, out, "P", palindromeProcedures(t, in, out), []Symbol{"P"})
	require.NoError(t, err)

	eq, err := NewEquivalenceOracle(sys)
	require.NoError(t, err)
	ce, ok := eq.FindCounterexample(hyp)
	require.True(t, ok)
	assert.Equal(t, ParseWord("PTccR"), ce.Input)
}

func TestFindCounterexampleSeparatingWord(t *testing.T) {
	sys := palindromeSystem(t)
	in, out := palindromeAlphabets(t)
	procs := palindromeProcedures(t, in, out)
	// P that only accepts aa
	p, err := NewProcedureBuilder(in, out).
		Initial("p0").
		On("p0", "a", "a", "p1").
		On("p1", "a", "a", "p2").
		Return("p2").
		Build()
	require.NoError(t, err)
	hyp, err := NewFullyActivatedSystem(in, out, "P", map[Symbol]Procedure{"P": p, "T": procs["T"]})
	require.NoError(t, err)

	eq, err := NewEquivalenceOracle(sys)
	require.NoError(t, err)
	ce, ok := eq.FindCounterexample(hyp)
	require.True(t, ok)
	assert.Equal(t, Symbol("P"), ce.Input[0])
	assert.Equal(t, sys.Compute(ce.Input), ce.Output)
	assert.NotEqual(t, hyp.Compute(ce.Input), ce.Output)
}

func TestFindCounterexampleEquivalent(t *testing.T) {
	sys := palindromeSystem(t)
	eq, err := NewEquivalenceOracle(sys)
	require.NoError(t, err)
	_, ok := eq.FindCounterexample(palindromeSystem(t))
	assert.False(t, ok)
}

func TestEquivalent(t *testing.T) {
	sys := palindromeSystem(t)
	assert.True(t, Equivalent(sys, palindromeSystem(t)))

	in, out := palindromeAlphabets(t)
	partial, err := NewSystem(in, out, "P", palindromeProcedures(t, in, out), []Symbol{"P"})
	require.NoError(t, err)
	assert.False(t, Equivalent(sys, partial))

	otherInit, err := NewFullyActivatedSystem(in, out, "T", palindromeProcedures(t, in, out))
	require.NoError(t, err)
	assert.False(t, Equivalent(sys, otherInit))
	assert.False(t, Equivalent(sys, NewEmptySystem(in, out)))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "initial=P procedures=[P T] activated=[P T] size=17", Describe(palindromeSystem(t)))
}
