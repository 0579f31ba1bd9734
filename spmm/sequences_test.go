package spmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSequences(t *testing.T) {
	sys := palindromeSystem(t)

	ts, err := ComputeTerminatingSequences(sys)
	require.NoError(t, err)
	assert.Equal(t, map[Symbol]Word{
		"P": ParseWord("aaR"),
		"T": ParseWord("ccR"),
	}, ts)

	as, err := ComputeAccessSequences(sys, ts)
	require.NoError(t, err)
	assert.Equal(t, map[Symbol]Word{
		"P": {},
		"T": {"P"},
	}, as)
}

func TestTerminatingSequenceThroughCall(t *testing.T) {
	in, out := palindromeAlphabets(t)
	// P can only return by calling T first
	p, err := NewProcedureBuilder(in, out).
		Initial("p0").
		Call("p0", "T", "p1").
		On("p1", "a", "a", "p2").
		Return("p2").
		Build()
	require.NoError(t, err)
	tp, err := NewProcedureBuilder(in, out).
		Initial("t0").
		Return("t0").
		Build()
	require.NoError(t, err)
	sys, err := NewFullyActivatedSystem(in, out, "P", map[Symbol]Procedure{"P": p, "T": tp})
	require.NoError(t, err)

	ts, err := ComputeTerminatingSequences(sys)
	require.NoError(t, err)
	assert.Equal(t, ParseWord("R"), ts["T"])
	assert.Equal(t, ParseWord("TRaR"), ts["P"])

	as, err := ComputeAccessSequences(sys, ts)
	require.NoError(t, err)
	assert.Equal(t, Word{"P"}, as["T"])
}

func TestNonTerminatingProcedure(t *testing.T) {
	in, out := palindromeAlphabets(t)
	p, err := NewProcedureBuilder(in, out).
		Initial("p0").
		Call("p0", "P", "p1").
		Return("p1").
		Build()
	require.NoError(t, err)
	sys, err := NewFullyActivatedSystem(in, out, "P", map[Symbol]Procedure{"P": p})
	require.NoError(t, err)

	_, err = ComputeTerminatingSequences(sys)
	assert.ErrorIs(t, err, ErrNonTerminatingProcedure)
	_, err = NewEquivalenceOracle(sys)
	assert.ErrorIs(t, err, ErrNonTerminatingProcedure)
}

func TestUnreachableProcedure(t *testing.T) {
	in, out := palindromeAlphabets(t)
	p, err := NewProcedureBuilder(in, out).Initial("p0").On("p0", "a", "a", "p1").Return("p1").Build()
	require.NoError(t, err)
	tp, err := NewProcedureBuilder(in, out).Initial("t0").On("t0", "c", "c", "t1").Return("t1").Build()
	require.NoError(t, err)
	sys, err := NewFullyActivatedSystem(in, out, "P", map[Symbol]Procedure{"P": p, "T": tp})
	require.NoError(t, err)

	ts, err := ComputeTerminatingSequences(sys)
	require.NoError(t, err)
	_, err = ComputeAccessSequences(sys, ts)
	assert.ErrorIs(t, err, ErrUnreachableProcedure)
}

func TestAccessSequencesNeedInitialCall(t *testing.T) {
	in, out := palindromeAlphabets(t)
	_, err := ComputeAccessSequences(NewEmptySystem(in, out), nil)
	assert.ErrorIs(t, err, ErrMalformedSystem)
}

func TestCheckSinks(t *testing.T) {
	require.NoError(t, CheckSinks(palindromeSystem(t)))

	in, out := palindromeAlphabets(t)
	symbols := in.Symbols()

	// error on a, then a recovers with a regular output
	leaky := NewMealy(symbols)
	s0, s1 := leaky.AddState(), leaky.AddState()
	for _, sym := range symbols {
		require.NoError(t, leaky.SetTransition(s0, sym, "error", s1))
		require.NoError(t, leaky.SetTransition(s1, sym, "error", s1))
	}
	require.NoError(t, leaky.SetTransition(s1, "a", "a", s1))
	sys, err := NewFullyActivatedSystem(in, out, "P", map[Symbol]Procedure{"P": leaky})
	require.NoError(t, err)
	assert.ErrorIs(t, CheckSinks(sys), ErrMalformedSystem)

	partial := NewMealy(symbols)
	partial.AddState()
	sys, err = NewFullyActivatedSystem(in, out, "P", map[Symbol]Procedure{"P": partial})
	require.NoError(t, err)
	assert.ErrorIs(t, CheckSinks(sys), ErrMalformedSystem)
}
