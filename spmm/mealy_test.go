package spmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toggle outputs x then y alternately on a.
func toggle(t *testing.T) *Mealy {
	t.Helper()
	m := NewMealy([]Symbol{"a", "b"})
	s0, s1 := m.AddState(), m.AddState()
	require.NoError(t, m.SetTransition(s0, "a", "x", s1))
	require.NoError(t, m.SetTransition(s1, "a", "y", s0))
	require.NoError(t, m.SetTransition(s0, "b", "z", s0))
	return m
}

func TestMealy(t *testing.T) {
	m := toggle(t)
	assert.Equal(t, 2, m.Size())
	assert.Equal(t, outputs("x y x z"), ComputeProcedure(m, Word{"a", "a", "a", "b"}))

	// b is undefined in s1: the run stops
	assert.Equal(t, OutputWord{"x", "", ""}, ComputeProcedure(m, Word{"a", "b", "a"}))
	assert.Equal(t, -1, StateAfter(m, Word{"a", "b"}))
	assert.Equal(t, 1, StateAfter(m, Word{"a", "a", "a"}))

	assert.Error(t, m.SetTransition(0, "c", "x", 0))
	assert.Error(t, m.SetTransition(0, "a", "x", 5))
}

func TestStateAndTransitionCover(t *testing.T) {
	m := toggle(t)
	assert.Equal(t, []Word{{}, {"a"}}, StateCover(m, m.Inputs(), nil))
	assert.Len(t, TransitionCover(m, m.Inputs(), nil), 4)

	onlyB := func(_ int, in Symbol, _ Output) bool { return in == "b" }
	assert.Equal(t, []Word{{}}, StateCover(m, m.Inputs(), onlyB))
}

func TestFindSeparatingWord(t *testing.T) {
	a := toggle(t)
	b := toggle(t)
	_, diff := FindSeparatingWord(a, b, a.Inputs())
	assert.False(t, diff)

	require.NoError(t, b.SetTransition(1, "a", "x", 0))
	w, diff := FindSeparatingWord(a, b, a.Inputs())
	assert.True(t, diff)
	assert.Equal(t, Word{"a", "a"}, w)

	// defined in one machine only
	require.NoError(t, b.SetTransition(1, "a", "y", 0))
	require.NoError(t, b.SetTransition(1, "b", "z", 1))
	w, diff = FindSeparatingWord(a, b, a.Inputs())
	assert.True(t, diff)
	assert.Equal(t, Word{"a", "b"}, w)
}

func TestProcedureBuilder(t *testing.T) {
	in, out := palindromeAlphabets(t)
	procs := palindromeProcedures(t, in, out)

	p := procs["P"]
	// six named states plus the error and post-return sinks
	assert.Equal(t, 8, p.Size())
	assert.Equal(t, outputs("a a close left left"), ComputeProcedure(p, ParseWord("aaRab")))
	assert.Equal(t, outputs("c error error"), ComputeProcedure(procs["T"], ParseWord("cRR")))
	assert.Equal(t, outputs("open close"), ComputeProcedure(p, ParseWord("TR")))
	assert.Equal(t, outputs("open error error"), ComputeProcedure(p, ParseWord("TaR")))
	assert.NoError(t, CheckSinks(palindromeSystem(t)))
}

func TestProcedureBuilderErrors(t *testing.T) {
	in, out := palindromeAlphabets(t)

	_, err := NewProcedureBuilder(in, out).On("s", "a", "a", "s").Build()
	assert.ErrorContains(t, err, "no initial state")

	_, err = NewProcedureBuilder(in, out).Initial("s").On("s", "x", "a", "s").Build()
	assert.ErrorContains(t, err, "unknown input")

	_, err = NewProcedureBuilder(in, out).Initial("s").On("s", "a", "zz", "s").Build()
	assert.ErrorContains(t, err, "unknown output")

	_, err = NewProcedureBuilder(in, out).Initial("s").Call("s", "a", "s").Build()
	assert.ErrorContains(t, err, "not a call symbol")

	_, err = NewProcedureBuilder(in, out).Initial("s").On("s", "a", "a", "s").On("s", "a", "b", "s").Build()
	assert.ErrorContains(t, err, "two transitions")
}
