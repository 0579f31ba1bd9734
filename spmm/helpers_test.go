package spmm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Palindrome system: P accepts a-b palindromes, T accepts c palindromes,
// each may call the other in its middle.

func palindromeAlphabets(t *testing.T) (*InputAlphabet, *OutputAlphabet) {
	t.Helper()
	in, err := NewInputAlphabet([]Symbol{"a", "b", "c"}, []Symbol{"P", "T"}, "R")
	require.NoError(t, err)
	out, err := NewOutputAlphabet([]Output{"a", "b", "c"}, "open", "close", "error", "left")
	require.NoError(t, err)
	return in, out
}

func palindromeProcedures(t *testing.T, in *InputAlphabet, out *OutputAlphabet) map[Symbol]Procedure {
	t.Helper()
	p, err := NewProcedureBuilder(in, out).
		Initial("p0").
		Call("p0", "T", "p5").
		On("p0", "a", "a", "p1").
		On("p0", "b", "b", "p2").
		Call("p1", "P", "p3").
		On("p1", "a", "a", "p5").
		Call("p2", "P", "p4").
		On("p2", "b", "b", "p5").
		On("p3", "a", "a", "p5").
		On("p4", "b", "b", "p5").
		Return("p5").
		Build()
	require.NoError(t, err)

	tp, err := NewProcedureBuilder(in, out).
		Initial("t0").
		Call("t0", "P", "t3").
		On("t0", "c", "c", "t1").
		Call("t1", "T", "t2").
		On("t1", "c", "c", "t3").
		On("t2", "c", "c", "t3").
		Return("t3").
		Build()
	require.NoError(t, err)

	return map[Symbol]Procedure{"P": p, "T": tp}
}

func palindromeSystem(t *testing.T) *System {
	t.Helper()
	in, out := palindromeAlphabets(t)
	sys, err := NewFullyActivatedSystem(in, out, "P", palindromeProcedures(t, in, out))
	require.NoError(t, err)
	return sys
}

// outputs splits a space separated output word.
func outputs(s string) OutputWord {
	var w OutputWord
	for _, x := range strings.Fields(s) {
		w = append(w, Output(x))
	}
	return w
}
