package spmm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func palindromeMapper(t *testing.T) Mapper {
	in, out := palindromeAlphabets(t)
	return NewMapper(in, out)
}

func TestProject(t *testing.T) {
	m := palindromeMapper(t)
	tests := []struct {
		name    string
		input   string
		output  string
		wantIn  string
		wantOut string
	}{
		{
			name:    "erroneous nested calls collapse",
			input:   "aPaaRPaaRR",
			output:  "a open a a close error error error error error",
			wantIn:  "aPPR",
			wantOut: "a open error error",
		},
		{
			name:    "outputs after return become post-return",
			input:   "ccRR",
			output:  "c c close close",
			wantIn:  "ccRR",
			wantOut: "c c close left",
		},
		{
			name:    "unfinished call stops the projection",
			input:   "bPbR",
			output:  "b open b error",
			wantIn:  "bP",
			wantOut: "b open",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pin, pout := m.Project(ParseWord(tt.input), outputs(tt.output))
			if diff := cmp.Diff(ParseWord(tt.wantIn), pin); diff != "" {
				t.Errorf("input mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(outputs(tt.wantOut), pout); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProjectStrict(t *testing.T) {
	m := palindromeMapper(t)
	pin, pout := m.ProjectStrict(ParseWord("aPaaRPaaRR"), outputs("a open a a close error error error error error"))
	assert.Equal(t, ParseWord("aPPaaRR"), pin)
	assert.Equal(t, outputs("a open error error error error error"), pout)
}

func TestFindIndices(t *testing.T) {
	m := palindromeMapper(t)
	in := ParseWord("PaPbbRaR")
	out := outputs("open a open b b close a close")

	assert.Equal(t, 2, m.FindCallIndex(in, out, 3))
	assert.Equal(t, 2, m.FindCallIndex(in, out, 5))
	assert.Equal(t, 0, m.FindCallIndex(in, out, 6))
	assert.Equal(t, 0, m.FindCallIndex(in, out, 2))
	assert.Equal(t, -1, m.FindCallIndex(in, out, 0))

	assert.Equal(t, 5, m.FindReturnIndex(in, out, 3))
	assert.Equal(t, 7, m.FindReturnIndex(in, out, 1))
	assert.Equal(t, 5, m.FindReturnIndexByCall(in, out, 2))
	assert.Equal(t, -1, m.FindReturnIndexByCall(in, out, 8))
	assert.Equal(t, 5, m.FindChildReturnIndex(in, 2))
	assert.Equal(t, 7, m.FindChildReturnIndex(in, 0))

	assert.Equal(t, 7, m.FindLastIndexOfCurrentProcedure(in, out, 1))
	open := ParseWord("PaPb")
	assert.Equal(t, 3, m.FindLastIndexOfCurrentProcedure(open, outputs("open a open b"), 1))

	trailing := ParseWord("PaaRab")
	assert.Equal(t, 5, m.FindLastIndexOfCurrentProcedure(trailing, outputs("open a a close left left"), 1))
}

func TestExpand(t *testing.T) {
	m := palindromeMapper(t)
	ts := func(c Symbol) Word {
		switch c {
		case "P":
			return ParseWord("aaR")
		case "T":
			return ParseWord("ccR")
		}
		return nil
	}
	tsOut := func(c Symbol) OutputWord {
		switch c {
		case "P":
			return outputs("a a close")
		case "T":
			return outputs("c c close")
		}
		return nil
	}

	assert.Equal(t, ParseWord("aPaaRTccRb"), m.ExpandInput(ParseWord("aPTb"), ts))

	in, out := m.ExpandInputOutput(ParseWord("TPc"), outputs("open open error"), ts, tsOut)
	assert.Equal(t, ParseWord("TccRPaaRc"), in)
	assert.Equal(t, outputs("open c c close open a a close error"), out)

	// no expansion after the first error
	in, out = m.ExpandInputOutput(ParseWord("cP"), outputs("error open"), ts, tsOut)
	assert.Equal(t, ParseWord("cP"), in)
	assert.Equal(t, outputs("error open"), out)
}

func TestExpandProjectRoundTrip(t *testing.T) {
	sys := palindromeSystem(t)
	m := palindromeMapper(t)
	ts := func(c Symbol) Word {
		if c == "P" {
			return ParseWord("aaR")
		}
		return ParseWord("ccR")
	}

	for _, local := range []string{"aPa", "TR", "bPbR", "cTcR"} {
		// embed the local word of P at top level
		word := Concat(Word{"P"}, m.ExpandInput(ParseWord(local), ts))
		out := sys.Compute(word)
		pin, _ := m.Project(word[1:], out[1:])
		assert.Equal(t, ParseWord(local), pin, local)
	}
}

func TestLocalQuery(t *testing.T) {
	m := palindromeMapper(t)
	in := ParseWord("PaPbbRaR")
	out := outputs("open a open b b close a close")

	lin, lout := m.LocalQuery(in, out, 0)
	assert.Equal(t, ParseWord("aPaR"), lin)
	assert.Equal(t, outputs("a open a close"), lout)

	lin, lout = m.LocalQuery(in, out, 2)
	assert.Equal(t, ParseWord("bbR"), lin)
	assert.Equal(t, outputs("b b close"), lout)
}

func TestMapperPanicsOnLengthMismatch(t *testing.T) {
	m := palindromeMapper(t)
	assert.Panics(t, func() { m.Project(ParseWord("Pa"), outputs("open")) })
	assert.Panics(t, func() { m.FindCallIndex(ParseWord("Pa"), outputs("open"), 0) })
}
