package spmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulatorAndCountingOracle(t *testing.T) {
	sys := palindromeSystem(t)
	counter := NewCountingOracle(NewSimulatorOracle(sys))

	assert.Equal(t, outputs("a close"), counter.Answer(ParseWord("Pa"), ParseWord("aR")))

	queries := []*Query{
		{Prefix: ParseWord("P"), Suffix: ParseWord("bbR")},
		{Prefix: nil, Suffix: ParseWord("PcR")},
	}
	counter.AnswerAll(queries)
	assert.Equal(t, outputs("b b close"), queries[0].Output)
	assert.Equal(t, outputs("open error error"), queries[1].Output)
	assert.Equal(t, ParseWord("PbbR"), queries[0].Input())

	assert.Equal(t, int64(3), counter.Queries())
	assert.Equal(t, int64(4+4+3), counter.Symbols())
}

func TestProceduralOracle(t *testing.T) {
	sys := palindromeSystem(t)
	m := palindromeMapper(t)
	tr := NewSequenceTracker(m)
	_, _ = tr.Scan(ParseWord("PTccRR"), outputs("open open c c close close"))

	global := NewCountingOracle(NewSimulatorOracle(sys))
	oracle := NewProceduralOracle("T", global, m, tr)

	// T's local word c T c R runs globally as P T c T ccR c R
	assert.Equal(t, outputs("open c close"), oracle.Answer(ParseWord("c"), ParseWord("TcR")))
	assert.Equal(t, int64(9), global.Symbols())

	// after the return every local output is post-return
	assert.Equal(t, outputs("close left"), oracle.Answer(ParseWord("cc"), ParseWord("Rc")))

	p := NewProceduralOracle("P", global, m, tr)
	assert.Equal(t, outputs("a open a close"), p.Answer(nil, ParseWord("aPaR")))
	assert.Equal(t, outputs("error error"), p.Answer(ParseWord("a"), ParseWord("cR")))
}

func TestProceduralOracleRequiresAccessSequence(t *testing.T) {
	sys := palindromeSystem(t)
	m := palindromeMapper(t)
	oracle := NewProceduralOracle("T", NewSimulatorOracle(sys), m, NewSequenceTracker(m))
	assert.Panics(t, func() { oracle.Answer(nil, Word{"c"}) })
}
