package spmm

import (
	"fmt"
	"sync/atomic"
)

// Query is a membership query. Output answers Suffix after Prefix has been
// replayed.
type Query struct {
	Prefix Word
	Suffix Word
	Output OutputWord
}

// Input is the concatenation of prefix and suffix.
func (q *Query) Input() Word { return Concat(q.Prefix, q.Suffix) }

// MembershipOracle answers membership queries.
type MembershipOracle interface {
	Answer(prefix, suffix Word) OutputWord
	AnswerAll(queries []*Query)
}

// answerEach implements AnswerAll on top of Answer.
func answerEach(o MembershipOracle, queries []*Query) {
	for _, q := range queries {
		q.Output = o.Answer(q.Prefix, q.Suffix)
	}
}

// SimulatorOracle answers queries by executing a System.
type SimulatorOracle struct {
	system *System
}

func NewSimulatorOracle(sys *System) *SimulatorOracle {
	return &SimulatorOracle{system: sys}
}

func (o *SimulatorOracle) Answer(prefix, suffix Word) OutputWord {
	return o.system.ComputeSuffix(prefix, suffix)
}

func (o *SimulatorOracle) AnswerAll(queries []*Query) { answerEach(o, queries) }

// CountingOracle counts queries and query symbols passed to its delegate.
type CountingOracle struct {
	delegate MembershipOracle
	queries  atomic.Int64
	symbols  atomic.Int64
}

func NewCountingOracle(delegate MembershipOracle) *CountingOracle {
	return &CountingOracle{delegate: delegate}
}

func (o *CountingOracle) Answer(prefix, suffix Word) OutputWord {
	o.queries.Add(1)
	o.symbols.Add(int64(len(prefix) + len(suffix)))
	return o.delegate.Answer(prefix, suffix)
}

func (o *CountingOracle) AnswerAll(queries []*Query) {
	for _, q := range queries {
		o.queries.Add(1)
		o.symbols.Add(int64(len(q.Prefix) + len(q.Suffix)))
	}
	o.delegate.AnswerAll(queries)
}

func (o *CountingOracle) Queries() int64 { return o.queries.Load() }
func (o *CountingOracle) Symbols() int64 { return o.symbols.Load() }

// sequenceSource is what a ProceduralOracle needs from the tracker.
type sequenceSource interface {
	AccessSequence(c Symbol) (Word, bool)
	Terminating(c Symbol) Word
}

// ProceduralOracle answers local queries of one procedure by embedding them
// into global queries and projecting the answers back.
type ProceduralOracle struct {
	call      Symbol
	global    MembershipOracle
	mapper    Mapper
	sequences sequenceSource
}

func NewProceduralOracle(call Symbol, global MembershipOracle, mapper Mapper, sequences sequenceSource) *ProceduralOracle {
	return &ProceduralOracle{call: call, global: global, mapper: mapper, sequences: sequences}
}

func (o *ProceduralOracle) globalQuery(prefix, suffix Word) (Word, int) {
	access, ok := o.sequences.AccessSequence(o.call)
	if !ok {
		panic(fmt.Sprintf("spmm: procedure %q has no access sequence", o.call))
	}
	gprefix := Concat(access, Word{o.call}, o.mapper.ExpandInput(prefix, o.sequences.Terminating))
	gsuffix := o.mapper.ExpandInput(suffix, o.sequences.Terminating)
	return Concat(gprefix, gsuffix), len(access) + 1
}

func (o *ProceduralOracle) Answer(prefix, suffix Word) OutputWord {
	q := &Query{Prefix: prefix, Suffix: suffix}
	o.AnswerAll([]*Query{q})
	return q.Output
}

func (o *ProceduralOracle) AnswerAll(queries []*Query) {
	global := make([]*Query, len(queries))
	offsets := make([]int, len(queries))
	for i, q := range queries {
		in, off := o.globalQuery(q.Prefix, q.Suffix)
		global[i] = &Query{Suffix: in}
		offsets[i] = off
	}
	o.global.AnswerAll(global)
	for i, q := range queries {
		g := global[i]
		pin, pout := o.mapper.Project(g.Suffix[offsets[i]:], g.Output[offsets[i]:])
		local := q.Input()
		if !pin.Equal(local) {
			panic(fmt.Sprintf("spmm: projection of %v is %v, want %v", g.Suffix, pin, local))
		}
		q.Output = append(OutputWord{}, pout[len(q.Prefix):]...)
	}
}
