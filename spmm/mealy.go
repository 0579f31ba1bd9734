package spmm

import (
	"fmt"
)

// Procedure is a deterministic transducer over (a subset of) the input
// alphabet. States are 0..Size()-1.
type Procedure interface {
	Size() int
	InitialState() int
	Inputs() []Symbol
	// Transition returns ok=false when in is outside the procedure's inputs.
	Transition(state int, in Symbol) (next int, out Output, ok bool)
}

// Mealy is a compact table-backed Procedure.
type Mealy struct {
	inputs  []Symbol
	index   map[Symbol]int
	succ    [][]int
	out     [][]Output
	initial int
}

// NewMealy creates an empty machine over inputs. Transitions default to -1
// (undefined) until set.
func NewMealy(inputs []Symbol) *Mealy {
	m := &Mealy{
		inputs: append([]Symbol(nil), inputs...),
		index:  make(map[Symbol]int, len(inputs)),
	}
	for i, s := range inputs {
		m.index[s] = i
	}
	return m
}

// AddState appends a state and returns its id. The first state added is the
// initial state unless SetInitial says otherwise.
func (m *Mealy) AddState() int {
	row := make([]int, len(m.inputs))
	for i := range row {
		row[i] = -1
	}
	m.succ = append(m.succ, row)
	m.out = append(m.out, make([]Output, len(m.inputs)))
	return len(m.succ) - 1
}

func (m *Mealy) SetInitial(state int) { m.initial = state }

// SetTransition defines state --in/out--> next.
func (m *Mealy) SetTransition(state int, in Symbol, out Output, next int) error {
	i, ok := m.index[in]
	if !ok {
		return fmt.Errorf("symbol %q not in procedure inputs", in)
	}
	if state < 0 || state >= len(m.succ) || next < 0 || next >= len(m.succ) {
		return fmt.Errorf("state out of range: %d -> %d", state, next)
	}
	m.succ[state][i] = next
	m.out[state][i] = out
	return nil
}

func (m *Mealy) Size() int         { return len(m.succ) }
func (m *Mealy) InitialState() int { return m.initial }
func (m *Mealy) Inputs() []Symbol  { return append([]Symbol(nil), m.inputs...) }

func (m *Mealy) Transition(state int, in Symbol) (int, Output, bool) {
	i, ok := m.index[in]
	if !ok || state < 0 || state >= len(m.succ) {
		return -1, "", false
	}
	next := m.succ[state][i]
	if next < 0 {
		return -1, "", false
	}
	return next, m.out[state][i], true
}

// ComputeProcedure runs p from its initial state. An undefined transition
// stops the run; the remaining outputs are left empty.
func ComputeProcedure(p Procedure, word Word) OutputWord {
	out := make(OutputWord, len(word))
	s := p.InitialState()
	for i, in := range word {
		next, o, ok := p.Transition(s, in)
		if !ok {
			break
		}
		out[i] = o
		s = next
	}
	return out
}

// StateAfter is the state reached by word, or -1 if the run leaves the table.
func StateAfter(p Procedure, word Word) int {
	s := p.InitialState()
	for _, in := range word {
		next, _, ok := p.Transition(s, in)
		if !ok {
			return -1
		}
		s = next
	}
	return s
}

// StateCover returns, per reachable state, the shortest word reaching it,
// in BFS order over symbols. Only transitions accepted by keep are followed.
func StateCover(p Procedure, symbols []Symbol, keep func(state int, in Symbol, out Output) bool) []Word {
	if p.Size() == 0 {
		return nil
	}
	seen := map[int]bool{p.InitialState(): true}
	queue := []int{p.InitialState()}
	access := map[int]Word{p.InitialState(): {}}
	var cover []Word
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		cover = append(cover, access[s])
		for _, in := range symbols {
			next, o, ok := p.Transition(s, in)
			if !ok || seen[next] {
				continue
			}
			if keep != nil && !keep(s, in, o) {
				continue
			}
			seen[next] = true
			access[next] = Concat(access[s], Word{in})
			queue = append(queue, next)
		}
	}
	return cover
}

// TransitionCover extends every state-cover word by every symbol.
func TransitionCover(p Procedure, symbols []Symbol, keep func(state int, in Symbol, out Output) bool) []Word {
	var cover []Word
	for _, w := range StateCover(p, symbols, keep) {
		for _, in := range symbols {
			cover = append(cover, Concat(w, Word{in}))
		}
	}
	return cover
}

// FindSeparatingWord returns a shortest word over symbols on which a and b
// produce different outputs. A transition defined in one procedure but not
// the other counts as a difference.
func FindSeparatingWord(a, b Procedure, symbols []Symbol) (Word, bool) {
	type pair struct{ x, y int }
	start := pair{a.InitialState(), b.InitialState()}
	seen := map[pair]bool{start: true}
	access := map[pair]Word{start: {}}
	queue := []pair{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, in := range symbols {
			nx, ox, okx := a.Transition(p.x, in)
			ny, oy, oky := b.Transition(p.y, in)
			if okx != oky || ox != oy {
				return Concat(access[p], Word{in}), true
			}
			if !okx {
				continue
			}
			q := pair{nx, ny}
			if seen[q] {
				continue
			}
			seen[q] = true
			access[q] = Concat(access[p], Word{in})
			queue = append(queue, q)
		}
	}
	return nil, false
}
