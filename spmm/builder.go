package spmm

import (
	"fmt"
)

// ProcedureBuilder assembles a procedure from named states. Build completes
// the table: every missing transition goes to an error sink, and Return
// edges go to a post-return sink.
type ProcedureBuilder struct {
	inputs  *InputAlphabet
	outputs *OutputAlphabet
	names   []string
	ids     map[string]int
	initial string
	edges   []builderEdge
	err     error
}

type builderEdge struct {
	from, to string
	in       Symbol
	out      Output
	ret      bool
}

func NewProcedureBuilder(inputs *InputAlphabet, outputs *OutputAlphabet) *ProcedureBuilder {
	return &ProcedureBuilder{inputs: inputs, outputs: outputs, ids: make(map[string]int)}
}

func (b *ProcedureBuilder) state(name string) {
	if _, ok := b.ids[name]; !ok {
		b.ids[name] = len(b.names)
		b.names = append(b.names, name)
	}
}

// Initial names the initial state.
func (b *ProcedureBuilder) Initial(name string) *ProcedureBuilder {
	b.initial = name
	b.state(name)
	return b
}

// On adds from --in/out--> to.
func (b *ProcedureBuilder) On(from string, in Symbol, out Output, to string) *ProcedureBuilder {
	if b.err == nil && !b.inputs.Contains(in) {
		b.err = fmt.Errorf("procedure builder: unknown input %q", in)
	}
	if b.err == nil && !b.outputs.Contains(out) {
		b.err = fmt.Errorf("procedure builder: unknown output %q", out)
	}
	b.state(from)
	b.state(to)
	b.edges = append(b.edges, builderEdge{from: from, in: in, out: out, to: to})
	return b
}

// Call adds from --c/start--> to, the state resumed after c returns.
func (b *ProcedureBuilder) Call(from string, c Symbol, to string) *ProcedureBuilder {
	if b.err == nil && !b.inputs.IsCall(c) {
		b.err = fmt.Errorf("procedure builder: %q is not a call symbol", c)
	}
	return b.On(from, c, b.outputs.Start(), to)
}

// Return makes from accept the return symbol with the end output.
func (b *ProcedureBuilder) Return(from string) *ProcedureBuilder {
	b.state(from)
	b.edges = append(b.edges, builderEdge{from: from, in: b.inputs.Return(), out: b.outputs.End(), ret: true})
	return b
}

// Build returns the completed procedure over the full input alphabet.
func (b *ProcedureBuilder) Build() (*Mealy, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.initial == "" {
		return nil, fmt.Errorf("procedure builder: no initial state")
	}
	symbols := b.inputs.Symbols()
	m := NewMealy(symbols)
	for range b.names {
		m.AddState()
	}
	errSink := m.AddState()
	postSink := m.AddState()
	m.SetInitial(b.ids[b.initial])

	defined := make(map[string]map[Symbol]bool)
	for _, e := range b.edges {
		if defined[e.from] == nil {
			defined[e.from] = make(map[Symbol]bool)
		}
		if defined[e.from][e.in] {
			return nil, fmt.Errorf("procedure builder: state %q has two transitions on %q", e.from, e.in)
		}
		defined[e.from][e.in] = true
		to := postSink
		if !e.ret {
			to = b.ids[e.to]
		}
		if err := m.SetTransition(b.ids[e.from], e.in, e.out, to); err != nil {
			return nil, err
		}
	}
	for s := 0; s < m.Size(); s++ {
		for _, in := range symbols {
			if _, _, ok := m.Transition(s, in); ok {
				continue
			}
			fill, out := errSink, b.outputs.Error()
			if s == postSink {
				fill, out = postSink, b.outputs.PostReturn()
			}
			if err := m.SetTransition(s, in, out, fill); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}
