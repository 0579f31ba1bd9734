package spmm

import (
	"fmt"
)

// System is a system of procedural Mealy machines: a call symbol to
// procedure map, an optional initial call and the set of activated calls.
// A System is immutable once built.
type System struct {
	inputs      *InputAlphabet
	outputs     *OutputAlphabet
	initialCall Symbol
	procedures  map[Symbol]Procedure
	activated   SymbolSet
	arena       *frameArena
}

// NewSystem validates that every procedure key and activated call is a call
// symbol and that the initial call, if set, is one too.
func NewSystem(inputs *InputAlphabet, outputs *OutputAlphabet, initialCall Symbol,
	procedures map[Symbol]Procedure, activated []Symbol) (*System, error) {

	if initialCall != "" && !inputs.IsCall(initialCall) {
		return nil, fmt.Errorf("initial call %q is not a call symbol", initialCall)
	}
	procs := make(map[Symbol]Procedure, len(procedures))
	for c, p := range procedures {
		if !inputs.IsCall(c) {
			return nil, fmt.Errorf("procedure key %q is not a call symbol", c)
		}
		if p == nil {
			return nil, fmt.Errorf("procedure %q is nil", c)
		}
		procs[c] = p
	}
	act := NewSymbolSet()
	for _, c := range activated {
		if !inputs.IsCall(c) {
			return nil, fmt.Errorf("activated symbol %q is not a call symbol", c)
		}
		act.Add(c)
	}
	return &System{
		inputs:      inputs,
		outputs:     outputs,
		initialCall: initialCall,
		procedures:  procs,
		activated:   act,
		arena:       newFrameArena(),
	}, nil
}

// NewFullyActivatedSystem activates every call of the alphabet, which is
// how ground-truth systems are executed.
func NewFullyActivatedSystem(inputs *InputAlphabet, outputs *OutputAlphabet, initialCall Symbol,
	procedures map[Symbol]Procedure) (*System, error) {
	return NewSystem(inputs, outputs, initialCall, procedures, inputs.Calls())
}

// NewEmptySystem has no initial call and no procedures.
func NewEmptySystem(inputs *InputAlphabet, outputs *OutputAlphabet) *System {
	return &System{
		inputs:     inputs,
		outputs:    outputs,
		procedures: map[Symbol]Procedure{},
		activated:  NewSymbolSet(),
		arena:      newFrameArena(),
	}
}

func (s *System) InputAlphabet() *InputAlphabet   { return s.inputs }
func (s *System) OutputAlphabet() *OutputAlphabet { return s.outputs }

// InitialCall returns the initial call and whether one is set.
func (s *System) InitialCall() (Symbol, bool) { return s.initialCall, s.initialCall != "" }

func (s *System) Procedure(c Symbol) (Procedure, bool) {
	p, ok := s.procedures[c]
	return p, ok
}

// Calls lists the call symbols that have a procedure, in alphabet order.
func (s *System) Calls() []Symbol {
	set := NewSymbolSet()
	for c := range s.procedures {
		set.Add(c)
	}
	return s.inputs.SortCalls(set)
}

// Procedures returns a copy of the procedure map.
func (s *System) Procedures() map[Symbol]Procedure {
	out := make(map[Symbol]Procedure, len(s.procedures))
	for c, p := range s.procedures {
		out[c] = p
	}
	return out
}

func (s *System) IsActivated(c Symbol) bool { return s.activated.Has(c) }

// Activated lists the activated calls in alphabet order.
func (s *System) Activated() []Symbol { return s.inputs.SortCalls(s.activated) }

// IsComplete reports whether every call symbol has a procedure.
func (s *System) IsComplete() bool {
	for _, c := range s.inputs.calls {
		if _, ok := s.procedures[c]; !ok {
			return false
		}
	}
	return true
}

// Size counts procedure states plus the initial, error and post-return states.
func (s *System) Size() int {
	n := 3
	for _, p := range s.procedures {
		n += p.Size()
	}
	return n
}

func (s *System) InitialState() ExecState { return initialState }

// StackDepth is the number of procedure frames on the call stack.
func (s *System) StackDepth(st ExecState) int {
	if st.kind != kindRunning {
		return 0
	}
	return s.arena.get(st.frame).depth
}

// CurrentProcedure returns the procedure id and local state on top of the
// stack. ok is false for synthetic states.
func (s *System) CurrentProcedure(st ExecState) (Symbol, int, bool) {
	if st.kind != kindRunning {
		return "", 0, false
	}
	f := s.arena.get(st.frame)
	return f.proc, f.state, true
}

// Hash is the structural hash of st, covering the whole call stack.
func (s *System) Hash(st ExecState) uint64 {
	if st.kind != kindRunning {
		return uint64(st.kind) + 1
	}
	return s.arena.get(st.frame).hash
}

func (s *System) fail() (ExecState, Output) { return errorSinkState, s.outputs.Error() }

// enter pushes the initial state of procedure c above parent.
func (s *System) enter(a *frameArena, c Symbol, parent int) (ExecState, Output) {
	p, ok := s.procedures[c]
	if !ok {
		return s.fail()
	}
	return ExecState{kind: kindRunning, frame: a.push(c, p.InitialState(), parent)}, s.outputs.Start()
}

// Transition performs one execution step. Running states it returns stay
// interned in the system for as long as the system lives.
func (s *System) Transition(st ExecState, in Symbol) (ExecState, Output) {
	return s.transition(s.arena, st, in)
}

func (s *System) transition(a *frameArena, st ExecState, in Symbol) (ExecState, Output) {
	switch st.kind {
	case kindErrorSink:
		return st, s.outputs.Error()
	case kindPostReturnSink:
		return st, s.outputs.PostReturn()
	case kindInitial:
		if s.initialCall == "" || in != s.initialCall {
			return s.fail()
		}
		return s.enter(a, in, -1)
	}

	f := a.get(st.frame)
	p := s.procedures[f.proc]
	next, out, ok := p.Transition(f.state, in)

	switch s.inputs.Kind(in) {
	case KindInternal:
		if !ok {
			return s.fail()
		}
		return s.step(a, f, next, out)

	case KindCall:
		if !s.activated.Has(in) {
			return s.enter(a, in, st.frame)
		}
		if !ok {
			return s.fail()
		}
		if !s.outputs.IsStart(out) {
			return s.step(a, f, next, out)
		}
		return s.enter(a, in, st.frame)

	case KindReturn:
		if !ok {
			return s.fail()
		}
		if !s.outputs.IsEnd(out) || !s.activated.Has(f.proc) {
			return s.step(a, f, next, out)
		}
		if f.parent < 0 {
			if f.proc == s.initialCall {
				return postReturnState, out
			}
			return s.fail()
		}
		return s.resume(a, f.parent, f.proc)
	}
	return s.fail()
}

// step replaces the top frame's local state.
func (s *System) step(a *frameArena, f frame, next int, out Output) (ExecState, Output) {
	if s.outputs.IsError(out) {
		return s.fail()
	}
	return ExecState{kind: kindRunning, frame: a.push(f.proc, next, f.parent)}, out
}

// resume continues the caller frame at its successor for the returning call.
func (s *System) resume(a *frameArena, parentID int, call Symbol) (ExecState, Output) {
	parent := a.get(parentID)
	p := s.procedures[parent.proc]
	next, _, ok := p.Transition(parent.state, call)
	if !ok {
		return s.fail()
	}
	return ExecState{kind: kindRunning, frame: a.push(parent.proc, next, parent.parent)}, s.outputs.End()
}

// Compute runs word from the initial state.
func (s *System) Compute(word Word) OutputWord {
	return s.ComputeSuffix(nil, word)
}

// ComputeSuffix replays prefix silently and returns the outputs of suffix.
// Its states never leave the call, so it runs on a scratch arena and leaves
// the system's arena untouched.
func (s *System) ComputeSuffix(prefix, suffix Word) OutputWord {
	a := newFrameArena()
	st := s.InitialState()
	for _, in := range prefix {
		st, _ = s.transition(a, st, in)
	}
	out := make(OutputWord, len(suffix))
	for i, in := range suffix {
		st, out[i] = s.transition(a, st, in)
	}
	return out
}

// Run returns the execution states visited by word, starting with the
// initial state.
func (s *System) Run(word Word) []ExecState {
	states := make([]ExecState, 0, len(word)+1)
	st := s.InitialState()
	states = append(states, st)
	for _, in := range word {
		st, _ = s.Transition(st, in)
		states = append(states, st)
	}
	return states
}
