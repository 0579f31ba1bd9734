package spmm

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSystem: the ground truth breaks the error or post-return sink discipline.
	ErrMalformedSystem = errors.New("malformed procedural system")
	// ErrNonTerminatingProcedure: some procedure can never return.
	ErrNonTerminatingProcedure = errors.New("procedure cannot terminate")
	// ErrUnreachableProcedure: some procedure is never called from the initial procedure.
	ErrUnreachableProcedure = errors.New("procedure is unreachable")
)

// keepRunning follows transitions that stay inside the procedure: no error,
// no return, and calls only where the procedure really calls.
func keepRunning(sys *System) func(int, Symbol, Output) bool {
	in, out := sys.inputs, sys.outputs
	return func(_ int, sym Symbol, o Output) bool {
		if out.IsError(o) || out.IsPostReturn(o) || in.IsReturn(sym) {
			return false
		}
		return !in.IsCall(sym) || out.IsStart(o)
	}
}

func returnsAfter(sys *System, p Procedure, trace Word) bool {
	out := ComputeProcedure(p, Concat(trace, Word{sys.inputs.Return()}))
	return sys.outputs.IsEnd(out[len(out)-1])
}

// ComputeTerminatingSequences finds, bottom up, a terminating sequence for
// every procedure of sys. Nested calls are expanded with the sequences of
// procedures solved earlier.
func ComputeTerminatingSequences(sys *System) (map[Symbol]Word, error) {
	mapper := NewMapper(sys.inputs, sys.outputs)
	ret := sys.inputs.Return()
	keep := keepRunning(sys)
	ts := make(map[Symbol]Word)
	lookup := func(c Symbol) Word { return ts[c] }

	var unsolved []Symbol
	for _, c := range sys.Calls() {
		p := sys.procedures[c]
		if returnsAfter(sys, p, nil) {
			ts[c] = Word{ret}
			continue
		}
		found := false
		for _, trace := range StateCover(p, sys.inputs.internals, keep) {
			if returnsAfter(sys, p, trace) {
				ts[c] = Concat(trace, Word{ret})
				found = true
				break
			}
		}
		if !found {
			unsolved = append(unsolved, c)
		}
	}

	for progress := true; progress && len(unsolved) > 0; {
		progress = false
		eligible := sys.inputs.Internals()
		for _, c := range sys.Calls() {
			if _, ok := ts[c]; ok {
				eligible = append(eligible, c)
			}
		}
		var next []Symbol
		for _, c := range unsolved {
			p := sys.procedures[c]
			found := false
			for _, trace := range StateCover(p, eligible, keep) {
				if returnsAfter(sys, p, trace) {
					ts[c] = mapper.ExpandInput(Concat(trace, Word{ret}), lookup)
					found = true
					progress = true
					break
				}
			}
			if !found {
				next = append(next, c)
			}
		}
		unsolved = next
	}
	if len(unsolved) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrNonTerminatingProcedure, unsolved)
	}
	return ts, nil
}

// ComputeAccessSequences finds, top down from the initial call, the shortest
// access sequence this search can produce for every procedure.
func ComputeAccessSequences(sys *System, ts map[Symbol]Word) (map[Symbol]Word, error) {
	initial, ok := sys.InitialCall()
	if !ok {
		return nil, fmt.Errorf("%w: no initial call", ErrMalformedSystem)
	}
	if _, ok := sys.procedures[initial]; !ok {
		return nil, fmt.Errorf("%w: initial call %q has no procedure", ErrMalformedSystem, initial)
	}
	mapper := NewMapper(sys.inputs, sys.outputs)
	lookup := func(c Symbol) Word { return ts[c] }
	keep := keepRunning(sys)
	symbols := sys.inputs.Symbols()

	as := map[Symbol]Word{initial: {}}
	for improved := true; improved; {
		improved = false
		finished := NewSymbolSet()
		for c := range as {
			finished.Add(c)
		}
		for _, c := range sys.inputs.SortCalls(finished) {
			p := sys.procedures[c]
			for _, trace := range TransitionCover(p, symbols, keep) {
				last := trace[len(trace)-1]
				if _, ok := sys.procedures[last]; !ok || !sys.inputs.IsCall(last) {
					continue
				}
				out := ComputeProcedure(p, trace)
				if !sys.outputs.IsStart(out[len(out)-1]) {
					continue
				}
				cand := Concat(as[c], Word{c}, mapper.ExpandInput(trace[:len(trace)-1], lookup))
				if old, ok := as[last]; !ok || len(cand) < len(old) {
					as[last] = cand
					improved = true
				}
			}
		}
	}

	var missing []Symbol
	for _, c := range sys.Calls() {
		if _, ok := as[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableProcedure, missing)
	}
	return as, nil
}

// CheckSinks verifies that every reachable error output of every procedure
// leads into a region that only outputs error, and every return with the
// end output leads into a region that only outputs post-return.
func CheckSinks(sys *System) error {
	symbols := sys.inputs.Symbols()
	for _, c := range sys.Calls() {
		p := sys.procedures[c]
		for _, w := range StateCover(p, symbols, nil) {
			s := StateAfter(p, w)
			for _, in := range symbols {
				next, o, ok := p.Transition(s, in)
				if !ok {
					return fmt.Errorf("%w: procedure %q is not complete on %q", ErrMalformedSystem, c, in)
				}
				var want Output
				switch {
				case sys.outputs.IsError(o):
					want = sys.outputs.Error()
				case sys.inputs.IsReturn(in) && sys.outputs.IsEnd(o):
					want = sys.outputs.PostReturn()
				default:
					continue
				}
				if !onlyOutputs(p, next, symbols, want) {
					return fmt.Errorf("%w: procedure %q leaves the %s sink after %v",
						ErrMalformedSystem, c, want, Concat(w, Word{in}))
				}
			}
		}
	}
	return nil
}

func onlyOutputs(p Procedure, from int, symbols []Symbol, want Output) bool {
	seen := map[int]bool{from: true}
	queue := []int{from}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, in := range symbols {
			next, o, ok := p.Transition(s, in)
			if !ok || o != want {
				return false
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return true
}
