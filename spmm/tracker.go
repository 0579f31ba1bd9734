package spmm

// SequenceTracker learns access and terminating sequences of procedures from
// the error-free prefixes of counterexamples. Sequences are only ever set
// once or shortened.
type SequenceTracker struct {
	mapper         Mapper
	outputs        *OutputAlphabet
	access         map[Symbol]Word
	terminating    map[Symbol]Word
	terminatingOut map[Symbol]OutputWord
	updater        SequenceUpdater
}

// SequenceUpdater may shorten tracked sequences using the current
// sub-models. It must go through SequenceTracker.Shorten.
type SequenceUpdater func(t *SequenceTracker, models map[Symbol]Procedure, transformers map[Symbol]AccessSequenceTransformer, active []Symbol)

// AccessSequenceTransformer maps a local word to the canonical access
// sequence of the state it reaches.
type AccessSequenceTransformer interface {
	TransformAccessSequence(w Word) Word
	IsAccessSequence(w Word) bool
}

func NewSequenceTracker(mapper Mapper) *SequenceTracker {
	return &SequenceTracker{
		mapper:         mapper,
		outputs:        mapper.outputs,
		access:         make(map[Symbol]Word),
		terminating:    make(map[Symbol]Word),
		terminatingOut: make(map[Symbol]OutputWord),
	}
}

// Scan records sequences for every call before the first error or
// post-return output. It returns the calls seen for the first time, in
// order of occurrence, and whether any sequence was added.
func (t *SequenceTracker) Scan(input Word, output OutputWord) ([]Symbol, bool) {
	checkLengths(input, output)
	last := len(input) - 1
	if e := t.outputs.FirstError(output); e != -1 && e-1 < last {
		last = e - 1
	}
	if p := t.outputs.FirstPostReturn(output); p != -1 && p-1 < last {
		last = p - 1
	}

	var discovered []Symbol
	changed := false
	for i := 0; i <= last; i++ {
		sym := input[i]
		if !t.mapper.inputs.IsCall(sym) {
			continue
		}
		if _, ok := t.access[sym]; !ok {
			t.access[sym] = append(Word{}, input[:i]...)
			discovered = append(discovered, sym)
			changed = true
		}
		if _, ok := t.terminating[sym]; ok || !t.outputs.IsStart(output[i]) {
			continue
		}
		ret := t.mapper.FindReturnIndexByCall(input, output, i)
		if ret == -1 {
			continue
		}
		t.terminating[sym] = append(Word{}, input[i+1:ret+1]...)
		t.terminatingOut[sym] = append(OutputWord{}, output[i+1:ret+1]...)
		changed = true
	}
	return discovered, changed
}

func (t *SequenceTracker) AccessSequence(c Symbol) (Word, bool) {
	w, ok := t.access[c]
	return w, ok
}

func (t *SequenceTracker) TerminatingSequence(c Symbol) (Word, bool) {
	w, ok := t.terminating[c]
	return w, ok
}

func (t *SequenceTracker) TerminatingOutput(c Symbol) (OutputWord, bool) {
	w, ok := t.terminatingOut[c]
	return w, ok
}

// Terminating is a TerminatingFunc over the tracked sequences.
func (t *SequenceTracker) Terminating(c Symbol) Word { return t.terminating[c] }

// IsTerminating reports whether c has an access sequence and a terminating
// sequence that ends in a genuine return.
func (t *SequenceTracker) IsTerminating(c Symbol) bool {
	if _, ok := t.access[c]; !ok {
		return false
	}
	if _, ok := t.terminating[c]; !ok {
		return false
	}
	out := t.terminatingOut[c]
	return len(out) > 0 && t.outputs.IsEnd(out[len(out)-1])
}

// TerminatingCalls filters candidates down to terminating calls, keeping
// their order.
func (t *SequenceTracker) TerminatingCalls(candidates []Symbol) []Symbol {
	var out []Symbol
	for _, c := range candidates {
		if t.IsTerminating(c) {
			out = append(out, c)
		}
	}
	return out
}

// Shorten replaces the sequences of c when the replacements are strictly
// shorter. Nil arguments leave that sequence untouched.
func (t *SequenceTracker) Shorten(c Symbol, access, terminating Word, terminatingOut OutputWord) bool {
	changed := false
	if old, ok := t.access[c]; access != nil && ok && len(access) < len(old) {
		t.access[c] = append(Word{}, access...)
		changed = true
	}
	if old, ok := t.terminating[c]; terminating != nil && ok && len(terminating) < len(old) &&
		len(terminating) == len(terminatingOut) {
		t.terminating[c] = append(Word{}, terminating...)
		t.terminatingOut[c] = append(OutputWord{}, terminatingOut...)
		changed = true
	}
	return changed
}

// UpdateSequences runs the installed SequenceUpdater. It does nothing when
// none is installed.
func (t *SequenceTracker) UpdateSequences(models map[Symbol]Procedure, transformers map[Symbol]AccessSequenceTransformer, active []Symbol) {
	if t.updater != nil {
		t.updater(t, models, transformers, active)
	}
}
