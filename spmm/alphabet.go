package spmm

import (
	"errors"
	"fmt"
	"strings"
)

// Symbol is an input symbol: internal, call or return.
type Symbol string

// Output is an output symbol.
type Output string

// Word is a sequence of input symbols.
type Word []Symbol

// OutputWord is a sequence of output symbols.
type OutputWord []Output

// ErrInvalidAlphabet is returned when alphabet partitions overlap or are malformed.
var ErrInvalidAlphabet = errors.New("invalid alphabet")

// SymbolKind classifies an input symbol.
type SymbolKind int

const (
	KindUnknown SymbolKind = iota
	KindInternal
	KindCall
	KindReturn
)

func (k SymbolKind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindCall:
		return "call"
	case KindReturn:
		return "return"
	default:
		return "unknown"
	}
}

// InputAlphabet is the disjoint union of internal symbols, call symbols
// (one per procedure) and exactly one return symbol.
type InputAlphabet struct {
	internals []Symbol
	calls     []Symbol
	ret       Symbol
	kinds     map[Symbol]SymbolKind
	order     map[Symbol]int
}

// NewInputAlphabet validates the partition and builds the alphabet.
func NewInputAlphabet(internals, calls []Symbol, ret Symbol) (*InputAlphabet, error) {
	if ret == "" {
		return nil, fmt.Errorf("%w: empty return symbol", ErrInvalidAlphabet)
	}
	if len(calls) == 0 {
		return nil, fmt.Errorf("%w: no call symbols", ErrInvalidAlphabet)
	}
	a := &InputAlphabet{
		internals: append([]Symbol(nil), internals...),
		calls:     append([]Symbol(nil), calls...),
		ret:       ret,
		kinds:     make(map[Symbol]SymbolKind),
		order:     make(map[Symbol]int),
	}
	add := func(s Symbol, k SymbolKind) error {
		if s == "" {
			return fmt.Errorf("%w: empty %s symbol", ErrInvalidAlphabet, k)
		}
		if prev, ok := a.kinds[s]; ok {
			return fmt.Errorf("%w: %q is both %s and %s", ErrInvalidAlphabet, s, prev, k)
		}
		a.kinds[s] = k
		a.order[s] = len(a.order)
		return nil
	}
	for _, s := range internals {
		if err := add(s, KindInternal); err != nil {
			return nil, err
		}
	}
	for _, s := range calls {
		if err := add(s, KindCall); err != nil {
			return nil, err
		}
	}
	if err := add(ret, KindReturn); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *InputAlphabet) Internals() []Symbol { return append([]Symbol(nil), a.internals...) }
func (a *InputAlphabet) Calls() []Symbol     { return append([]Symbol(nil), a.calls...) }
func (a *InputAlphabet) Return() Symbol      { return a.ret }
func (a *InputAlphabet) Kind(s Symbol) SymbolKind {
	return a.kinds[s]
}
func (a *InputAlphabet) IsInternal(s Symbol) bool { return a.kinds[s] == KindInternal }
func (a *InputAlphabet) IsCall(s Symbol) bool     { return a.kinds[s] == KindCall }
func (a *InputAlphabet) IsReturn(s Symbol) bool   { return s == a.ret }
func (a *InputAlphabet) Contains(s Symbol) bool   { _, ok := a.kinds[s]; return ok }
func (a *InputAlphabet) Size() int                { return len(a.kinds) }

// Symbols lists internals, then calls, then the return symbol.
func (a *InputAlphabet) Symbols() []Symbol {
	out := make([]Symbol, 0, a.Size())
	out = append(out, a.internals...)
	out = append(out, a.calls...)
	return append(out, a.ret)
}

// Index is the position of s in Symbols, or -1.
func (a *InputAlphabet) Index(s Symbol) int {
	if i, ok := a.order[s]; ok {
		return i
	}
	return -1
}

// SortCalls orders a set of call symbols by their position in the alphabet.
func (a *InputAlphabet) SortCalls(set SymbolSet) []Symbol {
	out := make([]Symbol, 0, len(set))
	for _, c := range a.calls {
		if set.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// OutputAlphabet is the internal outputs plus the four control outputs.
type OutputAlphabet struct {
	internals  []Output
	start      Output
	end        Output
	err        Output
	postReturn Output
	known      map[Output]struct{}
}

// NewOutputAlphabet validates that the control outputs are distinct and
// disjoint from the internal outputs.
func NewOutputAlphabet(internals []Output, start, end, errSym, postReturn Output) (*OutputAlphabet, error) {
	a := &OutputAlphabet{
		internals:  append([]Output(nil), internals...),
		start:      start,
		end:        end,
		err:        errSym,
		postReturn: postReturn,
		known:      make(map[Output]struct{}),
	}
	for _, o := range append(append([]Output(nil), internals...), start, end, errSym, postReturn) {
		if o == "" {
			return nil, fmt.Errorf("%w: empty output symbol", ErrInvalidAlphabet)
		}
		if _, dup := a.known[o]; dup {
			return nil, fmt.Errorf("%w: output %q listed twice", ErrInvalidAlphabet, o)
		}
		a.known[o] = struct{}{}
	}
	return a, nil
}

func (a *OutputAlphabet) Internals() []Output { return append([]Output(nil), a.internals...) }
func (a *OutputAlphabet) Start() Output       { return a.start }
func (a *OutputAlphabet) End() Output         { return a.end }
func (a *OutputAlphabet) Error() Output       { return a.err }
func (a *OutputAlphabet) PostReturn() Output  { return a.postReturn }

func (a *OutputAlphabet) IsStart(o Output) bool      { return o == a.start }
func (a *OutputAlphabet) IsEnd(o Output) bool        { return o == a.end }
func (a *OutputAlphabet) IsError(o Output) bool      { return o == a.err }
func (a *OutputAlphabet) IsPostReturn(o Output) bool { return o == a.postReturn }
func (a *OutputAlphabet) Contains(o Output) bool     { _, ok := a.known[o]; return ok }

// IndexOf returns the first position holding o, or -1.
func IndexOf(w OutputWord, o Output) int {
	for i, x := range w {
		if x == o {
			return i
		}
	}
	return -1
}

// FirstError is the index of the first error output, or -1.
func (a *OutputAlphabet) FirstError(w OutputWord) int { return IndexOf(w, a.err) }

// FirstPostReturn is the index of the first post-return output, or -1.
func (a *OutputAlphabet) FirstPostReturn(w OutputWord) int { return IndexOf(w, a.postReturn) }

// Concat joins words into a fresh word.
func Concat(words ...Word) Word {
	n := 0
	for _, w := range words {
		n += len(w)
	}
	out := make(Word, 0, n)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

// ConcatOutputs joins output words into a fresh word.
func ConcatOutputs(words ...OutputWord) OutputWord {
	n := 0
	for _, w := range words {
		n += len(w)
	}
	out := make(OutputWord, 0, n)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

func (w Word) Equal(other Word) bool {
	if len(w) != len(other) {
		return false
	}
	for i := range w {
		if w[i] != other[i] {
			return false
		}
	}
	return true
}

func (w OutputWord) Equal(other OutputWord) bool {
	if len(w) != len(other) {
		return false
	}
	for i := range w {
		if w[i] != other[i] {
			return false
		}
	}
	return true
}

// FirstDifference is the first index where the words differ, or -1 if they
// are equal. A strict prefix differs at its own length.
func (w OutputWord) FirstDifference(other OutputWord) int {
	n := len(w)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if w[i] != other[i] {
			return i
		}
	}
	if len(w) != len(other) {
		return n
	}
	return -1
}

// ParseWord splits a word written as single characters ("PaaR") or as
// space separated symbols ("P a a R").
func ParseWord(s string) Word {
	var out Word
	if strings.ContainsAny(s, " \t") {
		for _, f := range strings.Fields(s) {
			out = append(out, Symbol(f))
		}
		return out
	}
	for _, r := range s {
		out = append(out, Symbol(string(r)))
	}
	return out
}

func (w Word) String() string {
	var parts []string
	for _, s := range w {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, " ")
}

func (w OutputWord) String() string {
	var parts []string
	for _, s := range w {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, " ")
}
