package spmm

import (
	"fmt"
	"strings"
)

// SubLearner learns one procedure from local membership queries.
type SubLearner interface {
	AccessSequenceTransformer
	StartLearning()
	// RefineHypothesis returns false when input/output is not a
	// counterexample for the current hypothesis, or when the learner cannot
	// make its hypothesis agree with it.
	RefineHypothesis(input Word, output OutputWord) bool
	HypothesisModel() Procedure
	AddAlphabetSymbol(s Symbol)
	Refinements() int
	CounterexampleSymbols() int
}

// LearnerFactory creates a sub-learner over alphabet answering queries
// through oracle.
type LearnerFactory func(alphabet []Symbol, oracle MembershipOracle) SubLearner

// CounterexampleHandler selects how LStar turns a counterexample into new
// table columns.
type CounterexampleHandler int

const (
	// MalerPnueli adds every suffix of the counterexample.
	MalerPnueli CounterexampleHandler = iota
	// RivestSchapire adds the single suffix found by binary search.
	RivestSchapire
)

func (h CounterexampleHandler) String() string {
	switch h {
	case MalerPnueli:
		return "maler-pnueli"
	case RivestSchapire:
		return "rivest-schapire"
	default:
		return fmt.Sprintf("handler(%d)", int(h))
	}
}

// ParseHandler maps a configuration name to a handler.
func ParseHandler(name string) (CounterexampleHandler, error) {
	switch strings.ToLower(name) {
	case "", "maler-pnueli", "mp", "lstar":
		return MalerPnueli, nil
	case "rivest-schapire", "rs":
		return RivestSchapire, nil
	}
	return 0, fmt.Errorf("unknown counterexample handler %q", name)
}

// LStarFactory returns a LearnerFactory producing LStar learners.
func LStarFactory(handler CounterexampleHandler) LearnerFactory {
	return func(alphabet []Symbol, oracle MembershipOracle) SubLearner {
		return NewLStar(alphabet, oracle, handler)
	}
}

// FactoryByName resolves a handler name to a LearnerFactory.
func FactoryByName(name string) (LearnerFactory, error) {
	h, err := ParseHandler(name)
	if err != nil {
		return nil, err
	}
	return LStarFactory(h), nil
}

// LStar is an observation-table learner for Mealy machines. Short prefixes
// always have pairwise distinct rows, so the table never needs a
// consistency check.
type LStar struct {
	alphabet []Symbol
	inAlpha  SymbolSet
	oracle   MembershipOracle
	handler  CounterexampleHandler

	short     []Word
	suffixes  []Word
	suffixIdx map[string]int
	cells     map[string][]OutputWord

	hyp         *Mealy
	refinements int
	ceSymbols   int
}

func NewLStar(alphabet []Symbol, oracle MembershipOracle, handler CounterexampleHandler) *LStar {
	return &LStar{
		alphabet:  append([]Symbol(nil), alphabet...),
		inAlpha:   NewSymbolSet(alphabet...),
		oracle:    oracle,
		handler:   handler,
		suffixIdx: make(map[string]int),
		cells:     make(map[string][]OutputWord),
	}
}

func wordKey(w Word) string {
	var sb strings.Builder
	for i, s := range w {
		if i > 0 {
			sb.WriteByte(0x1f)
		}
		sb.WriteString(string(s))
	}
	return sb.String()
}

func (l *LStar) StartLearning() {
	l.short = []Word{{}}
	for _, a := range l.alphabet {
		l.addSuffix(Word{a})
	}
	l.update()
}

func (l *LStar) addSuffix(e Word) bool {
	k := wordKey(e)
	if _, ok := l.suffixIdx[k]; ok {
		return false
	}
	l.suffixIdx[k] = len(l.suffixes)
	l.suffixes = append(l.suffixes, append(Word{}, e...))
	return true
}

// prefixes lists S followed by S·Σ, each word once. A promoted word is in
// both S and S·Σ.
func (l *LStar) prefixes() []Word {
	seen := make(map[string]bool, len(l.short)*(len(l.alphabet)+1))
	var out []Word
	add := func(w Word) {
		if k := wordKey(w); !seen[k] {
			seen[k] = true
			out = append(out, w)
		}
	}
	for _, u := range l.short {
		add(u)
	}
	for _, u := range l.short {
		for _, a := range l.alphabet {
			add(Concat(u, Word{a}))
		}
	}
	return out
}

type cellRef struct {
	row string
	col int
}

// fill asks every missing table cell in one batch. Cell j of a row always
// answers suffix j.
func (l *LStar) fill() {
	var queries []*Query
	var refs []cellRef
	for _, u := range l.prefixes() {
		k := wordKey(u)
		row := l.cells[k]
		if len(row) == len(l.suffixes) {
			continue
		}
		for j := len(row); j < len(l.suffixes); j++ {
			queries = append(queries, &Query{Prefix: u, Suffix: l.suffixes[j]})
			refs = append(refs, cellRef{row: k, col: j})
		}
		l.cells[k] = append(row, make([]OutputWord, len(l.suffixes)-len(row))...)
	}
	if len(queries) == 0 {
		return
	}
	l.oracle.AnswerAll(queries)
	for i, q := range queries {
		l.cells[refs[i].row][refs[i].col] = q.Output
	}
}

func (l *LStar) signature(u Word) string {
	var sb strings.Builder
	for _, cell := range l.cells[wordKey(u)] {
		sb.WriteString(wordKey(wordOf(cell)))
		sb.WriteByte(0x1e)
	}
	return sb.String()
}

func wordOf(o OutputWord) Word {
	w := make(Word, len(o))
	for i, x := range o {
		w[i] = Symbol(x)
	}
	return w
}

// close promotes unmatched rows of S·Σ into S until the table is closed.
func (l *LStar) close() {
	for {
		l.fill()
		known := make(map[string]bool, len(l.short))
		for _, u := range l.short {
			known[l.signature(u)] = true
		}
		var promote Word
	search:
		for _, u := range l.short {
			for _, a := range l.alphabet {
				ua := Concat(u, Word{a})
				if !known[l.signature(ua)] {
					promote = ua
					break search
				}
			}
		}
		if promote == nil {
			return
		}
		l.short = append(l.short, promote)
	}
}

func (l *LStar) update() {
	l.close()
	l.hyp = l.buildHypothesis()
}

func (l *LStar) buildHypothesis() *Mealy {
	m := NewMealy(l.alphabet)
	state := make(map[string]int, len(l.short))
	for _, u := range l.short {
		state[l.signature(u)] = m.AddState()
	}
	for i, u := range l.short {
		for _, a := range l.alphabet {
			next, ok := state[l.signature(Concat(u, Word{a}))]
			if !ok {
				panic(fmt.Sprintf("spmm: observation table not closed at %v", Concat(u, Word{a})))
			}
			out := l.cells[wordKey(u)][l.suffixIdx[wordKey(Word{a})]][0]
			if err := m.SetTransition(i, a, out, next); err != nil {
				panic(fmt.Sprintf("spmm: inconsistent observation table: %v", err))
			}
		}
	}
	m.SetInitial(0)
	return m
}

func (l *LStar) HypothesisModel() Procedure { return l.hyp }

func (l *LStar) AddAlphabetSymbol(s Symbol) {
	if l.inAlpha.Has(s) {
		return
	}
	l.inAlpha.Add(s)
	l.alphabet = append(l.alphabet, s)
	l.addSuffix(Word{s})
	if l.short != nil {
		l.update()
	}
}

func (l *LStar) RefineHypothesis(input Word, output OutputWord) bool {
	if len(input) != len(output) {
		return false
	}
	for _, s := range input {
		if !l.inAlpha.Has(s) {
			return false
		}
	}
	if ComputeProcedure(l.hyp, input).Equal(output) {
		return false
	}
	l.refinements++
	l.ceSymbols += len(input)
	for !ComputeProcedure(l.hyp, input).Equal(output) {
		before := len(l.short)
		added := l.handle(input, output)
		l.update()
		if !added && len(l.short) == before {
			return false
		}
	}
	return true
}

func (l *LStar) handle(input Word, output OutputWord) bool {
	if l.handler == RivestSchapire {
		if e := l.distinguishingSuffix(input, output); len(e) > 0 && l.addSuffix(e) {
			return true
		}
	}
	added := false
	for i := len(input) - 1; i >= 0; i-- {
		if l.addSuffix(input[i:]) {
			added = true
		}
	}
	return added
}

// distinguishingSuffix finds i such that replacing input[:i] by its access
// sequence changes the outcome while replacing input[:i+1] does not, and
// returns input[i+1:].
func (l *LStar) distinguishingSuffix(input Word, output OutputWord) Word {
	hypOut := ComputeProcedure(l.hyp, input)
	differs := func(i int) bool {
		if i == 0 {
			return !output.Equal(hypOut)
		}
		u := l.TransformAccessSequence(input[:i])
		return !l.oracle.Answer(u, input[i:]).Equal(hypOut[i:])
	}
	lo, hi := 0, len(input)
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if differs(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return input[lo+1:]
}

func (l *LStar) TransformAccessSequence(w Word) Word {
	s := StateAfter(l.hyp, w)
	if s < 0 {
		return append(Word{}, w...)
	}
	return append(Word{}, l.short[s]...)
}

func (l *LStar) IsAccessSequence(w Word) bool {
	return l.TransformAccessSequence(w).Equal(w)
}

func (l *LStar) Refinements() int           { return l.refinements }
func (l *LStar) CounterexampleSymbols() int { return l.ceSymbols }
