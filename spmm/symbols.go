package spmm

// ----- Symbol sets -----

// SymbolSet is an unordered set of input symbols. Use InputAlphabet.SortCalls
// for a deterministic order.
type SymbolSet map[Symbol]struct{}

func NewSymbolSet(syms ...Symbol) SymbolSet {
	s := make(SymbolSet, len(syms))
	for _, x := range syms {
		s[x] = struct{}{}
	}
	return s
}

func (s SymbolSet) Has(x Symbol) bool { _, ok := s[x]; return ok }
func (s SymbolSet) Add(x Symbol)      { s[x] = struct{}{} }

func (s SymbolSet) Equals(other SymbolSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}
