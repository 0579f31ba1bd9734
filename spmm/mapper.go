package spmm

import (
	"fmt"
)

// Mapper translates between global words and the local words seen by a
// single procedure. All methods are pure. Passing input and output words of
// different lengths is a programming error and panics.
type Mapper struct {
	inputs  *InputAlphabet
	outputs *OutputAlphabet
}

func NewMapper(inputs *InputAlphabet, outputs *OutputAlphabet) Mapper {
	return Mapper{inputs: inputs, outputs: outputs}
}

// TerminatingFunc yields the known terminating sequence of a call, or nil.
type TerminatingFunc func(call Symbol) Word

func checkLengths(input Word, output OutputWord) {
	if len(input) != len(output) {
		panic(fmt.Sprintf("spmm: input length %d does not match output length %d", len(input), len(output)))
	}
}

func (m Mapper) isCallStart(in Symbol, out Output) bool {
	return m.inputs.IsCall(in) && m.outputs.IsStart(out)
}

func (m Mapper) isReturnEnd(in Symbol, out Output) bool {
	return m.inputs.IsReturn(in) && m.outputs.IsEnd(out)
}

// FindCallIndex scans backwards from i for the call that opened the
// procedure responsible for position i. Returns -1 at top level.
func (m Mapper) FindCallIndex(input Word, output OutputWord, i int) int {
	checkLengths(input, output)
	balance := 0
	if m.outputs.IsPostReturn(output[i]) || m.outputs.IsEnd(output[i]) {
		balance = 1
	} else if m.outputs.IsStart(output[i]) {
		balance = -1
	}
	for j := i; j >= 0; j-- {
		switch {
		case m.isReturnEnd(input[j], output[j]):
			balance--
		case m.isCallStart(input[j], output[j]):
			if balance == 0 {
				return j
			}
			balance++
		}
	}
	return -1
}

// FindReturnIndex scans forward from `from` for the return that closes the
// procedure active at that position. Returns -1 if it never returns.
func (m Mapper) FindReturnIndex(input Word, output OutputWord, from int) int {
	checkLengths(input, output)
	balance := 0
	for j := from; j < len(input); j++ {
		switch {
		case m.isReturnEnd(input[j], output[j]):
			if balance == 0 {
				return j
			}
			balance--
		case m.isCallStart(input[j], output[j]):
			balance++
		}
	}
	return -1
}

// FindReturnIndexByCall finds the return matching the call at callIdx.
func (m Mapper) FindReturnIndexByCall(input Word, output OutputWord, callIdx int) int {
	if callIdx >= len(input) {
		return -1
	}
	return m.FindReturnIndex(input, output, callIdx+1)
}

// FindChildReturnIndex finds the return matching the call at callIdx by
// looking at input symbols only.
func (m Mapper) FindChildReturnIndex(input Word, callIdx int) int {
	balance := 0
	for j := callIdx + 1; j < len(input); j++ {
		switch {
		case m.inputs.IsReturn(input[j]):
			if balance == 0 {
				return j
			}
			balance--
		case m.inputs.IsCall(input[j]):
			balance++
		}
	}
	return -1
}

// FindLastIndexOfCurrentProcedure is the return index of the procedure
// active at from, extended past trailing post-return outputs. Without a
// return it is the last index.
func (m Mapper) FindLastIndexOfCurrentProcedure(input Word, output OutputWord, from int) int {
	closeIdx := m.FindReturnIndex(input, output, from)
	if closeIdx == -1 {
		return len(input) - 1
	}
	last := closeIdx
	for j := closeIdx; j < len(output); j++ {
		if m.outputs.IsPostReturn(output[j]) {
			last++
		}
	}
	return last
}

// ExpandInput inlines ts(c) after every call symbol c.
func (m Mapper) ExpandInput(word Word, ts TerminatingFunc) Word {
	out := make(Word, 0, len(word))
	for _, in := range word {
		out = append(out, in)
		if m.inputs.IsCall(in) {
			out = append(out, ts(in)...)
		}
	}
	return out
}

// ExpandInputOutput inlines terminating sequences for calls that start a
// procedure, until the first error or post-return output. tsOut yields the
// outputs of ts.
func (m Mapper) ExpandInputOutput(input Word, output OutputWord, ts TerminatingFunc,
	tsOut func(call Symbol) OutputWord) (Word, OutputWord) {

	checkLengths(input, output)
	inOut := make(Word, 0, len(input))
	outOut := make(OutputWord, 0, len(output))
	stopped := false
	for i, in := range input {
		o := output[i]
		if m.outputs.IsError(o) || m.outputs.IsPostReturn(o) {
			stopped = true
		}
		inOut = append(inOut, in)
		outOut = append(outOut, o)
		if !stopped && m.isCallStart(in, o) {
			inOut = append(inOut, ts(in)...)
			outOut = append(outOut, tsOut(in)...)
		}
	}
	return inOut, outOut
}

// Project collapses every nested call subword into its call symbol. Outputs
// after the first return of the outermost procedure become post-return.
func (m Mapper) Project(input Word, output OutputWord) (Word, OutputWord) {
	return m.project(input, output, false)
}

// ProjectStrict is Project, except a call whose own output is error or
// post-return is kept expanded.
func (m Mapper) ProjectStrict(input Word, output OutputWord) (Word, OutputWord) {
	return m.project(input, output, true)
}

func (m Mapper) project(input Word, output OutputWord, strict bool) (Word, OutputWord) {
	checkLengths(input, output)
	firstReturn := m.FindReturnIndex(input, output, 0)
	var pin Word
	var pout OutputWord
	for i := 0; i < len(input); i++ {
		pin = append(pin, input[i])
		if firstReturn == -1 || i <= firstReturn {
			pout = append(pout, output[i])
		} else {
			pout = append(pout, m.outputs.PostReturn())
		}
		if !m.inputs.IsCall(input[i]) {
			continue
		}
		if strict && (m.outputs.IsError(output[i]) || m.outputs.IsPostReturn(output[i])) {
			continue
		}
		child := m.FindChildReturnIndex(input, i)
		if child == -1 {
			break
		}
		i = child
	}
	return pin, pout
}

// LocalQuery extracts the local word of the procedure called at callIdx:
// everything up to its return (and trailing post-return padding), strictly
// projected.
func (m Mapper) LocalQuery(input Word, output OutputWord, callIdx int) (Word, OutputWord) {
	checkLengths(input, output)
	last := m.FindLastIndexOfCurrentProcedure(input, output, callIdx+1)
	if last < callIdx+1 {
		return Word{}, OutputWord{}
	}
	return m.ProjectStrict(input[callIdx+1:last+1], output[callIdx+1:last+1])
}
