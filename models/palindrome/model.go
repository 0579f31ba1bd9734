// Package palindrome is the two-procedure palindrome system: P accepts
// palindromes over {a, b} and T accepts palindromes over {c}, each able to
// nest the other in its middle.
package palindrome

import "github.com/rfielding/spmm-learner/spmm"

const (
	Open  spmm.Output = "open"
	Close spmm.Output = "close"
	Err   spmm.Output = "error"
	Left  spmm.Output = "left"
)

// Model implements spmm.Spec.
type Model struct{}

func (Model) Name() string { return "palindrome" }

func (Model) Description() string {
	return "P accepts a-b palindromes, T accepts c palindromes; either may call the other in its middle."
}

// Alphabets returns the input and output alphabets of the system.
func Alphabets() (*spmm.InputAlphabet, *spmm.OutputAlphabet, error) {
	inputs, err := spmm.NewInputAlphabet([]spmm.Symbol{"a", "b", "c"}, []spmm.Symbol{"P", "T"}, "R")
	if err != nil {
		return nil, nil, err
	}
	outputs, err := spmm.NewOutputAlphabet([]spmm.Output{"a", "b", "c"}, Open, Close, Err, Left)
	if err != nil {
		return nil, nil, err
	}
	return inputs, outputs, nil
}

func (Model) Build() (*spmm.System, error) {
	inputs, outputs, err := Alphabets()
	if err != nil {
		return nil, err
	}

	p, err := spmm.NewProcedureBuilder(inputs, outputs).
		Initial("p0").
		Call("p0", "T", "p5").
		On("p0", "a", "a", "p1").
		On("p0", "b", "b", "p2").
		Call("p1", "P", "p3").
		On("p1", "a", "a", "p5").
		Call("p2", "P", "p4").
		On("p2", "b", "b", "p5").
		On("p3", "a", "a", "p5").
		On("p4", "b", "b", "p5").
		Return("p5").
		Build()
	if err != nil {
		return nil, err
	}

	t, err := spmm.NewProcedureBuilder(inputs, outputs).
		Initial("t0").
		Call("t0", "P", "t3").
		On("t0", "c", "c", "t1").
		Call("t1", "T", "t2").
		On("t1", "c", "c", "t3").
		On("t2", "c", "c", "t3").
		Return("t3").
		Build()
	if err != nil {
		return nil, err
	}

	return spmm.NewFullyActivatedSystem(inputs, outputs, "P", map[spmm.Symbol]spmm.Procedure{
		"P": p,
		"T": t,
	})
}

func (Model) Examples() []spmm.ExampleWord {
	return []spmm.ExampleWord{
		{Input: "PaaR", Output: "open a a close"},
		{Input: "PaR", Output: "open a error"},
		{Input: "PTccRR", Output: "open open c c close close"},
		{Input: "PaPbbRaR", Output: "open a open b b close a close"},
		{Input: "PaaRa", Output: "open a a close left"},
	}
}
