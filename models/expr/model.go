// Package expr models an arithmetic expression grammar as a system of
// three mutually recursive procedures:
//
//	E -> T | T plus E
//	T -> F | F times T
//	F -> n | lp E rp
package expr

import "github.com/rfielding/spmm-learner/spmm"

const (
	Enter spmm.Output = "enter"
	Exit  spmm.Output = "exit"
	Err   spmm.Output = "error"
	After spmm.Output = "after"
)

var (
	internals = []spmm.Symbol{"n", "plus", "times", "lp", "rp"}
	calls     = []spmm.Symbol{"E", "T", "F"}
)

type Model struct{}

func (Model) Name() string { return "expr" }

func (Model) Description() string {
	return "Expression grammar with sums, products, numbers and parenthesised sub-expressions."
}

func Alphabets() (*spmm.InputAlphabet, *spmm.OutputAlphabet, error) {
	inputs, err := spmm.NewInputAlphabet(internals, calls, "R")
	if err != nil {
		return nil, nil, err
	}
	outs := make([]spmm.Output, len(internals))
	for i, s := range internals {
		outs[i] = spmm.Output(s)
	}
	outputs, err := spmm.NewOutputAlphabet(outs, Enter, Exit, Err, After)
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

	e, err := spmm.NewProcedureBuilder(inputs, outputs).
		Initial("e0").
		Call("e0", "T", "e1").
		On("e1", "plus", "plus", "e2").
		Call("e2", "T", "e1").
		Return("e1").
		Build()
	if err != nil {
		return nil, err
	}

	t, err := spmm.NewProcedureBuilder(inputs, outputs).
		Initial("t0").
		Call("t0", "F", "t1").
		On("t1", "times", "times", "t2").
		Call("t2", "F", "t1").
		Return("t1").
		Build()
	if err != nil {
		return nil, err
	}

	f, err := spmm.NewProcedureBuilder(inputs, outputs).
		Initial("f0").
		On("f0", "n", "n", "f1").
		On("f0", "lp", "lp", "f2").
		Call("f2", "E", "f3").
		On("f3", "rp", "rp", "f1").
		Return("f1").
		Build()
	if err != nil {
		return nil, err
	}

	return spmm.NewFullyActivatedSystem(inputs, outputs, "E", map[spmm.Symbol]spmm.Procedure{
		"E": e,
		"T": t,
		"F": f,
	})
}

func (Model) Examples() []spmm.ExampleWord {
	return []spmm.ExampleWord{
		{Input: "E T F n R R R", Output: "enter enter enter n exit exit exit"},
		{Input: "E T F n R times F n R R plus T F n R R R",
			Output: "enter enter enter n exit times enter n exit exit plus enter enter n exit exit exit"},
		{Input: "E T F lp E T F n R R R rp R R R",
			Output: "enter enter enter lp enter enter enter n exit exit exit rp exit exit exit"},
		{Input: "E T F n R plus", Output: "enter enter enter n exit error"},
	}
}
