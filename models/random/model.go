// Package random generates seeded random procedural systems. Every
// generated system is terminating and fully reachable: procedure i always
// has a path that calls procedure i+1 and returns, and the last procedure
// has one that uses internal symbols only.
package random

import (
	"fmt"
	"math/rand/v2"

	"github.com/rfielding/spmm-learner/spmm"
)

const (
	Start      spmm.Output = "start"
	End        spmm.Output = "end"
	Err        spmm.Output = "error"
	PostReturn spmm.Output = "post"
)

// Config controls the shape of a generated system.
type Config struct {
	Seed       uint64
	Procedures int
	Internals  int
	// Size is the number of named states per procedure.
	Size int
	// Density is the probability that an optional transition exists.
	Density float64
}

func DefaultConfig() Config {
	return Config{Seed: 1, Procedures: 3, Internals: 3, Size: 4, Density: 0.4}
}

func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.Procedures <= 0 {
		c.Procedures = d.Procedures
	}
	if c.Internals <= 0 {
		c.Internals = d.Internals
	}
	if c.Size < 2 {
		c.Size = 2
	}
	if c.Density <= 0 || c.Density > 1 {
		c.Density = d.Density
	}
	return c
}

// Model implements spmm.Spec for one generator configuration.
type Model struct {
	Config Config
}

func (m Model) Name() string {
	c := m.Config.normalize()
	return fmt.Sprintf("random-%d-p%d-s%d", c.Seed, c.Procedures, c.Size)
}

func (m Model) Description() string {
	c := m.Config.normalize()
	return fmt.Sprintf("Random system with %d procedures of %d states over %d internal symbols (seed %d).",
		c.Procedures, c.Size, c.Internals, c.Seed)
}

func (m Model) Build() (*spmm.System, error) {
	return Generate(m.Config)
}

// Alphabets returns the alphabets Generate uses for cfg: internals i0..,
// calls C0.. with C0 initial, and return R.
func Alphabets(cfg Config) (*spmm.InputAlphabet, *spmm.OutputAlphabet, error) {
	cfg = cfg.normalize()
	internals := make([]spmm.Symbol, cfg.Internals)
	outs := make([]spmm.Output, cfg.Internals)
	for i := range internals {
		internals[i] = spmm.Symbol(fmt.Sprintf("i%d", i))
		outs[i] = spmm.Output(fmt.Sprintf("o%d", i))
	}
	calls := make([]spmm.Symbol, cfg.Procedures)
	for i := range calls {
		calls[i] = spmm.Symbol(fmt.Sprintf("C%d", i))
	}
	inputs, err := spmm.NewInputAlphabet(internals, calls, "R")
	if err != nil {
		return nil, nil, err
	}
	outputs, err := spmm.NewOutputAlphabet(outs, Start, End, Err, PostReturn)
	if err != nil {
		return nil, nil, err
	}
	return inputs, outputs, nil
}

type generator struct {
	rng     *rand.Rand
	cfg     Config
	inputs  *spmm.InputAlphabet
	outputs *spmm.OutputAlphabet
}

// Generate builds the system described by cfg. The same configuration
// always yields the same system.
func Generate(cfg Config) (*spmm.System, error) {
	cfg = cfg.normalize()
	inputs, outputs, err := Alphabets(cfg)
	if err != nil {
		return nil, err
	}
	g := &generator{
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		cfg:     cfg,
		inputs:  inputs,
		outputs: outputs,
	}

	calls := inputs.Calls()
	procs := make(map[spmm.Symbol]spmm.Procedure, len(calls))
	for i, c := range calls {
		var callee spmm.Symbol
		if i+1 < len(calls) {
			callee = calls[i+1]
		}
		p, err := g.procedure(callee)
		if err != nil {
			return nil, fmt.Errorf("procedure %s: %w", c, err)
		}
		procs[c] = p
	}
	return spmm.NewFullyActivatedSystem(inputs, outputs, calls[0], procs)
}

func stateName(i int) string { return fmt.Sprintf("q%d", i) }

// procedure lays a spine q0 -> ... -> q(n-1) that returns from its last
// state, calling callee on the way when callee is set. Calls on the spine
// only target callee, so termination follows by induction from the last
// procedure. Further transitions are added at random.
func (g *generator) procedure(callee spmm.Symbol) (spmm.Procedure, error) {
	n := g.cfg.Size
	internals := g.inputs.Internals()
	outs := g.outputs.Internals()
	b := spmm.NewProcedureBuilder(g.inputs, g.outputs).Initial(stateName(0))
	defined := make(map[[2]string]bool)
	mark := func(from string, in spmm.Symbol) { defined[[2]string{from, string(in)}] = true }

	callAt := -1
	if callee != "" {
		callAt = g.rng.IntN(n - 1)
	}
	for i := 0; i < n-1; i++ {
		from, to := stateName(i), stateName(i+1)
		if i == callAt {
			b.Call(from, callee, to)
			mark(from, callee)
			continue
		}
		k := g.rng.IntN(len(internals))
		b.On(from, internals[k], outs[g.rng.IntN(len(outs))], to)
		mark(from, internals[k])
	}
	b.Return(stateName(n - 1))
	mark(stateName(n-1), g.inputs.Return())

	for i := 0; i < n; i++ {
		from := stateName(i)
		for _, in := range g.inputs.Symbols() {
			if defined[[2]string{from, string(in)}] || g.rng.Float64() >= g.cfg.Density {
				continue
			}
			mark(from, in)
			switch {
			case g.inputs.IsReturn(in):
				b.Return(from)
			case g.inputs.IsCall(in):
				b.Call(from, in, stateName(g.rng.IntN(n)))
			default:
				b.On(from, in, outs[g.rng.IntN(len(outs))], stateName(g.rng.IntN(n)))
			}
		}
	}
	return b.Build()
}
