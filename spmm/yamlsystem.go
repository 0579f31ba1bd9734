package spmm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SystemFile is the YAML description of a procedural system. Missing
// transitions go to an error sink; every procedure is activated.
type SystemFile struct {
	Name        string                   `yaml:"name"`
	Description string                   `yaml:"description,omitempty"`
	Internals   []string                 `yaml:"internals"`
	Calls       []string                 `yaml:"calls"`
	Return      string                   `yaml:"return"`
	Outputs     OutputsFile              `yaml:"outputs"`
	Initial     string                   `yaml:"initial"`
	Procedures  map[string]ProcedureFile `yaml:"procedures"`
	Examples    []ExampleWord            `yaml:"examples,omitempty"`
}

type OutputsFile struct {
	Internals  []string `yaml:"internals"`
	Start      string   `yaml:"start"`
	End        string   `yaml:"end"`
	Error      string   `yaml:"error"`
	PostReturn string   `yaml:"post_return"`
}

type ProcedureFile struct {
	Initial     string           `yaml:"initial"`
	Transitions []TransitionFile `yaml:"transitions"`
	Returns     []string         `yaml:"returns,omitempty"`
}

type TransitionFile struct {
	From string `yaml:"from"`
	On   string `yaml:"on"`
	Out  string `yaml:"out"`
	To   string `yaml:"to"`
}

// ParseSystemYAML decodes a system file.
func ParseSystemYAML(data []byte) (*SystemFile, error) {
	var f SystemFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse system file: %w", err)
	}
	if f.Name == "" {
		f.Name = "unnamed"
	}
	return &f, nil
}

// LoadSystemFile reads and decodes a system file.
func LoadSystemFile(path string) (*SystemFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system file: %w", err)
	}
	return ParseSystemYAML(data)
}

func toSymbols(in []string) []Symbol {
	out := make([]Symbol, len(in))
	for i, s := range in {
		out[i] = Symbol(s)
	}
	return out
}

func toOutputs(in []string) []Output {
	out := make([]Output, len(in))
	for i, s := range in {
		out[i] = Output(s)
	}
	return out
}

// Alphabets builds the input and output alphabets of the file.
func (f *SystemFile) Alphabets() (*InputAlphabet, *OutputAlphabet, error) {
	inputs, err := NewInputAlphabet(toSymbols(f.Internals), toSymbols(f.Calls), Symbol(f.Return))
	if err != nil {
		return nil, nil, err
	}
	outs, err := NewOutputAlphabet(toOutputs(f.Outputs.Internals), Output(f.Outputs.Start),
		Output(f.Outputs.End), Output(f.Outputs.Error), Output(f.Outputs.PostReturn))
	if err != nil {
		return nil, nil, err
	}
	return inputs, outs, nil
}

// Build constructs the fully activated system described by the file.
func (f *SystemFile) Build() (*System, error) {
	inputs, outs, err := f.Alphabets()
	if err != nil {
		return nil, err
	}
	procs := make(map[Symbol]Procedure, len(f.Procedures))
	for name, pf := range f.Procedures {
		b := NewProcedureBuilder(inputs, outs).Initial(pf.Initial)
		for _, t := range pf.Transitions {
			b.On(t.From, Symbol(t.On), Output(t.Out), t.To)
		}
		for _, r := range pf.Returns {
			b.Return(r)
		}
		p, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("procedure %s: %w", name, err)
		}
		procs[Symbol(name)] = p
	}
	return NewFullyActivatedSystem(inputs, outs, Symbol(f.Initial), procs)
}

// YAMLSpec adapts a SystemFile to the Spec interface.
type YAMLSpec struct {
	File *SystemFile
}

func (s YAMLSpec) Name() string            { return s.File.Name }
func (s YAMLSpec) Description() string     { return s.File.Description }
func (s YAMLSpec) Build() (*System, error) { return s.File.Build() }
func (s YAMLSpec) Examples() []ExampleWord { return s.File.Examples }

// ToSystemFile describes sys in the YAML format. Transitions into the error
// and post-return sinks are left implicit.
func ToSystemFile(sys *System, name string) *SystemFile {
	in, out := sys.inputs, sys.outputs
	f := &SystemFile{
		Name:       name,
		Return:     string(in.ret),
		Procedures: make(map[string]ProcedureFile),
		Outputs: OutputsFile{
			Start:      string(out.start),
			End:        string(out.end),
			Error:      string(out.err),
			PostReturn: string(out.postReturn),
		},
	}
	for _, s := range in.internals {
		f.Internals = append(f.Internals, string(s))
	}
	for _, s := range in.calls {
		f.Calls = append(f.Calls, string(s))
	}
	for _, o := range out.internals {
		f.Outputs.Internals = append(f.Outputs.Internals, string(o))
	}
	if init, ok := sys.InitialCall(); ok {
		f.Initial = string(init)
	}
	for _, c := range sys.Calls() {
		p := sys.procedures[c]
		pf := ProcedureFile{Initial: stateName(p.InitialState())}
		for _, w := range StateCover(p, p.Inputs(), nil) {
			s := StateAfter(p, w)
			for _, sym := range p.Inputs() {
				next, o, ok := p.Transition(s, sym)
				if !ok || out.IsError(o) || out.IsPostReturn(o) {
					continue
				}
				if in.IsReturn(sym) && out.IsEnd(o) {
					pf.Returns = append(pf.Returns, stateName(s))
					continue
				}
				pf.Transitions = append(pf.Transitions, TransitionFile{
					From: stateName(s), On: string(sym), Out: string(o), To: stateName(next),
				})
			}
		}
		f.Procedures[string(c)] = pf
	}
	return f
}

func stateName(s int) string { return fmt.Sprintf("s%d", s) }

// EncodeSystemFile encodes f in the YAML format.
func EncodeSystemFile(f *SystemFile) ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode system file: %w", err)
	}
	return data, nil
}

// MarshalSystemYAML encodes sys in the YAML format.
func MarshalSystemYAML(sys *System, name string) ([]byte, error) {
	return EncodeSystemFile(ToSystemFile(sys, name))
}
