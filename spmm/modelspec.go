package spmm

// Spec is the small API that model packages implement.
type Spec interface {
	Name() string
	Description() string
	Build() (*System, error)
}

// ExampleWord is a word worth showing for a model, with its expected output.
type ExampleWord struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// ExampleProvider is optionally implemented by a Spec to document sample runs.
type ExampleProvider interface {
	Examples() []ExampleWord
}
