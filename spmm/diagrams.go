package spmm

import (
	"fmt"
	"strings"
)

// DiagramOption configures diagram generation.
type DiagramOption func(*diagramOptions)

type diagramOptions struct {
	showErrors bool
	title      string
}

// WithErrorEdges also draws transitions into the error sink.
func WithErrorEdges() DiagramOption {
	return func(opts *diagramOptions) {
		opts.showErrors = true
	}
}

// WithTitle sets the graph name.
func WithTitle(title string) DiagramOption {
	return func(opts *diagramOptions) {
		opts.title = title
	}
}

func newDiagramOptions(options []DiagramOption) *diagramOptions {
	opts := &diagramOptions{title: "SPMM"}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

type edge struct {
	from, to int
	labels   []string
}

// procedureEdges groups the visible transitions of p by (from, to).
func procedureEdges(sys *System, p Procedure, opts *diagramOptions) []edge {
	index := make(map[[2]int]int)
	var edges []edge
	for _, w := range StateCover(p, p.Inputs(), nil) {
		s := StateAfter(p, w)
		for _, in := range p.Inputs() {
			next, out, ok := p.Transition(s, in)
			if !ok {
				continue
			}
			if !opts.showErrors && (sys.outputs.IsError(out) || sys.outputs.IsPostReturn(out)) {
				continue
			}
			key := [2]int{s, next}
			i, seen := index[key]
			if !seen {
				i = len(edges)
				index[key] = i
				edges = append(edges, edge{from: s, to: next})
			}
			edges[i].labels = append(edges[i].labels, fmt.Sprintf("%s / %s", in, out))
		}
	}
	return edges
}

// Graphviz renders every procedure of sys as a DOT cluster.
func Graphviz(sys *System, options ...DiagramOption) string {
	opts := newDiagramOptions(options)
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("digraph %q {\n", opts.title))
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=circle];\n")
	sb.WriteString("\n")

	if init, ok := sys.InitialCall(); ok {
		sb.WriteString("  start [shape=point];\n")
		sb.WriteString(fmt.Sprintf("  start -> \"%s_%d\" [label=\"%s\"];\n", init, sys.procedures[init].InitialState(), init))
		sb.WriteString("\n")
	}

	for _, c := range sys.Calls() {
		p := sys.procedures[c]
		shape := "dashed"
		if sys.IsActivated(c) {
			shape = "solid"
		}
		sb.WriteString(fmt.Sprintf("  subgraph \"cluster_%s\" {\n", c))
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", c))
		sb.WriteString(fmt.Sprintf("    style=%s;\n", shape))
		for _, e := range procedureEdges(sys, p, opts) {
			sb.WriteString(fmt.Sprintf("    \"%s_%d\" -> \"%s_%d\" [label=\"%s\"];\n",
				c, e.from, c, e.to, strings.Join(e.labels, "\\n")))
		}
		sb.WriteString("  }\n")
	}

	sb.WriteString("}\n")
	return sb.String()
}

// MermaidProcedure renders one procedure as a Mermaid state diagram.
func MermaidProcedure(sys *System, call Symbol, options ...DiagramOption) string {
	opts := newDiagramOptions(options)
	p, ok := sys.procedures[call]
	if !ok {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	sb.WriteString(fmt.Sprintf("    [*] --> %s%d\n", call, p.InitialState()))
	for _, e := range procedureEdges(sys, p, opts) {
		sb.WriteString(fmt.Sprintf("    %s%d --> %s%d: %s\n",
			call, e.from, call, e.to, strings.Join(e.labels, ", ")))
	}
	return sb.String()
}

// GenerateTransitionTable renders a procedure as a markdown table.
func GenerateTransitionTable(sys *System, call Symbol) string {
	p, ok := sys.procedures[call]
	if !ok {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("| State | Input | Output | Next |\n")
	sb.WriteString("|-------|-------|--------|------|\n")
	for _, w := range StateCover(p, p.Inputs(), nil) {
		s := StateAfter(p, w)
		for _, in := range p.Inputs() {
			next, out, ok := p.Transition(s, in)
			if !ok || sys.outputs.IsError(out) || sys.outputs.IsPostReturn(out) {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %d |\n", s, in, out, next))
		}
	}
	return sb.String()
}
