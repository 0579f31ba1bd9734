package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rfielding/spmm-learner/models/catalog"
	"github.com/rfielding/spmm-learner/spmm"
)

var (
	showFormat string
	showErrors bool
)

// showCmd renders a target system
var showCmd = &cobra.Command{
	Use:   "show [model]",
	Short: "Render a system as Graphviz DOT, Mermaid or YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

// modelsCmd lists bundled systems
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the bundled systems",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	showCmd.Flags().StringVarP(&modelFile, "file", "f", "", "YAML system file")
	showCmd.Flags().StringVar(&showFormat, "format", "dot", "Output format (dot, mermaid, yaml)")
	showCmd.Flags().BoolVar(&showErrors, "errors", false, "Include transitions into the error and post-return sinks")
}

func runShow(cmd *cobra.Command, args []string) error {
	spec, err := resolveSpec(args)
	if err != nil {
		return err
	}
	sys, err := spec.Build()
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", spec.Name(), err)
	}

	opts := []spmm.DiagramOption{spmm.WithTitle(spec.Name())}
	if showErrors {
		opts = append(opts, spmm.WithErrorEdges())
	}

	out := cmd.OutOrStdout()
	switch showFormat {
	case "dot":
		_, err = io.WriteString(out, spmm.Graphviz(sys, opts...))
	case "mermaid":
		var sb strings.Builder
		for _, c := range sys.Calls() {
			sb.WriteString(fmt.Sprintf("%%%% procedure %s\n", c))
			sb.WriteString(spmm.MermaidProcedure(sys, c, opts...))
			sb.WriteString("\n")
		}
		_, err = io.WriteString(out, sb.String())
	case "yaml":
		var data []byte
		data, err = spmm.MarshalSystemYAML(sys, spec.Name())
		if err == nil {
			_, err = out.Write(data)
		}
	default:
		return fmt.Errorf("unknown format %q (dot, mermaid, yaml)", showFormat)
	}
	return err
}

func runModels(cmd *cobra.Command, args []string) error {
	specs, err := catalog.All()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range specs {
		sys, err := s.Build()
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", s.Name(), err)
		}
		fmt.Fprintf(out, "%-16s %-40s %s\n", s.Name(), spmm.Describe(sys), s.Description())
	}
	return nil
}
