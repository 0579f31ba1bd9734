package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rfielding/spmm-learner/spmm"
)

var runPlain bool

// runCmd executes a word on a system
var runCmd = &cobra.Command{
	Use:   "run [model] [symbols...]",
	Short: "Run an input word on a system and print the output trace",
	Long: `Symbols may be given as separate arguments or as one compact word
with one character per symbol.

Examples:
  spmm run palindrome P a a R
  spmm run palindrome PTccRR
  spmm run -f examples/balanced.yaml S x B y R R`,
	RunE: runWord,
}

func init() {
	runCmd.Flags().StringVarP(&modelFile, "file", "f", "", "YAML system file")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "Print the output word only")
}

func runWord(cmd *cobra.Command, args []string) error {
	var name []string
	if modelFile == "" && len(args) > 0 {
		name, args = args[:1], args[1:]
	}
	spec, err := resolveSpec(name)
	if err != nil {
		return err
	}
	sys, err := spec.Build()
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", spec.Name(), err)
	}

	word := spmm.ParseWord(strings.Join(args, " "))
	if len(args) == 1 && sys.InputAlphabet().Contains(spmm.Symbol(args[0])) {
		word = spmm.Word{spmm.Symbol(args[0])}
	}
	for _, s := range word {
		if !sys.InputAlphabet().Contains(s) {
			return fmt.Errorf("symbol %q is not in the input alphabet of %s", s, spec.Name())
		}
	}

	out := cmd.OutOrStdout()
	if runPlain {
		_, err := fmt.Fprintln(out, sys.Compute(word))
		return err
	}
	_, err = io.WriteString(out, renderTrace(sys, word))
	return err
}
