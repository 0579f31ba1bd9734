package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rfielding/spmm-learner/models/catalog"
	"github.com/rfielding/spmm-learner/spmm"
)

var (
	modelFile    string
	learnHandler string
	learnDot     string
	learnPretty  bool
)

// learnCmd learns a system from a simulated oracle
var learnCmd = &cobra.Command{
	Use:   "learn [model]",
	Short: "Learn a bundled or YAML system and report the counters",
	Long: `Learns the target system from scratch: membership queries are answered
by simulating it and equivalence queries by the counterexample rules over
terminating and access sequences.

Examples:
  spmm learn palindrome
  spmm learn --file examples/balanced.yaml --learner maler-pnueli --pretty`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().StringVarP(&modelFile, "file", "f", "", "YAML system file")
	learnCmd.Flags().StringVar(&learnHandler, "learner", "", "Counterexample handler (maler-pnueli, rivest-schapire)")
	learnCmd.Flags().StringVar(&learnDot, "dot", "", "Write the learned system as Graphviz DOT")
	learnCmd.Flags().BoolVar(&learnPretty, "pretty", false, "Render the report for the terminal")
}

// resolveSpec picks the target from a positional model name or --file.
func resolveSpec(args []string) (spmm.Spec, error) {
	switch {
	case modelFile != "" && len(args) > 0:
		return nil, errors.New("give either a model name or --file, not both")
	case modelFile != "":
		return catalog.Resolve(modelFile)
	case len(args) > 0:
		return catalog.Resolve(args[0])
	}
	return nil, errors.New("no model given (see `spmm models`)")
}

func runLearn(cmd *cobra.Command, args []string) error {
	spec, err := resolveSpec(args)
	if err != nil {
		return err
	}
	handlerName := learnHandler
	if handlerName == "" {
		handlerName = cfg.Learner.Handler
	}
	handler, err := spmm.ParseHandler(handlerName)
	if err != nil {
		return err
	}

	truth, err := spec.Build()
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", spec.Name(), err)
	}

	logger.Info("learning", zap.String("model", spec.Name()), zap.Stringer("handler", handler))
	hyp, stats, err := spmm.LearnSystem(truth, spmm.LStarFactory(handler), spmm.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("learning %s failed: %w", spec.Name(), err)
	}
	equivalent := spmm.Equivalent(truth, hyp)

	if learnDot != "" {
		dot := spmm.Graphviz(hyp, spmm.WithTitle(spec.Name()))
		if err := os.WriteFile(learnDot, []byte(dot), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", learnDot, err)
		}
	}

	report := learnReport(spec, truth, hyp, stats, equivalent, handler.String())
	if err := writeMarkdown(cmd.OutOrStdout(), report, learnPretty); err != nil {
		return err
	}
	if !equivalent {
		return fmt.Errorf("learned system for %s is not equivalent to the target", spec.Name())
	}
	return nil
}
