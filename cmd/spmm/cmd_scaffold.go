package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rfielding/spmm-learner/spmm"
)

var (
	scaffoldDir   string
	scaffoldForce bool
)

// scaffoldCmd writes a YAML system skeleton
var scaffoldCmd = &cobra.Command{
	Use:   "scaffold [name]",
	Short: "Write a YAML system skeleton to edit",
	Long: `Produces <dir>/<name>.yaml: one procedure that reads a single internal
symbol and returns. Extend the alphabets and transitions, then check it
with "spmm show -f" and "spmm learn -f".`,
	Args: cobra.ExactArgs(1),
	RunE: runScaffold,
}

func init() {
	scaffoldCmd.Flags().StringVar(&scaffoldDir, "dir", "examples", "Directory for the new file")
	scaffoldCmd.Flags().BoolVar(&scaffoldForce, "force", false, "Overwrite an existing file")
}

func skeleton(name string) *spmm.SystemFile {
	return &spmm.SystemFile{
		Name:        name,
		Description: "Describe the procedures of " + name + ".",
		Internals:   []string{"a"},
		Calls:       []string{"M"},
		Return:      "R",
		Outputs: spmm.OutputsFile{
			Internals:  []string{"a"},
			Start:      "start",
			End:        "end",
			Error:      "error",
			PostReturn: "post",
		},
		Initial: "M",
		Procedures: map[string]spmm.ProcedureFile{
			"M": {
				Initial: "m0",
				Transitions: []spmm.TransitionFile{
					{From: "m0", On: "a", Out: "a", To: "m1"},
				},
				Returns: []string{"m1"},
			},
		},
		Examples: []spmm.ExampleWord{
			{Input: "M a R", Output: "start a end"},
		},
	}
}

func runScaffold(cmd *cobra.Command, args []string) error {
	name := args[0]
	path := filepath.Join(scaffoldDir, name+".yaml")
	if _, err := os.Stat(path); err == nil && !scaffoldForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	f := skeleton(name)
	if _, err := f.Build(); err != nil {
		return fmt.Errorf("skeleton does not build: %w", err)
	}
	data, err := spmm.EncodeSystemFile(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(scaffoldDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", scaffoldDir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Created:", path)
	return nil
}
