package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rfielding/spmm-learner/internal/config"
	"github.com/rfielding/spmm-learner/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spmm",
	Short: "Active learning of systems of procedural Mealy machines",
	Long: `spmm learns systems of procedural Mealy machines (SPMMs) from a
simulated oracle. Each procedure is learned by its own L* instance; global
counterexamples are decomposed into local ones by expansion and projection.

Bundled systems are listed by "spmm models"; YAML system files are accepted
wherever a model name is.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "spmm.yaml", "Configuration file")

	rootCmd.AddCommand(learnCmd, runCmd, showCmd, modelsCmd, benchCmd, scaffoldCmd, docsCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
