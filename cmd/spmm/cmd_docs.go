package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rfielding/spmm-learner/models/catalog"
	"github.com/rfielding/spmm-learner/spmm"
)

var (
	docsOut   string
	serveAddr string
	serveDir  string
)

// docsCmd writes one markdown page per bundled system
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate markdown documentation for the bundled systems",
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

// serveCmd serves the generated documentation
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated documentation over HTTP",
	Long: `Serves the docs directory at /docs/, a health check at /healthz and
the bundled system list as JSON at /api/models. The address can also be set
with SPMM_HTTP_ADDR.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	docsCmd.Flags().StringVar(&docsOut, "out", filepath.Join("docs", "models"), "Output directory")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDir, "dir", "docs", "Directory to serve")
}

// modelPage documents one system.
func modelPage(spec spmm.Spec) (string, error) {
	sys, err := spec.Build()
	if err != nil {
		return "", err
	}
	eq, err := spmm.NewEquivalenceOracle(sys)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", spec.Name()))
	sb.WriteString(spec.Description() + "\n\n")
	sb.WriteString(fmt.Sprintf("`%s`\n\n", spmm.Describe(sys)))

	if ex, ok := spec.(spmm.ExampleProvider); ok && len(ex.Examples()) > 0 {
		sb.WriteString("## Sample runs\n\n")
		sb.WriteString("| Input | Output |\n")
		sb.WriteString("|-------|--------|\n")
		for _, w := range ex.Examples() {
			out := sys.Compute(spmm.ParseWord(w.Input))
			sb.WriteString(fmt.Sprintf("| `%s` | `%s` |\n", w.Input, out))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Sequences\n\n")
	sb.WriteString("| Procedure | Access sequence | Terminating sequence |\n")
	sb.WriteString("|-----------|-----------------|----------------------|\n")
	for _, c := range sys.Calls() {
		sb.WriteString(fmt.Sprintf("| %s | `%s` | `%s` |\n", c, eq.AccessSequence(c), eq.TerminatingSequence(c)))
	}

	for _, c := range sys.Calls() {
		sb.WriteString(fmt.Sprintf("\n## Procedure %s\n\n", c))
		sb.WriteString(spmm.GenerateTransitionTable(sys, c))
		sb.WriteString("\n```mermaid\n")
		sb.WriteString(spmm.MermaidProcedure(sys, c))
		sb.WriteString("```\n")
	}
	return sb.String(), nil
}

func runDocs(cmd *cobra.Command, args []string) error {
	specs, err := catalog.All()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(docsOut, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", docsOut, err)
	}

	var index strings.Builder
	index.WriteString("# Bundled systems\n\n")
	for _, s := range specs {
		page, err := modelPage(s)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
		file := filepath.Join(docsOut, s.Name()+".md")
		if err := os.WriteFile(file, []byte(page), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		index.WriteString(fmt.Sprintf("- [%s](%s.md): %s\n", s.Name(), s.Name(), s.Description()))
		fmt.Fprintln(cmd.OutOrStdout(), "Created:", file)
	}
	file := filepath.Join(docsOut, "README.md")
	if err := os.WriteFile(file, []byte(index.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Created:", file)
	return nil
}

type modelInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Procedures  []string `json:"procedures"`
	Size        int      `json:"size"`
}

func newDocsMux(dir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/docs/", http.StripPrefix("/docs/", http.FileServer(http.Dir(dir))))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/api/models", modelsHandler)
	return mux
}

func modelsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	specs, err := catalog.All()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	infos := make([]modelInfo, 0, len(specs))
	for _, s := range specs {
		sys, err := s.Build()
		if err != nil {
			http.Error(w, fmt.Sprintf("%s: %v", s.Name(), err), http.StatusInternalServerError)
			return
		}
		info := modelInfo{Name: s.Name(), Description: s.Description(), Size: sys.Size()}
		for _, c := range sys.Calls() {
			info.Procedures = append(info.Procedures, string(c))
		}
		infos = append(infos, info)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(infos)
}

func runServe(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(serveDir); err != nil {
		return fmt.Errorf("docs directory %q not found (run `spmm docs` first): %w", serveDir, err)
	}
	addr := serveAddr
	if v := os.Getenv("SPMM_HTTP_ADDR"); v != "" {
		addr = v
	}
	logger.Info("serving docs", zap.String("addr", addr), zap.String("dir", serveDir))
	return http.ListenAndServe(addr, newDocsMux(serveDir))
}
