package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/rfielding/spmm-learner/spmm"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	inputStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	outputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	postStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
)

// writeMarkdown prints md, through glamour when pretty is set.
func writeMarkdown(w io.Writer, md string, pretty bool) error {
	if !pretty {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// stateTag is a short label of a configuration. Equal tags mark revisits of
// the same call stack.
func stateTag(sys *spmm.System, st spmm.ExecState) string {
	return fmt.Sprintf("%04x", sys.Hash(st)&0xffff)
}

// renderTrace lays out one column per step: input, output, stack depth and
// the configuration reached.
func renderTrace(sys *spmm.System, input spmm.Word) string {
	outs := sys.OutputAlphabet()
	output := sys.Compute(input)
	states := sys.Run(input)

	rows := [4][]string{
		{headerStyle.Render("in")},
		{headerStyle.Render("out")},
		{headerStyle.Render("depth")},
		{headerStyle.Render("state")},
	}
	for i, in := range input {
		o := output[i]
		style := outputStyle
		switch {
		case outs.IsError(o):
			style = errorStyle
		case outs.IsPostReturn(o):
			style = postStyle
		}
		rows[0] = append(rows[0], inputStyle.Render(string(in)))
		rows[1] = append(rows[1], style.Render(string(o)))
		rows[2] = append(rows[2], fmt.Sprint(sys.StackDepth(states[i+1])))
		rows[3] = append(rows[3], postStyle.Render(stateTag(sys, states[i+1])))
	}

	var cols []string
	for i := range rows[0] {
		cols = append(cols, lipgloss.NewStyle().PaddingRight(2).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows[0][i], rows[1][i], rows[2][i], rows[3][i])))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...) + "\n"
}

func learnReport(spec spmm.Spec, truth, hyp *spmm.System, stats spmm.Stats, equivalent bool, handler string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Learned `%s`\n\n", spec.Name()))
	if d := spec.Description(); d != "" {
		sb.WriteString(d + "\n\n")
	}
	verdict := "equivalent to the target"
	if !equivalent {
		verdict = "NOT equivalent to the target"
	}
	sb.WriteString(fmt.Sprintf("- handler: %s\n", handler))
	sb.WriteString(fmt.Sprintf("- run: %s\n", stats.RunID))
	sb.WriteString(fmt.Sprintf("- hypothesis: %s\n", verdict))
	sb.WriteString(fmt.Sprintf("- target: %s\n", spmm.Describe(truth)))
	sb.WriteString(fmt.Sprintf("- learned: %s\n", spmm.Describe(hyp)))
	sb.WriteString(fmt.Sprintf("- elapsed: %s\n\n", stats.Elapsed))

	sb.WriteString("## Counters\n\n")
	mc := stats.Metrics()
	sb.WriteString(mc.GenerateMetricsTable())
	sb.WriteString("\n```mermaid\n")
	sb.WriteString(mc.GenerateMetricsChart("Learning counters", spmm.StatsChartMetrics))
	sb.WriteString("```\n")

	for _, c := range hyp.Calls() {
		sb.WriteString(fmt.Sprintf("\n## Procedure %s\n\n", c))
		sb.WriteString(spmm.GenerateTransitionTable(hyp, c))
	}
	return sb.String()
}
