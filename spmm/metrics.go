package spmm

import (
	"fmt"
	"strings"
	"time"
)

// Metric is one counter of a learning run.
type Metric struct {
	Name  string
	Group string
	Value int64
	Unit  string
	Help  string
}

// MetricsCollector keeps metrics in recording order, so reports list them
// grouped the way they were recorded.
type MetricsCollector struct {
	order []string
	byKey map[string]*Metric
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{byKey: make(map[string]*Metric)}
}

// Record adds value to the metric called name, creating it under group on
// first use. Later calls keep the first group, unit and help text.
func (mc *MetricsCollector) Record(group, name string, value int64, unit, help string) *Metric {
	m, ok := mc.byKey[name]
	if !ok {
		m = &Metric{Name: name, Group: group, Unit: unit, Help: help}
		mc.byKey[name] = m
		mc.order = append(mc.order, name)
	}
	m.Value += value
	return m
}

func (mc *MetricsCollector) Get(name string) (*Metric, bool) {
	m, ok := mc.byKey[name]
	return m, ok
}

// Value is the value of name, zero when it was never recorded.
func (mc *MetricsCollector) Value(name string) int64 {
	if m, ok := mc.byKey[name]; ok {
		return m.Value
	}
	return 0
}

// GenerateMetricsTable renders a markdown table in recording order. The
// group is printed on its first row only.
func (mc *MetricsCollector) GenerateMetricsTable() string {
	var sb strings.Builder
	sb.WriteString("| Group | Metric | Value | Unit | Description |\n")
	sb.WriteString("|-------|--------|-------|------|-------------|\n")
	last := ""
	for _, name := range mc.order {
		m := mc.byKey[name]
		group := ""
		if m.Group != last {
			group, last = m.Group, m.Group
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %s | %s |\n", group, m.Name, m.Value, m.Unit, m.Help)
	}
	return sb.String()
}

// GenerateMetricsChart renders a Mermaid bar chart of the named metrics.
func (mc *MetricsCollector) GenerateMetricsChart(title string, names []string) string {
	labels := make([]string, len(names))
	values := make([]string, len(names))
	for i, name := range names {
		labels[i] = fmt.Sprintf("%q", name)
		values[i] = fmt.Sprint(mc.Value(name))
	}
	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	fmt.Fprintf(&sb, "    title %q\n", title)
	fmt.Fprintf(&sb, "    x-axis [%s]\n", strings.Join(labels, ", "))
	fmt.Fprintf(&sb, "    bar [%s]\n", strings.Join(values, ", "))
	return sb.String()
}

// Stats summarises one learning run.
type Stats struct {
	RunID          string
	Rounds         int
	Refiner        RefinerStats
	Queries        int64
	QuerySymbols   int64
	HypothesisSize int
	Procedures     int
	Elapsed        time.Duration
}

// Metrics converts the run counters into a collector, grouped by the stage
// of the learning loop that produced them.
func (s Stats) Metrics() *MetricsCollector {
	mc := NewMetricsCollector()
	mc.Record("equivalence", "rounds", int64(s.Rounds), "rounds", "Equivalence queries answered with a counterexample")
	mc.Record("equivalence", "counterexamples", int64(s.Refiner.Counterexamples), "words", "Counterexamples that changed the hypothesis or sequences")
	mc.Record("equivalence", "sequence_only_ces", int64(s.Refiner.SequenceOnlyCEs), "words", "Counterexamples that only changed sequences")
	mc.Record("refinement", "global_refinements", int64(s.Refiner.GlobalRefinements), "refinements", "Local refinements triggered by global counterexamples")
	mc.Record("refinement", "local_refinements", int64(s.Refiner.LocalRefinements), "refinements", "Counterexamples accepted by sub-learners")
	mc.Record("refinement", "local_ce_symbols", int64(s.Refiner.LocalCounterexampleSymbols), "symbols", "Summed length of local counterexamples")
	mc.Record("refinement", "ts_conformance_checks", int64(s.Refiner.TSConformanceChecks), "checks", "Terminating sequence replays")
	mc.Record("queries", "membership_queries", s.Queries, "queries", "Global membership queries")
	mc.Record("queries", "query_symbols", s.QuerySymbols, "symbols", "Symbols in global membership queries")
	mc.Record("result", "hypothesis_size", int64(s.HypothesisSize), "states", "States of the final hypothesis")
	mc.Record("result", "procedures", int64(s.Procedures), "procedures", "Procedures in the final hypothesis")
	return mc
}

// StatsChartMetrics are the counters worth plotting side by side.
var StatsChartMetrics = []string{"rounds", "counterexamples", "local_refinements", "ts_conformance_checks"}
