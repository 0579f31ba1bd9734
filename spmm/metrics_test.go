package spmm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	mc := NewMetricsCollector()
	c := mc.Record("loop", "rounds", 1, "rounds", "Rounds")
	assert.Same(t, c, mc.Record("other", "rounds", 2, "ignored", "ignored"))
	assert.Equal(t, "loop", c.Group)
	assert.Equal(t, int64(3), mc.Value("rounds"))
	assert.Zero(t, mc.Value("missing"))
	_, ok := mc.Get("missing")
	assert.False(t, ok)

	mc.Record("loop", "b_second", 1, "x", "Second")
	mc.Record("end", "a_third", 7, "y", "Third")

	lines := strings.Split(strings.TrimSpace(mc.GenerateMetricsTable()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{
		"| loop | rounds | 3 | rounds | Rounds |",
		"|  | b_second | 1 | x | Second |",
		"| end | a_third | 7 | y | Third |",
	}, lines[2:])

	chart := mc.GenerateMetricsChart("Counters", []string{"rounds", "missing"})
	assert.Contains(t, chart, "xychart-beta")
	assert.Contains(t, chart, `title "Counters"`)
	assert.Contains(t, chart, `x-axis ["rounds", "missing"]`)
	assert.Contains(t, chart, "bar [3, 0]")
}

func TestStatsMetrics(t *testing.T) {
	s := Stats{
		Rounds:  4,
		Refiner: RefinerStats{Counterexamples: 3, LocalRefinements: 5},
		Queries: 120,
	}
	mc := s.Metrics()
	for name, want := range map[string]int64{
		"rounds":             4,
		"counterexamples":    3,
		"local_refinements":  5,
		"membership_queries": 120,
		"procedures":         0,
	} {
		m, ok := mc.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, want, m.Value, name)
	}
	for _, name := range StatsChartMetrics {
		_, ok := mc.Get(name)
		assert.True(t, ok, name)
	}

	table := mc.GenerateMetricsTable()
	assert.Less(t, strings.Index(table, "rounds"), strings.Index(table, "membership_queries"))
}
