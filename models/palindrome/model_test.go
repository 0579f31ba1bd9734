package palindrome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/spmm-learner/spmm"
)

func TestModelExamples(t *testing.T) {
	sys, err := Model{}.Build()
	require.NoError(t, err)

	for _, ex := range (Model{}).Examples() {
		got := sys.Compute(spmm.ParseWord(ex.Input))
		assert.Equal(t, ex.Output, got.String(), "input %s", ex.Input)
	}
}

func TestModelRejects(t *testing.T) {
	sys, err := Model{}.Build()
	require.NoError(t, err)

	assert.Empty(t, sys.Compute(nil))
	assert.Equal(t, "error error", sys.Compute(spmm.ParseWord("aR")).String())
	assert.Equal(t, "error error", sys.Compute(spmm.ParseWord("Tc")).String())
	assert.Equal(t, "open open c error error", sys.Compute(spmm.ParseWord("PTcRR")).String())
}

func TestModelSize(t *testing.T) {
	sys, err := Model{}.Build()
	require.NoError(t, err)
	assert.Equal(t, []spmm.Symbol{"P", "T"}, sys.Calls())
	assert.True(t, sys.IsComplete())
	// P: 6 states, T: 4 states, each with two sinks, plus three global states.
	assert.Equal(t, 8+6+3, sys.Size())
}

func TestModelLearnable(t *testing.T) {
	truth, err := Model{}.Build()
	require.NoError(t, err)

	for _, h := range []spmm.CounterexampleHandler{spmm.MalerPnueli, spmm.RivestSchapire} {
		t.Run(h.String(), func(t *testing.T) {
			hyp, stats, err := spmm.LearnSystem(truth, spmm.LStarFactory(h))
			require.NoError(t, err)
			assert.True(t, spmm.Equivalent(truth, hyp))
			assert.Equal(t, 2, stats.Procedures)
			assert.Positive(t, stats.Queries)
		})
	}
}
