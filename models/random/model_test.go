package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/spmm-learner/spmm"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{Seed: 42, Procedures: 3, Internals: 2, Size: 4, Density: 0.5}
	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)
	assert.True(t, spmm.Equivalent(a, b))
	assert.Equal(t, a.Size(), b.Size())
}

func TestGenerateWellFormed(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		sys, err := Generate(Config{Seed: seed, Procedures: 3, Internals: 2, Size: 4})
		require.NoError(t, err)
		assert.True(t, sys.IsComplete())
		assert.Equal(t, 3*(4+2)+3, sys.Size())

		_, err = spmm.NewEquivalenceOracle(sys)
		assert.NoError(t, err, "seed %d", seed)
	}
}

func TestNormalize(t *testing.T) {
	m := Model{}
	assert.Equal(t, "random-0-p3-s4", m.Name())
	assert.Contains(t, m.Description(), "3 procedures")

	sys, err := Generate(Config{Size: 1})
	require.NoError(t, err)
	assert.Equal(t, []spmm.Symbol{"C0", "C1", "C2"}, sys.Calls())
}

func TestRandomLearnable(t *testing.T) {
	for _, h := range []spmm.CounterexampleHandler{spmm.MalerPnueli, spmm.RivestSchapire} {
		t.Run(h.String(), func(t *testing.T) {
			for seed := uint64(1); seed <= 12; seed++ {
				cfg := Config{Seed: seed, Procedures: 2 + int(seed%3), Internals: 2, Size: 3 + int(seed%2)}
				truth, err := Model{Config: cfg}.Build()
				require.NoError(t, err)

				hyp, stats, err := spmm.LearnSystem(truth, spmm.LStarFactory(h))
				require.NoError(t, err, "seed %d", seed)
				assert.True(t, spmm.Equivalent(truth, hyp), "seed %d", seed)
				assert.Equal(t, cfg.Procedures, stats.Procedures, "seed %d", seed)
			}
		})
	}
}
