package optimizers

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eagleopt/eagle/internal/testutil"
	"github.com/eagleopt/eagle/pkg/core"
)

// randomSearchBest runs the null hypothesis: the best reward uniform random
// sampling achieves with the same evaluation budget.
func randomSearchBest(t *testing.T, bounds core.Bounds, objective core.BatchObjective, evaluations int, seed int64) float64 {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	samples := make([][]float64, evaluations)
	for i := range samples {
		samples[i] = bounds.Sample(rng)
	}
	rewards, err := objective(context.Background(), samples)
	require.NoError(t, err)

	best := rewards[0]
	for _, r := range rewards[1:] {
		if r > best {
			best = r
		}
	}
	return best
}

// TestEagleBeatsRandomSearch checks convergence on a shifted sphere: across
// seeded runs the eagle strategy must land closer to the optimum than a
// random search with the identical budget (the chance baseline).
func TestEagleBeatsRandomSearch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping convergence test in short mode")
	}

	const (
		nFeatures   = 2
		evaluations = 3000
	)
	shift := []float64{0.5, -0.3}
	objective := testutil.ShiftedSphere(shift)

	problem := &core.ProblemStatement{Name: "sphere"}
	for i := 0; i < nFeatures; i++ {
		problem.AddFloatParameter("x", -1, 1)
	}
	bounds, err := problem.Bounds()
	require.NoError(t, err)

	seeds := []int64{1, 7, 42}
	wins := 0
	for _, seed := range seeds {
		factory := VectorizedEagleStrategyFactory{
			Config: EagleConfig{PoolSize: 20, BatchSize: 10, Seed: seed},
		}
		optimizer := NewVectorizedOptimizer(factory, WithMaxEvaluations(evaluations))
		require.NoError(t, optimizer.Optimize(context.Background(), problem, objective))

		assert.Equal(t, evaluations, optimizer.Evaluations(), "budget is exact")
		require.NotNil(t, optimizer.BestParameters())

		baseline := randomSearchBest(t, bounds, objective, evaluations, seed)
		if optimizer.BestReward() > baseline {
			wins++
		}

		// The optimum is at reward zero; anything below this is worse than
		// chance for this budget by a wide margin.
		assert.Greater(t, optimizer.BestReward(), -0.01,
			"seed %d: best reward %v too far from the optimum", seed, optimizer.BestReward())
	}

	assert.GreaterOrEqual(t, wins, 2, "eagle beat random search in %d/%d seeded runs", wins, len(seeds))
}
