package optimizers

import (
	"context"
	"math"

	"github.com/eagleopt/eagle/pkg/core"
	"github.com/eagleopt/eagle/pkg/errors"
	"github.com/eagleopt/eagle/pkg/logging"
)

// VectorizedStrategy is the contract between the optimizer driver and a
// batched suggestion strategy. Every Suggest must be resolved by exactly one
// Update before the next Suggest.
type VectorizedStrategy interface {
	// Suggest returns up to batchSize candidate feature vectors drawn from
	// distinct pool members.
	Suggest(batchSize int) ([][]float64, error)
	// Update feeds the evaluation results of the last suggested batch back
	// into the strategy.
	Update(batchMetrics []float64) error
	// BatchSize returns the strategy's preferred batch size.
	BatchSize() int
	// NumFeatures returns the dimensionality the strategy operates on.
	NumFeatures() int
}

// StrategyFactory binds a strategy configuration to a concrete problem's
// dimensionality and bounds.
type StrategyFactory interface {
	NewStrategy(problem *core.ProblemStatement) (VectorizedStrategy, error)
}

// VectorizedEagleStrategyFactory creates eagle strategies sized to a
// problem. The zero value uses the default configuration.
type VectorizedEagleStrategyFactory struct {
	Config EagleConfig
}

// NewStrategy flattens the problem's search space into bounds and builds an
// eagle strategy over them. When visibility is unset it defaults
// dimension-aware (10/n): squared distances grow with dimensionality, so
// the kernel's reach is kept roughly constant across problem sizes.
func (f VectorizedEagleStrategyFactory) NewStrategy(problem *core.ProblemStatement) (VectorizedStrategy, error) {
	bounds, err := problem.Bounds()
	if err != nil {
		return nil, err
	}
	config := f.Config
	if config.Visibility == 0 {
		config.Visibility = 10.0 / float64(bounds.NumFeatures())
	}
	return NewVectorizedEagleStrategy(config, bounds)
}

// Recorder receives every evaluated batch, e.g. to persist trial history.
type Recorder interface {
	RecordBatch(ctx context.Context, features [][]float64, rewards []float64, batch, evaluated int) error
}

// VectorizedOptimizer drives a strategy to convergence under a hard
// evaluation budget: suggest a batch, evaluate the caller's objective over
// it, feed the results back, track the best point seen. The final batch is
// truncated so exactly MaxEvaluations objective evaluations are performed.
type VectorizedOptimizer struct {
	factory        StrategyFactory
	maxEvaluations int
	recorder       Recorder
	logger         *logging.Logger

	evaluations int
	bestParams  []float64
	bestReward  float64
}

// VectorizedOptimizerOption defines functional options for the optimizer.
type VectorizedOptimizerOption func(*VectorizedOptimizer)

// WithMaxEvaluations sets the evaluation budget.
func WithMaxEvaluations(n int) VectorizedOptimizerOption {
	return func(o *VectorizedOptimizer) {
		o.maxEvaluations = n
	}
}

// WithRecorder attaches a trial recorder invoked after every batch.
func WithRecorder(r Recorder) VectorizedOptimizerOption {
	return func(o *VectorizedOptimizer) {
		o.recorder = r
	}
}

// NewVectorizedOptimizer creates an optimizer driving strategies produced by
// the given factory.
func NewVectorizedOptimizer(factory StrategyFactory, opts ...VectorizedOptimizerOption) *VectorizedOptimizer {
	o := &VectorizedOptimizer{
		factory:        factory,
		maxEvaluations: 1000,
		logger:         logging.GetLogger(),
		bestReward:     math.Inf(-1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize runs the suggest/evaluate/update loop against the caller-supplied
// objective until the evaluation budget is exhausted. The best point found
// is available through BestParameters and BestReward afterwards.
//
// Each iteration is synchronous; the context is only checked between
// iterations, so cancellation takes effect at the next batch boundary.
func (o *VectorizedOptimizer) Optimize(ctx context.Context, problem *core.ProblemStatement, objective core.BatchObjective) error {
	if objective == nil {
		return errors.New(errors.InvalidInput, "objective function is required")
	}
	if o.maxEvaluations < 1 {
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "evaluation budget must be positive"),
			errors.Fields{"max_evaluations": o.maxEvaluations})
	}

	strategy, err := o.factory.NewStrategy(problem)
	if err != nil {
		return err
	}

	o.evaluations = 0
	o.bestParams = nil
	o.bestReward = math.Inf(-1)

	o.logger.Info(ctx, "starting optimization: n_features=%d, budget=%d, batch_size=%d",
		strategy.NumFeatures(), o.maxEvaluations, strategy.BatchSize())

	batch := 0
	for o.evaluations < o.maxEvaluations {
		if err := errors.CheckContext(ctx, "optimize"); err != nil {
			return err
		}

		size := strategy.BatchSize()
		if remaining := o.maxEvaluations - o.evaluations; size > remaining {
			size = remaining
		}

		candidates, err := strategy.Suggest(size)
		if err != nil {
			return err
		}

		rewards, err := objective(ctx, candidates)
		if err != nil {
			return errors.Wrap(err, errors.EvaluationFailed, "objective evaluation failed")
		}
		if len(rewards) != len(candidates) {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "objective returned mismatched result count"),
				errors.Fields{"got": len(rewards), "want": len(candidates)})
		}

		if err := strategy.Update(rewards); err != nil {
			return err
		}
		o.evaluations += len(candidates)

		// Strict improvement only: ties keep the earlier best, and NaN
		// rewards never win.
		for k, reward := range rewards {
			if reward > o.bestReward {
				o.bestReward = reward
				o.bestParams = core.CopyVector(candidates[k])
			}
		}

		if o.recorder != nil {
			if err := o.recorder.RecordBatch(ctx, candidates, rewards, batch, o.evaluations); err != nil {
				return errors.Wrap(err, errors.StorageFailed, "recording batch failed")
			}
		}

		o.logger.Debug(ctx, "batch %d done: evaluations=%d/%d, best=%v",
			batch, o.evaluations, o.maxEvaluations, o.bestReward)
		batch++
	}

	o.logger.Info(ctx, "optimization finished: evaluations=%d, best_reward=%v", o.evaluations, o.bestReward)
	return nil
}

// BestParameters returns a copy of the best feature vector found, or nil if
// no evaluation has completed.
func (o *VectorizedOptimizer) BestParameters() []float64 {
	if o.bestParams == nil {
		return nil
	}
	return core.CopyVector(o.bestParams)
}

// BestReward returns the best objective value found; -Inf before the first
// completed evaluation.
func (o *VectorizedOptimizer) BestReward() float64 {
	return o.bestReward
}

// Evaluations returns the number of objective evaluations performed.
func (o *VectorizedOptimizer) Evaluations() int {
	return o.evaluations
}
