// Package evaluation adapts per-point objective functions to the batched
// contract the optimizer drives.
package evaluation

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/eagleopt/eagle/pkg/core"
	"github.com/eagleopt/eagle/pkg/errors"
)

// PointObjective evaluates a single feature vector. Higher is better.
type PointObjective func(ctx context.Context, features []float64) (float64, error)

// ParallelEvaluator turns a PointObjective into a core.BatchObjective that
// evaluates the rows of each batch concurrently with a bounded goroutine
// pool. Results stay index-aligned with the input; the batch remains the
// vectorization unit the optimizer sees.
type ParallelEvaluator struct {
	objective     PointObjective
	maxGoroutines int
}

// ParallelEvaluatorOption defines functional options for ParallelEvaluator.
type ParallelEvaluatorOption func(*ParallelEvaluator)

// WithMaxGoroutines bounds the number of concurrent evaluations.
func WithMaxGoroutines(n int) ParallelEvaluatorOption {
	return func(e *ParallelEvaluator) {
		e.maxGoroutines = n
	}
}

// NewParallelEvaluator creates an evaluator around the given objective.
func NewParallelEvaluator(objective PointObjective, opts ...ParallelEvaluatorOption) (*ParallelEvaluator, error) {
	if objective == nil {
		return nil, errors.New(errors.InvalidInput, "point objective is required")
	}
	e := &ParallelEvaluator{
		objective:     objective,
		maxGoroutines: 10,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxGoroutines < 1 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "max goroutines must be positive"),
			errors.Fields{"max_goroutines": e.maxGoroutines})
	}
	return e, nil
}

// Batch returns the core.BatchObjective view of the evaluator.
func (e *ParallelEvaluator) Batch() core.BatchObjective {
	return e.Evaluate
}

// Evaluate runs the objective over every row of the batch and returns the
// index-aligned rewards. The first row error is reported; remaining rows
// still run to completion.
func (e *ParallelEvaluator) Evaluate(ctx context.Context, features [][]float64) ([]float64, error) {
	rewards := make([]float64, len(features))

	var mu sync.Mutex
	var firstErr error

	p := pool.New().WithMaxGoroutines(e.maxGoroutines)
	for i, row := range features {
		i, row := i, row
		p.Go(func() {
			reward, err := e.objective(ctx, row)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = errors.WithFields(
						errors.Wrap(err, errors.EvaluationFailed, "point evaluation failed"),
						errors.Fields{"row": i})
				}
				mu.Unlock()
				return
			}
			rewards[i] = reward
		})
	}
	p.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return rewards, nil
}

// Serial returns a core.BatchObjective that evaluates rows one at a time in
// order, for objectives that are not safe to call concurrently.
func Serial(objective PointObjective) core.BatchObjective {
	return func(ctx context.Context, features [][]float64) ([]float64, error) {
		rewards := make([]float64, len(features))
		for i, row := range features {
			reward, err := objective(ctx, row)
			if err != nil {
				return nil, errors.WithFields(
					errors.Wrap(err, errors.EvaluationFailed, "point evaluation failed"),
					errors.Fields{"row": i})
			}
			rewards[i] = reward
		}
		return rewards, nil
	}
}
