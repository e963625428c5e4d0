// Package testutil provides deterministic objective functions shared by
// optimizer tests.
package testutil

import (
	"context"
	"sync"

	"github.com/eagleopt/eagle/pkg/core"
)

// ShiftedSphere returns a batched objective whose global maximum of zero is
// at the shift point: f(x) = -sum((x - shift)^2).
func ShiftedSphere(shift []float64) core.BatchObjective {
	return func(ctx context.Context, features [][]float64) ([]float64, error) {
		rewards := make([]float64, len(features))
		for i, row := range features {
			var sum float64
			for d, x := range row {
				diff := x - shift[d]
				sum += diff * diff
			}
			rewards[i] = -sum
		}
		return rewards, nil
	}
}

// CountingObjective wraps an objective and counts how many individual
// evaluations (rows) it has performed.
type CountingObjective struct {
	mu    sync.Mutex
	inner core.BatchObjective
	count int
	sizes []int
}

func NewCountingObjective(inner core.BatchObjective) *CountingObjective {
	return &CountingObjective{inner: inner}
}

func (c *CountingObjective) Objective(ctx context.Context, features [][]float64) ([]float64, error) {
	c.mu.Lock()
	c.count += len(features)
	c.sizes = append(c.sizes, len(features))
	c.mu.Unlock()
	return c.inner(ctx, features)
}

// Count returns the total number of rows evaluated.
func (c *CountingObjective) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// BatchSizes returns the size of each batch seen, in order.
func (c *CountingObjective) BatchSizes() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.sizes...)
}
