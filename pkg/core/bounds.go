package core

import (
	"math/rand"

	"github.com/eagleopt/eagle/pkg/errors"
)

// Bounds holds per-dimension lower and upper limits of the feature space.
// Both slices have the same length and Low[i] < High[i] for every i.
// A Bounds value is immutable for the lifetime of the strategy using it.
type Bounds struct {
	Low  []float64
	High []float64
}

// NewBounds builds bounds from per-dimension limits.
func NewBounds(low, high []float64) (Bounds, error) {
	b := Bounds{Low: low, High: high}
	if err := b.Validate(); err != nil {
		return Bounds{}, err
	}
	return b, nil
}

// NewUniformBounds builds bounds with the same scalar limits in every
// dimension.
func NewUniformBounds(low, high float64, nFeatures int) (Bounds, error) {
	if nFeatures <= 0 {
		return Bounds{}, errors.WithFields(
			errors.New(errors.InvalidConfig, "number of features must be positive"),
			errors.Fields{"n_features": nFeatures},
		)
	}
	lows := make([]float64, nFeatures)
	highs := make([]float64, nFeatures)
	for i := range lows {
		lows[i] = low
		highs[i] = high
	}
	return NewBounds(lows, highs)
}

// Validate checks the bounds invariants.
func (b Bounds) Validate() error {
	if len(b.Low) == 0 || len(b.Low) != len(b.High) {
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "bounds must be non-empty and of equal length"),
			errors.Fields{"low_len": len(b.Low), "high_len": len(b.High)},
		)
	}
	for i := range b.Low {
		if b.Low[i] >= b.High[i] {
			return errors.WithFields(
				errors.New(errors.InvalidConfig, "lower bound must be strictly below upper bound"),
				errors.Fields{"dimension": i, "low": b.Low[i], "high": b.High[i]},
			)
		}
	}
	return nil
}

// NumFeatures returns the dimensionality of the bounded space.
func (b Bounds) NumFeatures() int {
	return len(b.Low)
}

// Clip clamps v in place to the bounds and returns it.
func (b Bounds) Clip(v []float64) []float64 {
	for i := range v {
		if v[i] < b.Low[i] {
			v[i] = b.Low[i]
		} else if v[i] > b.High[i] {
			v[i] = b.High[i]
		}
	}
	return v
}

// Sample draws a uniform random point within the bounds using rng.
func (b Bounds) Sample(rng *rand.Rand) []float64 {
	v := make([]float64, len(b.Low))
	for i := range v {
		v[i] = b.Low[i] + rng.Float64()*(b.High[i]-b.Low[i])
	}
	return v
}
