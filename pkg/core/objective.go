package core

import "context"

// BatchObjective is the caller-supplied objective function contract. It
// receives a whole batch of candidate feature vectors (one row per
// candidate) and returns one scalar reward per row, index-aligned with the
// input. Higher values are better; the optimizer maximizes.
//
// The function may be deterministic or stochastic. It must be total over
// the bounded feature space: failures are reported through the error
// return, never by panicking.
type BatchObjective func(ctx context.Context, features [][]float64) ([]float64, error)

// Trial records one evaluated candidate: the feature vector that was
// suggested and the reward the objective assigned to it.
type Trial struct {
	Features  []float64
	Reward    float64
	Batch     int // Index of the batch this trial belonged to
	Evaluated int // Cumulative evaluation count after this trial
}

// CopyVector returns an independent copy of a feature vector.
func CopyVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// CopyMatrix returns an independent copy of a feature matrix.
func CopyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = CopyVector(m[i])
	}
	return out
}
