package optimizers

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/eagleopt/eagle/pkg/core"
	"github.com/eagleopt/eagle/pkg/errors"
	"github.com/eagleopt/eagle/pkg/logging"
)

// distanceFloor avoids degenerate kernel exponents when two pool members
// collapse onto the same point.
const distanceFloor = 1e-12

// EagleConfig contains the tunable hyperparameters of the eagle strategy.
type EagleConfig struct {
	// Gravity is the attraction strength toward better members (default: 1.5)
	Gravity float64 `json:"gravity"`
	// NegativeGravity is the repulsion strength from worse members (default: 0.008)
	NegativeGravity float64 `json:"negative_gravity"`
	// Visibility controls how fast attraction decays with squared distance (default: 3.0)
	Visibility float64 `json:"visibility"`
	// Perturbation is the base random-step scale of each member (default: 0.16)
	Perturbation float64 `json:"perturbation"`
	// PenalizeFactor shrinks a member's step scale after a non-improving
	// evaluation; must be in (0,1) (default: 0.7)
	PenalizeFactor float64 `json:"penalize_factor"`
	// PerturbationLowerBound is the step-scale floor below which a member is
	// considered exhausted and gets replaced (default: 7e-5)
	PerturbationLowerBound float64 `json:"perturbation_lower_bound"`
	// PoolSize is the number of members maintained across iterations (default: 50)
	PoolSize int `json:"pool_size"`
	// BatchSize is the number of candidates suggested per iteration (default: 10)
	BatchSize int `json:"batch_size"`
	// Seed drives all randomness; a fixed seed yields bit-identical
	// candidate sequences. Zero means seed from the clock.
	Seed int64 `json:"seed"`
}

// VectorizedEagleStrategy maintains a fixed-size pool of candidate solutions
// and moves the whole pool through physics-inspired attraction/repulsion
// forces, one suggested batch at a time.
//
// The pool arrays are parallel: features[i], metrics[i] and perturbations[i]
// describe the same member. A metric of -Inf marks a removed member awaiting
// replacement. All state is exclusively owned by this instance; no method is
// safe for concurrent use.
type VectorizedEagleStrategy struct {
	config EagleConfig
	bounds core.Bounds

	nFeatures int
	rng       *rand.Rand
	logger    *logging.Logger

	features      [][]float64
	metrics       []float64
	perturbations []float64

	// cursor is the next pool index to suggest from; batches walk the pool
	// cyclically so every member gets evaluated in turn.
	cursor int

	// Pending batch bookkeeping, nil when no batch is awaiting results.
	pendingIdx      []int
	pendingFeatures [][]float64
}

// NewVectorizedEagleStrategy creates a strategy sized to the given bounds.
// Zero-valued config fields are replaced with defaults; invalid values are
// rejected.
func NewVectorizedEagleStrategy(config EagleConfig, bounds core.Bounds) (*VectorizedEagleStrategy, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	// Backfill defaults for unset fields
	if config.Gravity == 0 {
		config.Gravity = 1.5
	}
	if config.NegativeGravity == 0 {
		config.NegativeGravity = 0.008
	}
	if config.Visibility == 0 {
		config.Visibility = 3.0
	}
	if config.Perturbation == 0 {
		config.Perturbation = 0.16
	}
	if config.PenalizeFactor == 0 {
		config.PenalizeFactor = 0.7
	}
	if config.PerturbationLowerBound == 0 {
		config.PerturbationLowerBound = 7e-5
	}
	if config.PoolSize == 0 {
		config.PoolSize = 50
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	if err := validateEagleConfig(config); err != nil {
		return nil, err
	}

	e := &VectorizedEagleStrategy{
		config:    config,
		bounds:    bounds,
		nFeatures: bounds.NumFeatures(),
		rng:       rand.New(rand.NewSource(config.Seed)),
		logger:    logging.GetLogger(),
	}
	e.initializePool()
	return e, nil
}

func validateEagleConfig(config EagleConfig) error {
	switch {
	case config.Gravity < 0:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "gravity must be non-negative"),
			errors.Fields{"gravity": config.Gravity})
	case config.NegativeGravity < 0:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "negative gravity must be non-negative"),
			errors.Fields{"negative_gravity": config.NegativeGravity})
	case config.Visibility < 0:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "visibility must be non-negative"),
			errors.Fields{"visibility": config.Visibility})
	case config.Perturbation < 0:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "perturbation must be positive"),
			errors.Fields{"perturbation": config.Perturbation})
	case config.PenalizeFactor <= 0 || config.PenalizeFactor >= 1:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "penalize factor must be in (0,1)"),
			errors.Fields{"penalize_factor": config.PenalizeFactor})
	case config.PoolSize < 1 || config.BatchSize < 1:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "pool and batch sizes must be positive"),
			errors.Fields{"pool_size": config.PoolSize, "batch_size": config.BatchSize})
	case config.BatchSize > config.PoolSize:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "batch size cannot exceed pool size"),
			errors.Fields{"pool_size": config.PoolSize, "batch_size": config.BatchSize})
	}
	return nil
}

// initializePool seeds the pool with uniform random members. Metrics start
// at -Inf: every member is unevaluated until its first update.
func (e *VectorizedEagleStrategy) initializePool() {
	e.features = make([][]float64, e.config.PoolSize)
	e.metrics = make([]float64, e.config.PoolSize)
	e.perturbations = make([]float64, e.config.PoolSize)
	for i := 0; i < e.config.PoolSize; i++ {
		e.features[i] = e.bounds.Sample(e.rng)
		e.metrics[i] = math.Inf(-1)
		e.perturbations[i] = e.config.Perturbation
	}
}

// Config returns the effective configuration after default backfill.
func (e *VectorizedEagleStrategy) Config() EagleConfig { return e.config }

// NumFeatures returns the dimensionality the strategy was sized to.
func (e *VectorizedEagleStrategy) NumFeatures() int { return e.nFeatures }

// BatchSize returns the configured suggestion batch size.
func (e *VectorizedEagleStrategy) BatchSize() int { return e.config.BatchSize }

// Suggest selects batchSize pool members in cyclic order, computes each
// one's next candidate feature vector and returns the candidates clipped to
// the bounds. The suggested batch stays pending until Update resolves it;
// calling Suggest again before that is a protocol violation.
//
// Suggest never mutates metrics.
func (e *VectorizedEagleStrategy) Suggest(batchSize int) ([][]float64, error) {
	if e.pendingIdx != nil {
		return nil, errors.WithFields(
			errors.New(errors.ProtocolViolation, "suggest called while a batch is pending"),
			errors.Fields{"pending": len(e.pendingIdx)})
	}
	if batchSize < 1 || batchSize > e.config.PoolSize {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "batch size must be in [1, pool_size]"),
			errors.Fields{"batch_size": batchSize, "pool_size": e.config.PoolSize})
	}

	indices := make([]int, batchSize)
	for k := range indices {
		indices[k] = (e.cursor + k) % e.config.PoolSize
	}
	e.cursor = (e.cursor + batchSize) % e.config.PoolSize

	diffs, dists := e.featureDiffsAndDists(indices)
	directions := e.scaledDirections(indices)
	changes := e.featureChanges(diffs, dists, directions)
	perturbations := e.createPerturbations(indices)

	candidates := make([][]float64, batchSize)
	for k, i := range indices {
		c := make([]float64, e.nFeatures)
		for d := 0; d < e.nFeatures; d++ {
			c[d] = e.features[i][d] + changes[k][d] + perturbations[k][d]
		}
		candidates[k] = e.bounds.Clip(c)
	}

	e.pendingIdx = indices
	e.pendingFeatures = core.CopyMatrix(candidates)

	return candidates, nil
}

// featureDiffsAndDists computes, for every selected member i and every pool
// member j, the vector difference features[j]-features[i] and the squared
// Euclidean distance between them. The self entry is all zeros.
func (e *VectorizedEagleStrategy) featureDiffsAndDists(indices []int) ([][][]float64, [][]float64) {
	diffs := make([][][]float64, len(indices))
	dists := make([][]float64, len(indices))
	for k, i := range indices {
		diffs[k] = make([][]float64, e.config.PoolSize)
		dists[k] = make([]float64, e.config.PoolSize)
		for j := 0; j < e.config.PoolSize; j++ {
			diff := make([]float64, e.nFeatures)
			var dist float64
			for d := 0; d < e.nFeatures; d++ {
				diff[d] = e.features[j][d] - e.features[i][d]
				dist += diff[d] * diff[d]
			}
			diffs[k][j] = diff
			dists[k][j] = dist
		}
	}
	return diffs, dists
}

// scaledDirections computes the sign and magnitude of the pull each pool
// member j exerts on each selected member i: gravity when j is at least as
// good, negative gravity otherwise.
//
// Removed members (metric -Inf) are handled by explicit liveness checks so
// the result never depends on -Inf arithmetic: a removed j always repels,
// and a removed i is always attracted toward any live j. In particular a
// pair of removed members repels rather than producing NaN.
func (e *VectorizedEagleStrategy) scaledDirections(indices []int) [][]float64 {
	directions := make([][]float64, len(indices))
	for k, i := range indices {
		directions[k] = make([]float64, e.config.PoolSize)
		for j := 0; j < e.config.PoolSize; j++ {
			directions[k][j] = e.pullDirection(e.metrics[i], e.metrics[j])
		}
	}
	return directions
}

func (e *VectorizedEagleStrategy) pullDirection(mi, mj float64) float64 {
	deadI := math.IsInf(mi, -1)
	deadJ := math.IsInf(mj, -1)
	switch {
	case deadJ:
		// Covers the both-dead case as well: never attract toward a
		// removed member.
		return -e.config.NegativeGravity
	case deadI:
		return e.config.Gravity
	case mj-mi >= 0:
		return e.config.Gravity
	default:
		return -e.config.NegativeGravity
	}
}

// featureChanges accumulates the pulls of the whole pool on each selected
// member: each pairwise direction is weighted by an exponentially decaying
// kernel of the squared distance, then applied along the pair's difference
// vector. Distant pairs underflow to zero weight, which is acceptable.
func (e *VectorizedEagleStrategy) featureChanges(diffs [][][]float64, dists, directions [][]float64) [][]float64 {
	changes := make([][]float64, len(diffs))
	for k := range diffs {
		change := make([]float64, e.nFeatures)
		for j := 0; j < e.config.PoolSize; j++ {
			dist := dists[k][j]
			if dist < distanceFloor {
				// Coincident members have a zero difference vector, so the
				// floored weight still contributes nothing.
				dist = distanceFloor
			}
			pull := directions[k][j] * math.Exp(-e.config.Visibility*dist)
			for d := 0; d < e.nFeatures; d++ {
				change[d] += pull * diffs[k][j][d]
			}
		}
		changes[k] = change
	}
	return changes
}

// createPerturbations draws one uniform random vector per selected member,
// bounded by that member's current adaptive step scale.
func (e *VectorizedEagleStrategy) createPerturbations(indices []int) [][]float64 {
	perturbations := make([][]float64, len(indices))
	for k, i := range indices {
		p := make([]float64, e.nFeatures)
		scale := e.perturbations[i]
		for d := 0; d < e.nFeatures; d++ {
			p[d] = (2*e.rng.Float64() - 1) * scale
		}
		perturbations[k] = p
	}
	return perturbations
}

// Update resolves the pending batch with its evaluation results. A strictly
// improving member adopts its candidate features and metric and has its step
// scale reset to the base value; a non-improving member keeps its state and
// has its step scale shrunk by the penalize factor. NaN results never count
// as improvements.
//
// After resolving the batch the whole pool is trimmed: exhausted members are
// replaced with fresh random ones, sparing the current best.
func (e *VectorizedEagleStrategy) Update(batchMetrics []float64) error {
	if e.pendingIdx == nil {
		return errors.New(errors.ProtocolViolation, "update called without a pending batch")
	}
	if len(batchMetrics) != len(e.pendingIdx) {
		return errors.WithFields(
			errors.New(errors.ProtocolViolation, "batch metrics length does not match pending batch"),
			errors.Fields{"got": len(batchMetrics), "want": len(e.pendingIdx)})
	}

	for k, i := range e.pendingIdx {
		m := batchMetrics[k]
		if m > e.metrics[i] {
			e.features[i] = e.pendingFeatures[k]
			e.metrics[i] = m
			e.perturbations[i] = e.config.Perturbation
		} else {
			e.perturbations[i] *= e.config.PenalizeFactor
		}
	}

	// Resolved exactly once; a second Update must fail.
	e.pendingIdx = nil
	e.pendingFeatures = nil

	e.trimPool()
	return nil
}

// trimPool replaces members whose step scale has decayed below the floor
// with fresh random points. Their metric is set to -Inf so the next update
// can only improve them. The current best member is exempt regardless of its
// step scale; on metric ties the lowest index wins the exemption.
//
// The whole pool is examined on every update since step scales decay
// monotonically and can cross the floor outside the just-resolved batch.
func (e *VectorizedEagleStrategy) trimPool() {
	best := 0
	for i := 1; i < e.config.PoolSize; i++ {
		if e.metrics[i] > e.metrics[best] {
			best = i
		}
	}

	trimmed := 0
	for i := 0; i < e.config.PoolSize; i++ {
		if i == best || e.perturbations[i] >= e.config.PerturbationLowerBound {
			continue
		}
		e.features[i] = e.bounds.Sample(e.rng)
		e.metrics[i] = math.Inf(-1)
		e.perturbations[i] = e.config.Perturbation
		trimmed++
	}
	if trimmed > 0 {
		e.logger.Debug(context.Background(), "trimmed %d exhausted pool members", trimmed)
	}
}
