package core

import (
	"github.com/eagleopt/eagle/pkg/errors"
)

// FloatParameter describes one continuous search-space dimension.
type FloatParameter struct {
	Name string
	Min  float64
	Max  float64
}

// ProblemStatement is the minimal search-space description consumed by
// strategy factories. Parameters are continuous; richer schemas (discrete,
// categorical, conditional) are translated into flat numeric bounds by the
// caller before they reach the optimizer.
type ProblemStatement struct {
	Name       string
	Parameters []FloatParameter
}

// AddFloatParameter appends a continuous parameter to the search space.
func (p *ProblemStatement) AddFloatParameter(name string, min, max float64) *ProblemStatement {
	p.Parameters = append(p.Parameters, FloatParameter{Name: name, Min: min, Max: max})
	return p
}

// NumFeatures returns the flattened dimensionality of the search space.
func (p *ProblemStatement) NumFeatures() int {
	return len(p.Parameters)
}

// Bounds flattens the search space into per-dimension bound vectors.
func (p *ProblemStatement) Bounds() (Bounds, error) {
	if len(p.Parameters) == 0 {
		return Bounds{}, errors.New(errors.InvalidConfig, "problem statement has no parameters")
	}
	low := make([]float64, len(p.Parameters))
	high := make([]float64, len(p.Parameters))
	for i, param := range p.Parameters {
		low[i] = param.Min
		high[i] = param.Max
	}
	return NewBounds(low, high)
}

// ParameterNames returns the parameter names in declaration order.
func (p *ProblemStatement) ParameterNames() []string {
	names := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		names[i] = param.Name
	}
	return names
}
