package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBounds(t *testing.T) {
	t.Run("Valid bounds", func(t *testing.T) {
		b, err := NewBounds([]float64{0, -1}, []float64{1, 1})
		require.NoError(t, err)
		assert.Equal(t, 2, b.NumFeatures())
	})

	t.Run("Mismatched lengths", func(t *testing.T) {
		_, err := NewBounds([]float64{0, 0}, []float64{1})
		assert.Error(t, err)
	})

	t.Run("Empty bounds", func(t *testing.T) {
		_, err := NewBounds(nil, nil)
		assert.Error(t, err)
	})

	t.Run("Low equals high", func(t *testing.T) {
		_, err := NewBounds([]float64{0, 1}, []float64{1, 1})
		assert.Error(t, err)
	})

	t.Run("Low above high", func(t *testing.T) {
		_, err := NewBounds([]float64{2}, []float64{1})
		assert.Error(t, err)
	})
}

func TestNewUniformBounds(t *testing.T) {
	b, err := NewUniformBounds(-1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -1, -1}, b.Low)
	assert.Equal(t, []float64{1, 1, 1}, b.High)

	_, err = NewUniformBounds(-1, 1, 0)
	assert.Error(t, err)
}

func TestBoundsClip(t *testing.T) {
	b, err := NewUniformBounds(0, 1, 3)
	require.NoError(t, err)

	v := []float64{-0.5, 0.5, 1.5}
	clipped := b.Clip(v)
	assert.Equal(t, []float64{0, 0.5, 1}, clipped)
	// Clip works in place.
	assert.Equal(t, v, clipped)
}

func TestBoundsSample(t *testing.T) {
	b, err := NewBounds([]float64{-2, 10}, []float64{-1, 20})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := b.Sample(rng)
		require.Len(t, v, 2)
		assert.GreaterOrEqual(t, v[0], -2.0)
		assert.Less(t, v[0], -1.0)
		assert.GreaterOrEqual(t, v[1], 10.0)
		assert.Less(t, v[1], 20.0)
	}

	// Same seed yields the same sequence.
	a := b.Sample(rand.New(rand.NewSource(3)))
	c := b.Sample(rand.New(rand.NewSource(3)))
	assert.Equal(t, a, c)
}

func TestProblemStatement(t *testing.T) {
	problem := &ProblemStatement{Name: "tuning"}
	problem.AddFloatParameter("x1", 0, 1).
		AddFloatParameter("x2", -1, 1).
		AddFloatParameter("x3", 5, 10)

	assert.Equal(t, 3, problem.NumFeatures())
	assert.Equal(t, []string{"x1", "x2", "x3"}, problem.ParameterNames())

	b, err := problem.Bounds()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -1, 5}, b.Low)
	assert.Equal(t, []float64{1, 1, 10}, b.High)
}

func TestProblemStatementEmpty(t *testing.T) {
	problem := &ProblemStatement{}
	_, err := problem.Bounds()
	assert.Error(t, err)
}

func TestCopyHelpers(t *testing.T) {
	v := []float64{1, 2}
	cv := CopyVector(v)
	cv[0] = 9
	assert.Equal(t, 1.0, v[0])

	m := [][]float64{{1, 2}, {3, 4}}
	cm := CopyMatrix(m)
	cm[1][0] = 9
	assert.Equal(t, 3.0, m[1][0])
}
