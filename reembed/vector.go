package reembed

import (
	"fmt"
	"math"
)

// NormalizeVector scales an entity embedding to unit length.
// The input is not modified.
func NormalizeVector(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, ErrEmptyVector
	}

	var sum float64
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: component %d is %v", ErrNonFiniteVector, i, x)
		}
		sum += f * f
	}
	if sum == 0 {
		return nil, ErrZeroVector
	}

	magnitude := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / magnitude)
	}
	return out, nil
}
