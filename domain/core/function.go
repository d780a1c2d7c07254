package core

import (
	"math"
	"strconv"
)

// Bound returns a pointer to v for use as an explicit integration bound.
func Bound(v float64) *float64 {
	return &v
}

// CheckInput rejects NaN and infinite evaluation points.
func CheckInput(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return NewInvalidInputError("evaluation point must be finite")
	}
	return nil
}

// CheckBounds rejects NaN integration bounds. Infinite bounds are allowed.
func CheckBounds(lower, upper *float64) error {
	if lower != nil && math.IsNaN(*lower) {
		return NewInvalidInputError("lower bound is NaN")
	}
	if upper != nil && math.IsNaN(*upper) {
		return NewInvalidInputError("upper bound is NaN")
	}
	return nil
}

// CheckResult turns a NaN or infinite value at x into ErrNonFinite.
func CheckResult(x, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewNonFiniteError(x, v)
	}
	return v, nil
}

// EvaluateBatch applies f to every point. The call fails only when the batch
// is empty or holds a non-finite point; per-point domain and non-finite errors
// become nil cells. Any other error from f aborts the batch.
func EvaluateBatch(xs []float64, f func(float64) (float64, error)) ([]*float64, error) {
	if len(xs) == 0 {
		return nil, NewInvalidInputError("empty batch")
	}
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, NewInvalidInputError("batch element " + strconv.Itoa(i) + " is not finite")
		}
	}

	out := make([]*float64, len(xs))
	for i, x := range xs {
		v, err := f(x)
		if err != nil {
			if IsPointwiseError(err) {
				continue
			}
			return nil, err
		}
		out[i] = &v
	}
	return out, nil
}
