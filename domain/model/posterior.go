package model

import (
	"context"
	"math"

	"bayesplay/domain/core"
)

// Posterior is a model divided by its normalizing constant, computed once at
// construction.
type Posterior struct {
	model Model
	z     float64
}

// NewPosterior normalizes a model. It fails when the model cannot be
// integrated or its integral is not finite and strictly positive.
func NewPosterior(m Model) (Posterior, error) {
	return NewPosteriorContext(context.Background(), m)
}

// NewPosteriorContext is NewPosterior with cancellation.
func NewPosteriorContext(ctx context.Context, m Model) (Posterior, error) {
	z, err := m.IntegralContext(ctx)
	if err != nil {
		return Posterior{}, err
	}
	if !(z > 0) || math.IsInf(z, 0) {
		return Posterior{}, &core.DegeneratePosteriorError{Constant: z}
	}
	return Posterior{model: m, z: z}, nil
}

// Model returns the unnormalized model.
func (p Posterior) Model() Model { return p.model }

// NormalizingConstant returns the cached model integral.
func (p Posterior) NormalizingConstant() float64 { return p.z }

// Support returns the model support.
func (p Posterior) Support() core.Support { return p.model.Support() }

// Function evaluates the posterior density at x.
func (p Posterior) Function(x float64) (float64, error) {
	v, err := p.model.Function(x)
	if err != nil {
		return 0, err
	}
	return core.CheckResult(x, v/p.z)
}

// FunctionVec evaluates the posterior density over a batch.
func (p Posterior) FunctionVec(xs []float64) ([]*float64, error) {
	return core.EvaluateBatch(xs, p.Function)
}

// Integrate returns the posterior probability of [lower, upper].
func (p Posterior) Integrate(lower, upper *float64) (float64, error) {
	return p.IntegrateContext(context.Background(), lower, upper)
}

// IntegrateContext is Integrate with cancellation.
func (p Posterior) IntegrateContext(ctx context.Context, lower, upper *float64) (float64, error) {
	v, err := p.model.IntegrateContext(ctx, lower, upper)
	if err != nil {
		return 0, err
	}
	return v / p.z, nil
}
