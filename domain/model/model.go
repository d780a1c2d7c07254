package model

import (
	"context"
	"math"

	"bayesplay/domain/core"
	"bayesplay/domain/distribution"
	"bayesplay/internal/quadrature"
)

// Model is the pointwise product of a prior and a likelihood: an unnormalized
// posterior kernel. It owns copies of both factors.
type Model struct {
	prior      distribution.Prior
	likelihood distribution.Likelihood
	support    core.Support
	quad       quadrature.Config
}

// New combines a prior and a likelihood.
func New(prior distribution.Prior, likelihood distribution.Likelihood) Model {
	return Model{
		prior:      prior,
		likelihood: likelihood,
		support:    prior.Support().Intersect(likelihood.Support()),
		quad:       quadrature.DefaultConfig(),
	}
}

// WithQuadrature returns a copy of the model that integrates with cfg.
func (m Model) WithQuadrature(cfg quadrature.Config) Model {
	m.quad = cfg
	return m
}

// Prior returns the prior factor.
func (m Model) Prior() distribution.Prior { return m.prior }

// Likelihood returns the likelihood factor.
func (m Model) Likelihood() distribution.Likelihood { return m.likelihood }

// Support is the intersection of the prior support and the likelihood domain.
func (m Model) Support() core.Support { return m.support }

// Function evaluates prior(x) * likelihood(x).
func (m Model) Function(x float64) (float64, error) {
	if err := core.CheckInput(x); err != nil {
		return 0, err
	}
	if err := m.support.Check(x); err != nil {
		return 0, err
	}
	p, err := m.prior.Function(x)
	if err != nil {
		return 0, err
	}
	l, err := m.likelihood.Function(x)
	if err != nil {
		return 0, err
	}
	return core.CheckResult(x, p*l)
}

// FunctionVec evaluates the model over a batch.
func (m Model) FunctionVec(xs []float64) ([]*float64, error) {
	return core.EvaluateBatch(xs, m.Function)
}

// Integral returns the normalizing constant (marginal likelihood) of the model.
func (m Model) Integral() (float64, error) {
	return m.Integrate(nil, nil)
}

// IntegralContext is Integral with cancellation.
func (m Model) IntegralContext(ctx context.Context) (float64, error) {
	return m.IntegrateContext(ctx, nil, nil)
}

// Integrate returns the integral of the model over [lower, upper] intersected
// with its support.
func (m Model) Integrate(lower, upper *float64) (float64, error) {
	return m.IntegrateContext(context.Background(), lower, upper)
}

// IntegrateContext is Integrate with cancellation.
func (m Model) IntegrateContext(ctx context.Context, lower, upper *float64) (float64, error) {
	if err := core.CheckBounds(lower, upper); err != nil {
		return 0, err
	}
	s := m.support.Clamp(lower, upper)

	// a point prior puts unit mass on its atom
	if at, ok := m.prior.Atom(); ok {
		if !s.Contains(at) {
			return 0, nil
		}
		return m.likelihood.Function(at)
	}

	if !(s.Lower < s.Upper) {
		return 0, nil
	}
	cfg := m.quad.WithPoints(m.prior.Center(), m.likelihood.Center())
	return quadrature.IntegrateContext(ctx, m.kernel, s.Lower, s.Upper, cfg)
}

// kernel is the integrand. Quadrature nodes always lie inside the support, so
// an error here means a non-finite value and is reported as NaN to fail the
// integration.
func (m Model) kernel(x float64) float64 {
	v, err := m.Function(x)
	if err != nil {
		return math.NaN()
	}
	return v
}
