package model

import (
	"context"
	"fmt"

	"bayesplay/domain/core"
	"bayesplay/domain/distribution"
)

// Evidence is the marginal likelihood of a model, tagged with the likelihood it
// was computed against so that only comparable evidences are divided.
type Evidence struct {
	Value      float64
	likelihood distribution.Likelihood
	prior      distribution.Prior
}

// Evidence integrates the model.
func (m Model) Evidence() (Evidence, error) {
	return m.EvidenceContext(context.Background())
}

// EvidenceContext is Evidence with cancellation.
func (m Model) EvidenceContext(ctx context.Context) (Evidence, error) {
	v, err := m.IntegralContext(ctx)
	if err != nil {
		return Evidence{}, err
	}
	return Evidence{Value: v, likelihood: m.likelihood, prior: m.prior}, nil
}

// Likelihood returns the likelihood the evidence was computed against.
func (e Evidence) Likelihood() distribution.Likelihood { return e.likelihood }

// Prior returns the prior of the model the evidence came from.
func (e Evidence) Prior() distribution.Prior { return e.prior }

func (e Evidence) String() string {
	return fmt.Sprintf("%g", e.Value)
}

// BayesFactor returns num.Value / den.Value. Both must share a likelihood.
func BayesFactor(num, den Evidence) (float64, error) {
	if !num.likelihood.Equal(den.likelihood) {
		return 0, fmt.Errorf("%w: %s vs %s", core.ErrIncompatibleEvidence, num.likelihood.Family(), den.likelihood.Family())
	}
	if !(den.Value > 0) {
		return 0, core.NewInvalidInputError(fmt.Sprintf("denominator evidence %g is not positive", den.Value))
	}
	return num.Value / den.Value, nil
}

// SavageDickey returns prior(at) / posterior(at), the Bayes factor against a
// point hypothesis at `at` nested in the prior.
func SavageDickey(prior distribution.Prior, posterior Posterior, at float64) (float64, error) {
	p, err := prior.Function(at)
	if err != nil {
		return 0, err
	}
	q, err := posterior.Function(at)
	if err != nil {
		return 0, err
	}
	if !(q > 0) {
		return 0, core.NewInvalidInputError(fmt.Sprintf("posterior density at %g is not positive", at))
	}
	return core.CheckResult(at, p/q)
}
