package distribution

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"bayesplay/domain/core"
	"bayesplay/domain/family"
	"bayesplay/domain/params"
)

// Likelihood is a validated, immutable function of the model parameter. It is
// not a density over the parameter and has no integral.
type Likelihood struct {
	iface   family.LikelihoodInterface
	fn      func(theta float64) float64
	support core.Support
	center  float64
}

// NewLikelihood builds a likelihood from a validated interface.
func NewLikelihood(li family.LikelihoodInterface) (Likelihood, error) {
	if !li.Valid() {
		return Likelihood{}, core.NewInvalidInputError("likelihood interface was not validated")
	}
	v := func(name params.ParameterName) float64 {
		x, _ := li.Value(name)
		return x
	}

	l := Likelihood{iface: li, support: li.Family().Support()}

	switch li.Family() {
	case family.LikelihoodNormal:
		// dnorm(mean; theta, se) is symmetric in mean and theta
		dist := distuv.Normal{Mu: v(params.Mean), Sigma: v(params.SE)}
		l.fn = dist.Prob
		l.center = v(params.Mean)
	case family.LikelihoodStudentT:
		dist := distuv.StudentsT{Mu: v(params.Mean), Sigma: v(params.SD), Nu: v(params.DF)}
		l.fn = dist.Prob
		l.center = v(params.Mean)
	case family.LikelihoodNoncentralD:
		d, n := v(params.D), v(params.N)
		tObs, df, scale := d*math.Sqrt(n), n-1, math.Sqrt(n)
		l.fn = func(theta float64) float64 { return noncentralTProb(tObs, df, theta*scale) }
		l.center = d
	case family.LikelihoodNoncentralD2:
		d, n1, n2 := v(params.D), v(params.N1), v(params.N2)
		scale := math.Sqrt(n1 * n2 / (n1 + n2))
		tObs, df := d*scale, n1+n2-2
		l.fn = func(theta float64) float64 { return noncentralTProb(tObs, df, theta*scale) }
		l.center = d
	case family.LikelihoodNoncentralT:
		tObs, df := v(params.T), v(params.DF)
		l.fn = func(theta float64) float64 { return noncentralTProb(tObs, df, theta) }
		l.center = tObs
	case family.LikelihoodBinomial:
		k, n := v(params.Successes), v(params.Trials)
		l.fn = binomial(k, n)
		l.center = k / n
	default:
		return Likelihood{}, core.NewUnknownFamilyError(string(li.Family()))
	}
	return l, nil
}

// binomial returns theta -> P(k successes in n trials | theta). The endpoints
// are handled directly since 0*log(0) is NaN in floating point.
func binomial(k, n float64) func(float64) float64 {
	return func(theta float64) float64 {
		switch theta {
		case 0:
			if k == 0 {
				return 1
			}
			return 0
		case 1:
			if k == n {
				return 1
			}
			return 0
		}
		return distuv.Binomial{N: n, P: theta}.Prob(k)
	}
}

// Family returns the likelihood family.
func (l Likelihood) Family() family.LikelihoodFamily { return l.iface.Family() }

// Interface returns the validated interface the likelihood was built from.
func (l Likelihood) Interface() family.LikelihoodInterface { return l.iface }

// Support returns the parameter range on which the likelihood is defined.
func (l Likelihood) Support() core.Support { return l.support }

// Center returns a parameter value near the peak of the likelihood.
func (l Likelihood) Center() float64 { return l.center }

// Function evaluates the likelihood at parameter value x.
func (l Likelihood) Function(x float64) (float64, error) {
	if err := core.CheckInput(x); err != nil {
		return 0, err
	}
	if err := l.support.Check(x); err != nil {
		return 0, err
	}
	return core.CheckResult(x, l.fn(x))
}

// FunctionVec evaluates the likelihood over a batch.
func (l Likelihood) FunctionVec(xs []float64) ([]*float64, error) {
	return core.EvaluateBatch(xs, l.Function)
}

// Equal reports whether both likelihoods have the same family and parameter values.
func (l Likelihood) Equal(o Likelihood) bool {
	if l.Family() != o.Family() || !l.iface.Valid() || !o.iface.Valid() {
		return false
	}
	for _, name := range l.Family().RequiredParams() {
		a, _ := l.iface.Value(name)
		b, _ := o.iface.Value(name)
		if a != b {
			return false
		}
	}
	return true
}
