package distribution

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"bayesplay/domain/core"
	"bayesplay/domain/family"
	"bayesplay/domain/params"
)

// continuous is the part of a gonum distribution a prior needs.
type continuous interface {
	Prob(x float64) float64
	CDF(x float64) float64
	Survival(x float64) float64
}

// Prior is a validated, immutable prior density over the model parameter.
type Prior struct {
	iface   family.PriorInterface
	dist    continuous
	support core.Support
	mass    float64
	center  float64
	atom    float64
	isAtom  bool
}

// NewPrior builds a prior from a validated interface. It fails only when the
// interface was not produced by the validating constructor or when a
// truncation range holds no probability mass.
func NewPrior(pi family.PriorInterface) (Prior, error) {
	if !pi.Valid() {
		return Prior{}, core.NewInvalidInputError("prior interface was not validated")
	}
	v := func(name params.ParameterName) float64 {
		x, _ := pi.Value(name)
		return x
	}

	p := Prior{
		iface:   pi,
		support: pi.Family().Support(),
		mass:    1,
		center:  math.NaN(),
	}

	switch pi.Family() {
	case family.PriorNormal:
		p.dist = distuv.Normal{Mu: v(params.Mean), Sigma: v(params.SD)}
		p.center = v(params.Mean)
	case family.PriorCauchy:
		p.dist = distuv.StudentsT{Mu: v(params.Location), Sigma: v(params.Scale), Nu: 1}
		p.center = v(params.Location)
	case family.PriorStudentT:
		p.dist = distuv.StudentsT{Mu: v(params.Mean), Sigma: v(params.SD), Nu: v(params.DF)}
		p.center = v(params.Mean)
	case family.PriorBeta:
		a, b := v(params.Alpha), v(params.Beta)
		p.dist = distuv.Beta{Alpha: a, Beta: b}
		if a > 1 && b > 1 {
			p.center = (a - 1) / (a + b - 2)
		}
	case family.PriorUniform:
		p.dist = distuv.Uniform{Min: v(params.Min), Max: v(params.Max)}
		p.support = core.NewSupport(v(params.Min), v(params.Max))
	case family.PriorPoint:
		p.atom = v(params.Point)
		p.isAtom = true
		p.center = p.atom
		return p, nil
	default:
		return Prior{}, core.NewUnknownFamilyError(string(pi.Family()))
	}

	ll, hasLL := pi.Value(params.LL)
	ul, hasUL := pi.Value(params.UL)
	if hasLL || hasUL {
		if hasLL {
			p.support.Lower = ll
		}
		if hasUL {
			p.support.Upper = ul
		}
		p.mass = p.massBetween(p.support.Lower, p.support.Upper)
		if !(p.mass > 0) {
			name, bound := params.LL, ll
			if !hasLL {
				name, bound = params.UL, ul
			}
			return Prior{}, core.NewInvalidParameterError(string(pi.Family()), string(name), bound,
				"truncation range holds no prior mass")
		}
	}
	return p, nil
}

// massBetween is the untruncated probability of [lo, hi]. Ranges in the upper
// half use the survival function to keep precision in the tail.
func (p Prior) massBetween(lo, hi float64) float64 {
	var m float64
	switch {
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return 1
	case math.IsInf(hi, 1):
		m = p.dist.Survival(lo)
	case math.IsInf(lo, -1):
		m = p.dist.CDF(hi)
	case p.dist.CDF(lo) > 0.5:
		m = p.dist.Survival(lo) - p.dist.Survival(hi)
	default:
		m = p.dist.CDF(hi) - p.dist.CDF(lo)
	}
	return math.Max(m, 0)
}

// Family returns the prior family.
func (p Prior) Family() family.PriorFamily { return p.iface.Family() }

// Interface returns the validated interface the prior was built from.
func (p Prior) Interface() family.PriorInterface { return p.iface }

// Support returns the interval on which Function is defined. A point prior is
// defined on the whole real line and is zero away from its atom.
func (p Prior) Support() core.Support { return p.support }

// Atom returns the location of a point prior.
func (p Prior) Atom() (float64, bool) { return p.atom, p.isAtom }

// Center returns a location near the bulk of the density, or NaN if there is none.
func (p Prior) Center() float64 { return p.center }

// Function evaluates the prior density at x.
func (p Prior) Function(x float64) (float64, error) {
	if err := core.CheckInput(x); err != nil {
		return 0, err
	}
	if p.isAtom {
		if x == p.atom {
			return 1, nil
		}
		return 0, nil
	}
	if err := p.support.Check(x); err != nil {
		return 0, err
	}
	return core.CheckResult(x, p.dist.Prob(x)/p.mass)
}

// FunctionVec evaluates the prior density over a batch.
func (p Prior) FunctionVec(xs []float64) ([]*float64, error) {
	return core.EvaluateBatch(xs, p.Function)
}

// Integrate returns the prior probability of [lower, upper], computed from the
// distribution function rather than by quadrature.
func (p Prior) Integrate(lower, upper *float64) (float64, error) {
	return p.IntegrateContext(context.Background(), lower, upper)
}

// IntegrateContext is Integrate with cancellation.
func (p Prior) IntegrateContext(ctx context.Context, lower, upper *float64) (float64, error) {
	if err := core.CheckBounds(lower, upper); err != nil {
		return 0, err
	}
	s := p.support.Clamp(lower, upper)
	if p.isAtom {
		if s.Contains(p.atom) {
			return 1, nil
		}
		return 0, nil
	}
	if !(s.Lower < s.Upper) {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return math.Min(p.massBetween(s.Lower, s.Upper)/p.mass, 1), nil
}
