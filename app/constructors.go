package app

import (
	"bayesplay/domain/distribution"
	"bayesplay/domain/family"
	"bayesplay/domain/params"
)

// Typed constructors for the common families. Optional limits (params.LL,
// params.UL) may be passed as extra parameters to truncate a prior.

func NormalPrior(mean, sd float64, limits ...params.Param) (distribution.Prior, error) {
	return newPrior(family.PriorNormal, limits, params.P(params.Mean, mean), params.P(params.SD, sd))
}

func CauchyPrior(location, scale float64, limits ...params.Param) (distribution.Prior, error) {
	return newPrior(family.PriorCauchy, limits, params.P(params.Location, location), params.P(params.Scale, scale))
}

func StudentTPrior(mean, sd, df float64, limits ...params.Param) (distribution.Prior, error) {
	return newPrior(family.PriorStudentT, limits,
		params.P(params.Mean, mean), params.P(params.SD, sd), params.P(params.DF, df))
}

func BetaPrior(alpha, beta float64, limits ...params.Param) (distribution.Prior, error) {
	return newPrior(family.PriorBeta, limits, params.P(params.Alpha, alpha), params.P(params.Beta, beta))
}

func UniformPrior(min, max float64) (distribution.Prior, error) {
	return newPrior(family.PriorUniform, nil, params.P(params.Min, min), params.P(params.Max, max))
}

func PointPrior(point float64) (distribution.Prior, error) {
	return newPrior(family.PriorPoint, nil, params.P(params.Point, point))
}

func NormalLikelihood(mean, se float64) (distribution.Likelihood, error) {
	return newLikelihood(family.LikelihoodNormal, params.P(params.Mean, mean), params.P(params.SE, se))
}

func StudentTLikelihood(mean, sd, df float64) (distribution.Likelihood, error) {
	return newLikelihood(family.LikelihoodStudentT,
		params.P(params.Mean, mean), params.P(params.SD, sd), params.P(params.DF, df))
}

// NoncentralDLikelihood is the likelihood of a one-sample or paired effect size d from n observations.
func NoncentralDLikelihood(d, n float64) (distribution.Likelihood, error) {
	return newLikelihood(family.LikelihoodNoncentralD, params.P(params.D, d), params.P(params.N, n))
}

// NoncentralD2Likelihood is the likelihood of an independent-samples effect size d.
func NoncentralD2Likelihood(d, n1, n2 float64) (distribution.Likelihood, error) {
	return newLikelihood(family.LikelihoodNoncentralD2,
		params.P(params.D, d), params.P(params.N1, n1), params.P(params.N2, n2))
}

func NoncentralTLikelihood(t, df float64) (distribution.Likelihood, error) {
	return newLikelihood(family.LikelihoodNoncentralT, params.P(params.T, t), params.P(params.DF, df))
}

func BinomialLikelihood(successes, trials float64) (distribution.Likelihood, error) {
	return newLikelihood(family.LikelihoodBinomial,
		params.P(params.Successes, successes), params.P(params.Trials, trials))
}

func newPrior(f family.PriorFamily, extra []params.Param, required ...params.Param) (distribution.Prior, error) {
	pi, err := family.NewPriorInterface(string(f), append(required, extra...))
	if err != nil {
		return distribution.Prior{}, err
	}
	return distribution.NewPrior(pi)
}

func newLikelihood(f family.LikelihoodFamily, ps ...params.Param) (distribution.Likelihood, error) {
	li, err := family.NewLikelihoodInterface(string(f), ps)
	if err != nil {
		return distribution.Likelihood{}, err
	}
	return distribution.NewLikelihood(li)
}
