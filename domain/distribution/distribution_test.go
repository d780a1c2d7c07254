package distribution

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"bayesplay/domain/core"
	"bayesplay/domain/family"
	"bayesplay/domain/params"
	"bayesplay/internal/quadrature"
)

func newPrior(t *testing.T, fam string, ps ...params.Param) Prior {
	t.Helper()
	pi, err := family.NewPriorInterface(fam, ps)
	require.NoError(t, err)
	p, err := NewPrior(pi)
	require.NoError(t, err)
	return p
}

func newLikelihood(t *testing.T, fam string, ps ...params.Param) Likelihood {
	t.Helper()
	li, err := family.NewLikelihoodInterface(fam, ps)
	require.NoError(t, err)
	l, err := NewLikelihood(li)
	require.NoError(t, err)
	return l
}

func TestPriorsIntegrateToOne(t *testing.T) {
	testCases := []struct {
		name   string
		family string
		params []params.Param
	}{
		{"normal", "normal", []params.Param{params.P(params.Mean, 0), params.P(params.SD, 1)}},
		{"wide normal", "normal", []params.Param{params.P(params.Mean, 3), params.P(params.SD, 40)}},
		{"narrow normal", "normal", []params.Param{params.P(params.Mean, -2), params.P(params.SD, 0.01)}},
		{"half normal", "normal", []params.Param{params.P(params.Mean, 0), params.P(params.SD, 1), params.P(params.LL, 0)}},
		{"cauchy", "cauchy", []params.Param{params.P(params.Location, 0), params.P(params.Scale, 0.707)}},
		{"truncated cauchy", "cauchy", []params.Param{
			params.P(params.Location, 0), params.P(params.Scale, 1), params.P(params.LL, -1), params.P(params.UL, 2),
		}},
		{"student t", "student_t", []params.Param{params.P(params.Mean, 0), params.P(params.SD, 1), params.P(params.DF, 3)}},
		{"upper truncated student t", "student_t", []params.Param{
			params.P(params.Mean, 1), params.P(params.SD, 2), params.P(params.DF, 10), params.P(params.UL, 0),
		}},
		{"beta", "beta", []params.Param{params.P(params.Alpha, 2), params.P(params.Beta, 5)}},
		{"jeffreys beta", "beta", []params.Param{params.P(params.Alpha, 0.5), params.P(params.Beta, 0.5)}},
		{"truncated beta", "beta", []params.Param{
			params.P(params.Alpha, 3), params.P(params.Beta, 3), params.P(params.LL, 0.2), params.P(params.UL, 0.6),
		}},
		{"beta singular at zero", "beta", []params.Param{params.P(params.Alpha, 0.3), params.P(params.Beta, 2)}},
		{"uniform", "uniform", []params.Param{params.P(params.Min, -1), params.P(params.Max, 2)}},
		{"student t half df", "student_t", []params.Param{params.P(params.Mean, 0), params.P(params.SD, 1), params.P(params.DF, 0.5)}},
		{"student t one df", "student_t", []params.Param{params.P(params.Mean, -3), params.P(params.SD, 2), params.P(params.DF, 1)}},
		{"far narrow normal", "normal", []params.Param{params.P(params.Mean, 1000), params.P(params.SD, 1e-6)}},
		{"far normal", "normal", []params.Param{params.P(params.Mean, 1e4), params.P(params.SD, 1)}},
		{"far normal small sd", "normal", []params.Param{params.P(params.Mean, 1000), params.P(params.SD, 0.01)}},
		{"very narrow cauchy", "cauchy", []params.Param{params.P(params.Location, 5), params.P(params.Scale, 1e-8)}},
		{"point", "point", []params.Param{params.P(params.Point, 0.3)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPrior(t, tc.family, tc.params...)
			got, err := p.Integrate(nil, nil)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, got, 1e-6)

			got, err = p.Integrate(core.Bound(math.Inf(-1)), core.Bound(math.Inf(1)))
			require.NoError(t, err)
			assert.InDelta(t, 1.0, got, 1e-6)
		})
	}
}

func TestPriorIntegrate_Partial(t *testing.T) {
	p := newPrior(t, "normal", params.P(params.Mean, 0), params.P(params.SD, 1))
	got, err := p.Integrate(core.Bound(-1), core.Bound(1))
	require.NoError(t, err)
	assert.InDelta(t, 0.6826894921370859, got, 1e-9)

	got, err = p.Integrate(nil, core.Bound(0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestPriorIntegrate_Additivity(t *testing.T) {
	priors := []Prior{
		newPrior(t, "normal", params.P(params.Mean, 0.2), params.P(params.SD, 0.8)),
		newPrior(t, "cauchy", params.P(params.Location, 0), params.P(params.Scale, 1)),
		newPrior(t, "student_t", params.P(params.Mean, 0), params.P(params.SD, 1), params.P(params.DF, 2)),
	}
	lower, upper := -0.5, 1.3

	for _, p := range priors {
		whole, err := p.Integrate(nil, core.Bound(upper))
		require.NoError(t, err)
		left, err := p.Integrate(nil, core.Bound(lower))
		require.NoError(t, err)
		mid, err := p.Integrate(core.Bound(lower), core.Bound(upper))
		require.NoError(t, err)
		assert.InDelta(t, whole, left+mid, 1e-8, p.Family().String())
	}
}

func TestPriorIntegrate_DegenerateIntervalIsZero(t *testing.T) {
	p := newPrior(t, "beta", params.P(params.Alpha, 2), params.P(params.Beta, 2))

	// inverted bounds
	got, err := p.Integrate(core.Bound(0.8), core.Bound(0.2))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	// entirely outside the support
	got, err = p.Integrate(core.Bound(2), core.Bound(3))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	// inverted only after clamping to [0, 1]
	got, err = p.Integrate(core.Bound(1.5), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestPriorIntegrate_NaNBound(t *testing.T) {
	p := newPrior(t, "normal", params.P(params.Mean, 0), params.P(params.SD, 1))
	_, err := p.Integrate(core.Bound(math.NaN()), nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestPriorFunction_Normal(t *testing.T) {
	p := newPrior(t, "normal", params.P(params.Mean, 0), params.P(params.SD, 1))

	got, err := p.Function(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.3989422804014327, got, 1e-12)

	left, _ := p.Function(-1)
	right, _ := p.Function(1)
	assert.InDelta(t, left, right, 1e-12)
}

func TestPriorFunction_Truncated(t *testing.T) {
	p := newPrior(t, "normal", params.P(params.Mean, 0), params.P(params.SD, 1), params.P(params.LL, 0))

	got, err := p.Function(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 2*distuv.UnitNormal.Prob(0.5), got, 1e-12)

	_, err = p.Function(-0.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDomain)

	var de *core.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, -0.5, de.X)
	assert.Equal(t, 0.0, de.Lower)
}

func TestPriorFunction_Point(t *testing.T) {
	p := newPrior(t, "point", params.P(params.Point, 3))

	got, err := p.Function(3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	for _, x := range []float64{2.9, 3.1} {
		got, err = p.Function(x)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	}

	p = newPrior(t, "point", params.P(params.Point, 2))
	got, err = p.Integrate(core.Bound(1.5), core.Bound(2.5))
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = p.Integrate(core.Bound(2.1), core.Bound(3))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestPriorFunction_StudentTAndBeta(t *testing.T) {
	st := newPrior(t, "student_t", params.P(params.Mean, 0), params.P(params.SD, 1), params.P(params.DF, 3))
	got, err := st.Function(0)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)

	mass, err := st.Integrate(core.Bound(-1), core.Bound(1))
	require.NoError(t, err)
	assert.Greater(t, mass, 0.0)
	assert.Less(t, mass, 1.0)

	b := newPrior(t, "beta", params.P(params.Alpha, 2), params.P(params.Beta, 5))
	got, err = b.Function(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 30*0.5*math.Pow(0.5, 4), got, 1e-12)

	_, err = b.Function(1.5)
	assert.ErrorIs(t, err, core.ErrDomain)
}

func TestPriorFunctionVec(t *testing.T) {
	p := newPrior(t, "beta", params.P(params.Alpha, 2), params.P(params.Beta, 2))

	got, err := p.FunctionVec([]float64{0.5, 1.5})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0])
	assert.InDelta(t, 1.5, *got[0], 1e-12)
	assert.Nil(t, got[1])

	_, err = p.FunctionVec(nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = p.FunctionVec([]float64{0.5, math.NaN()})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestNewPrior_TruncationWithoutMass(t *testing.T) {
	pi, err := family.NewPriorInterface("normal", []params.Param{
		params.P(params.Mean, 0), params.P(params.SD, 1), params.P(params.LL, 50), params.P(params.UL, 60),
	})
	require.NoError(t, err)

	_, err = NewPrior(pi)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidParameterValue)
}

func TestNewPrior_UnvalidatedInterface(t *testing.T) {
	_, err := NewPrior(family.PriorInterface{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = NewLikelihood(family.LikelihoodInterface{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestPriorIntegrate_HeavyTailAndFarPeaks(t *testing.T) {
	st := newPrior(t, "student_t", params.P(params.Mean, 0), params.P(params.SD, 1), params.P(params.DF, 0.5))
	got, err := st.Integrate(nil, core.Bound(0))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)

	upper, err := st.Integrate(core.Bound(10), nil)
	require.NoError(t, err)
	assert.InDelta(t, distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 0.5}.Survival(10), upper, 1e-14)
	assert.Greater(t, upper, 0.05)

	far := newPrior(t, "normal", params.P(params.Mean, 1000), params.P(params.SD, 1e-6))
	got, err = far.Integrate(core.Bound(1000), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)

	got, err = far.Integrate(core.Bound(1000-1e-6), core.Bound(1000+1e-6))
	require.NoError(t, err)
	assert.InDelta(t, 0.6826894921370859, got, 1e-6)

	// far upper tail keeps precision through the survival function
	n := newPrior(t, "normal", params.P(params.Mean, 0), params.P(params.SD, 1))
	got, err = n.Integrate(core.Bound(9), core.Bound(10))
	require.NoError(t, err)
	assert.InEpsilon(t, distuv.UnitNormal.Survival(9)-distuv.UnitNormal.Survival(10), got, 1e-9)
}

func TestPriorIntegrate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPrior(t, "normal", params.P(params.Mean, 0), params.P(params.SD, 1))
	_, err := p.IntegrateContext(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLikelihoodFunction(t *testing.T) {
	normal := newLikelihood(t, "normal", params.P(params.Mean, 0), params.P(params.SE, 1))
	got, err := normal.Function(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.3989422804014327, got, 1e-12)

	st := newLikelihood(t, "student_t", params.P(params.Mean, 1), params.P(params.SD, 2), params.P(params.DF, 5))
	got, err = st.Function(3)
	require.NoError(t, err)
	assert.InDelta(t, distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 5}.Prob(-1)/2, got, 1e-12)

	binom := newLikelihood(t, "binomial", params.P(params.Successes, 5), params.P(params.Trials, 10))
	got, err = binom.Function(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 252.0/1024.0, got, 1e-12)

	got, err = binom.Function(0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = binom.Function(1.2)
	assert.ErrorIs(t, err, core.ErrDomain)

	zero := newLikelihood(t, "binomial", params.P(params.Successes, 0), params.P(params.Trials, 10))
	got, err = zero.Function(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestLikelihoodFunctionVec(t *testing.T) {
	l := newLikelihood(t, "binomial", params.P(params.Successes, 3), params.P(params.Trials, 10))

	got, err := l.FunctionVec([]float64{0.3, -0.1, 0.6})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.NotNil(t, got[0])
	assert.Nil(t, got[1])
	assert.NotNil(t, got[2])
}

func TestNoncentralLikelihoods(t *testing.T) {
	d := newLikelihood(t, "noncentral_d", params.P(params.D, 0.5), params.P(params.N, 30))
	got, err := d.Function(0.5)
	require.NoError(t, err)
	assert.InDelta(t, noncentralTProb(0.5*math.Sqrt(30), 29, 0.5*math.Sqrt(30)), got, 1e-15)

	d2 := newLikelihood(t, "noncentral_d2", params.P(params.D, 0.5), params.P(params.N1, 20), params.P(params.N2, 25))
	scale := math.Sqrt(20.0 * 25.0 / 45.0)
	got, err = d2.Function(0.4)
	require.NoError(t, err)
	assert.InDelta(t, noncentralTProb(0.5/math.Sqrt(1.0/20+1.0/25), 43, 0.4*scale), got, 1e-12)

	nt := newLikelihood(t, "noncentral_t", params.P(params.T, 2), params.P(params.DF, 1.5))
	vals, err := nt.FunctionVec([]float64{1.5, 2.5})
	require.NoError(t, err)
	for _, v := range vals {
		require.NotNil(t, v)
		assert.Greater(t, *v, 0.0)
	}
}

func TestNoncentralT_CentralCase(t *testing.T) {
	for _, nu := range []float64{1, 2.5, 10, 79} {
		central := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}
		for _, x := range []float64{-3, -0.2, 0, 1.7} {
			assert.InDelta(t, central.Prob(x), noncentralTProb(x, nu, 0), 1e-15)
			// the series branch must agree with the central closed form
			assert.InEpsilon(t, central.Prob(x), noncentralTProb(x, nu, 1e-9), 1e-6)
		}
	}
}

func TestNoncentralT_Moments(t *testing.T) {
	nu, mu := 5.0, 1.5
	density := func(x float64) float64 { return noncentralTProb(x, nu, mu) }

	total, err := quadrature.Integrate(density, math.Inf(-1), math.Inf(1), quadrature.DefaultConfig().WithPoints(mu))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, total, 1e-8)

	lg1, _ := math.Lgamma((nu - 1) / 2)
	lg2, _ := math.Lgamma(nu / 2)
	expected := mu * math.Sqrt(nu/2) * math.Exp(lg1-lg2)

	mean, err := quadrature.Integrate(func(x float64) float64 { return x * density(x) },
		math.Inf(-1), math.Inf(1), quadrature.DefaultConfig().WithPoints(mu))
	require.NoError(t, err)
	assert.InDelta(t, expected, mean, 1e-7)
}

func TestNoncentralT_Reflection(t *testing.T) {
	for _, x := range []float64{-2, 0.3, 4} {
		assert.InEpsilon(t, noncentralTProb(x, 7, 1.2), noncentralTProb(-x, 7, -1.2), 1e-12)
	}
}

func TestNoncentralT_FarTailIsFinite(t *testing.T) {
	v := noncentralTProb(2.03, 79, -60)
	assert.False(t, math.IsNaN(v))
	assert.GreaterOrEqual(t, v, 0.0)
}

func TestLikelihoodEqual(t *testing.T) {
	a := newLikelihood(t, "noncentral_d", params.P(params.D, 0.2), params.P(params.N, 80))
	b := newLikelihood(t, "noncentral_d", params.P(params.N, 80), params.P(params.D, 0.2))
	c := newLikelihood(t, "noncentral_d", params.P(params.D, 0.3), params.P(params.N, 80))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Likelihood{}))
}
