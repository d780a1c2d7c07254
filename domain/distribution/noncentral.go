package distribution

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// NonCentralT is not available in gonum/distuv. Its density is
//
//	f(t) = C * a^-(nu+1)/2 * exp(-mu^2 nu / 2a) * I(z)
//	I(z) = integral over y in [0, inf) of y^nu exp(-(y-z)^2 / 2)
//
// with a = t^2 + nu, z = t mu / sqrt(a) and C = 2 nu^(nu/2) / (sqrt(2 pi) 2^(nu/2) Gamma(nu/2)).
// The integrand of I is positive and unimodal, so it is evaluated in log space
// on a window around its mode with a fixed Gauss-Legendre rule.

const (
	nctPanels = 8
	nctNodes  = 20
	// nctDrop is the log-height below the mode at which the window stops.
	nctDrop = 40
)

var nctRule = func() struct{ x, w []float64 } {
	x := make([]float64, nctNodes)
	w := make([]float64, nctNodes)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	return struct{ x, w []float64 }{x, w}
}()

// noncentralTLogProb returns the log density of the noncentral t distribution
// with nu degrees of freedom and noncentrality mu at t.
func noncentralTLogProb(t, nu, mu float64) float64 {
	if mu == 0 {
		return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}.LogProb(t)
	}
	a := t*t + nu
	z := t * mu / math.Sqrt(a)
	lgHalf, _ := math.Lgamma(nu / 2)
	logC := math.Ln2 + (nu/2)*math.Log(nu) - 0.5*math.Log(2*math.Pi) - (nu/2)*math.Ln2 - lgHalf
	return logC - (nu+1)/2*math.Log(a) - mu*mu*nu/(2*a) + logMomentIntegral(z, nu)
}

// noncentralTProb returns the density of the noncentral t distribution.
func noncentralTProb(t, nu, mu float64) float64 {
	return math.Exp(noncentralTLogProb(t, nu, mu))
}

// logMomentIntegral returns log of the integral over [0, inf) of y^nu exp(-(y-z)^2/2).
func logMomentIntegral(z, nu float64) float64 {
	// mode solves y^2 - z y - nu = 0; the second form avoids cancellation for z < 0
	root := math.Sqrt(z*z + 4*nu)
	var mode float64
	if z >= 0 {
		mode = (z + root) / 2
	} else {
		mode = 2 * nu / (root - z)
	}

	h := func(y float64) float64 {
		d := y - z
		return nu*math.Log(y) - d*d/2
	}
	hMode := h(mode)
	sigma := 1 / math.Sqrt(1+nu/(mode*mode))

	hi := mode + sigma
	for i := 0; i < 64 && hMode-h(hi) < nctDrop; i++ {
		hi = mode + 2*(hi-mode)
	}
	lo := mode - sigma
	for i := 0; i < 64 && lo > 0 && hMode-h(lo) < nctDrop; i++ {
		lo = mode - 2*(mode-lo)
	}
	if lo < 0 {
		lo = 0
	}

	var sum float64
	width := (hi - lo) / nctPanels
	half := width / 2
	for p := 0; p < nctPanels; p++ {
		center := lo + width*float64(p) + half
		var s float64
		for i, x := range nctRule.x {
			s += nctRule.w[i] * math.Exp(h(center+half*x)-hMode)
		}
		sum += s * half
	}
	return hMode + math.Log(sum)
}
