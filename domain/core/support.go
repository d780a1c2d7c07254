package core

import "math"

// Support is the closed interval on which a function is defined.
// Either bound may be infinite.
type Support struct {
	Lower float64
	Upper float64
}

// RealLine is the support of functions defined everywhere.
var RealLine = Support{Lower: math.Inf(-1), Upper: math.Inf(1)}

// UnitInterval is the support of functions of a probability.
var UnitInterval = Support{Lower: 0, Upper: 1}

// NewSupport creates a support from explicit bounds.
func NewSupport(lower, upper float64) Support {
	return Support{Lower: lower, Upper: upper}
}

// Contains reports whether x lies in the closed interval.
func (s Support) Contains(x float64) bool {
	return x >= s.Lower && x <= s.Upper
}

// Intersect returns the overlap of two supports. The result may be empty.
func (s Support) Intersect(o Support) Support {
	return Support{Lower: math.Max(s.Lower, o.Lower), Upper: math.Min(s.Upper, o.Upper)}
}

// Empty reports whether no point lies in the support.
func (s Support) Empty() bool {
	return !(s.Lower <= s.Upper)
}

// Bounded reports whether both ends are finite.
func (s Support) Bounded() bool {
	return !math.IsInf(s.Lower, 0) && !math.IsInf(s.Upper, 0)
}

// Clamp resolves optional integration bounds against the support.
// A nil bound selects the support boundary on that side.
func (s Support) Clamp(lower, upper *float64) Support {
	out := s
	if lower != nil {
		out.Lower = math.Max(*lower, s.Lower)
	}
	if upper != nil {
		out.Upper = math.Min(*upper, s.Upper)
	}
	return out
}

// Check returns a DomainError when x is outside the support.
func (s Support) Check(x float64) error {
	if !s.Contains(x) {
		return NewDomainError(x, s.Lower, s.Upper)
	}
	return nil
}
