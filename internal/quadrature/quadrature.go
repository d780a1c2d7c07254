// Package quadrature integrates scalar functions over finite and infinite intervals
// with globally adaptive Gauss-Legendre bisection.
//
// The interval is first split at every breakpoint. Each piece is mapped onto a
// finite interval, so a breakpoint always sits at a finite end of a mapped piece
// where the substitution does not stretch it, and panels are cut at
// geometrically shrinking distances from every finite end.
//
// Each panel is estimated with a 15-point rule and the 7-point rule on the same
// panel provides the error estimate. The panel with the largest estimated error
// is bisected until the summed error meets the tolerance or the subdivision
// ceiling is reached. A panel too narrow to bisect in floating point is accepted
// with its estimate, which lets integrable endpoint singularities converge.
//
// Node tables are computed once at package init and only read afterwards, so
// Integrate is safe for concurrent use.
package quadrature

import (
	"container/heap"
	"context"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"

	"bayesplay/domain/core"
	"bayesplay/internal"
)

const (
	lowOrder  = 7
	highOrder = 15

	// endCuts is the number of halvings applied toward each finite end of a piece.
	endCuts = 30
)

// rule is a Gauss-Legendre rule on [-1, 1].
type rule struct {
	x []float64
	w []float64
}

var (
	low  = newRule(lowOrder)
	high = newRule(highOrder)
)

func newRule(n int) rule {
	r := rule{x: make([]float64, n), w: make([]float64, n)}
	quad.Legendre{}.FixedLocations(r.x, r.w, -1, 1)
	return r
}

// Config controls tolerance and effort of a single integration.
type Config struct {
	RelTol          float64
	AbsTol          float64
	MaxSubdivisions int
	// InitialPanels is the number of equal panels each piece starts with.
	InitialPanels int
	// Points are interior locations where the integrand changes character,
	// such as a narrow peak. The interval is split at each of them.
	Points []float64
	Logger *slog.Logger
}

// DefaultConfig returns the tolerances used by the distribution objects.
func DefaultConfig() Config {
	return Config{
		RelTol:          1e-10,
		AbsTol:          0,
		MaxSubdivisions: 2000,
		InitialPanels:   4,
	}
}

// WithPoints returns a copy of c with additional breakpoints.
func (c Config) WithPoints(points ...float64) Config {
	out := c
	out.Points = append(append([]float64(nil), c.Points...), points...)
	return out
}

// Integrate returns the definite integral of f over [a, b]. Either bound may be
// infinite. An empty or inverted interval integrates to exactly zero.
func Integrate(f func(float64) float64, a, b float64, cfg Config) (float64, error) {
	return IntegrateContext(context.Background(), f, a, b, cfg)
}

// IntegrateContext is Integrate with cancellation checked between subdivisions.
func IntegrateContext(ctx context.Context, f func(float64) float64, a, b float64, cfg Config) (float64, error) {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0, core.NewInvalidInputError("integration bound is NaN")
	}
	if !(a < b) {
		return 0, nil
	}
	cfg = normalize(cfg)
	trace := cfg.Logger != nil && cfg.Logger.Enabled(ctx, internal.LevelTrace)

	bounds := split(a, b, cfg.Points)
	var h panelHeap
	for i := 0; i+1 < len(bounds); i++ {
		m := newMapping(bounds[i], bounds[i+1])
		g := m.integrand(f)
		edges := m.edges(cfg.InitialPanels)
		for j := 0; j+1 < len(edges); j++ {
			p := estimate(g, edges[j], edges[j+1])
			if !p.finite() {
				return 0, failure(cfg, a, b, p.value, p.err, len(h)+1, "integrand is not finite")
			}
			h = append(h, p)
		}
	}
	heap.Init(&h)

	// settled holds panels accepted without further bisection
	var settled float64
	var nSettled int
	for {
		total, errSum := h.totals()
		total += settled
		if errSum <= math.Max(cfg.AbsTol, cfg.RelTol*math.Abs(total)) {
			return total, nil
		}
		if h.Len()+nSettled >= cfg.MaxSubdivisions {
			return 0, failure(cfg, a, b, total, errSum, h.Len()+nSettled, "subdivision limit reached")
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		worst := heap.Pop(&h).(panel)
		if !worst.divisible() {
			settled += worst.value
			nSettled++
			if trace {
				cfg.Logger.Log(ctx, internal.LevelTrace, "panel settled at roundoff width",
					"lo", worst.lo, "hi", worst.hi, "value", worst.value, "error", worst.err)
			}
			continue
		}
		mid := worst.lo + (worst.hi-worst.lo)/2
		left := estimate(worst.g, worst.lo, mid)
		right := estimate(worst.g, mid, worst.hi)
		if !left.finite() || !right.finite() {
			return 0, failure(cfg, a, b, total, errSum, h.Len()+nSettled+1, "integrand is not finite")
		}
		if trace {
			cfg.Logger.Log(ctx, internal.LevelTrace, "panel bisected",
				"lo", worst.lo, "hi", worst.hi, "error", worst.err, "refined", left.err+right.err)
		}
		heap.Push(&h, left)
		heap.Push(&h, right)
	}
}

// split returns a, the finite breakpoints strictly inside (a, b) in order, and b.
func split(a, b float64, points []float64) []float64 {
	out := []float64{a}
	inner := make([]float64, 0, len(points))
	for _, x := range points {
		if x > a && x < b && !math.IsInf(x, 0) {
			inner = append(inner, x)
		}
	}
	sort.Float64s(inner)
	for _, x := range inner {
		if x > out[len(out)-1] {
			out = append(out, x)
		}
	}
	return append(out, b)
}

func normalize(cfg Config) Config {
	def := DefaultConfig()
	if !(cfg.RelTol > 0) && !(cfg.AbsTol > 0) {
		cfg.RelTol = def.RelTol
	}
	if cfg.MaxSubdivisions <= 0 {
		cfg.MaxSubdivisions = def.MaxSubdivisions
	}
	if cfg.InitialPanels <= 0 {
		cfg.InitialPanels = def.InitialPanels
	}
	return cfg
}

func failure(cfg Config, a, b, estimate, errEst float64, n int, reason string) error {
	if cfg.Logger != nil {
		cfg.Logger.Debug("quadrature failed",
			"lower", a, "upper", b, "estimate", estimate, "error", errEst,
			"subdivisions", n, "reason", reason)
	}
	return &core.IntegrationError{
		Lower:         a,
		Upper:         b,
		Estimate:      estimate,
		ErrorEstimate: errEst,
		Subdivisions:  n,
		Reason:        reason,
	}
}

type panel struct {
	g      func(float64) float64
	lo, hi float64
	value  float64
	err    float64
}

func (p panel) finite() bool {
	return !math.IsNaN(p.value) && !math.IsInf(p.value, 0) && !math.IsNaN(p.err) && !math.IsInf(p.err, 0)
}

// divisible reports whether bisection still yields two panels wider than
// floating-point resolution.
func (p panel) divisible() bool {
	mid := p.lo + (p.hi-p.lo)/2
	if !(mid > p.lo && mid < p.hi) {
		return false
	}
	return p.hi-p.lo > 16*epsilon*math.Max(math.Abs(p.lo), math.Abs(p.hi))
}

const epsilon = 0x1p-52

func estimate(g func(float64) float64, lo, hi float64) panel {
	value := apply(g, high, lo, hi)
	return panel{
		g:     g,
		lo:    lo,
		hi:    hi,
		value: value,
		err:   math.Abs(value - apply(g, low, lo, hi)),
	}
}

// apply evaluates rule r on [lo, hi]. Nodes that round onto an end are moved
// to the nearest float inside, so g is never sampled at lo or hi.
func apply(g func(float64) float64, r rule, lo, hi float64) float64 {
	half := (hi - lo) / 2
	center := lo + half
	var sum float64
	for i, u := range r.x {
		x := center + half*u
		if x <= lo {
			x = math.Nextafter(lo, hi)
		} else if x >= hi {
			x = math.Nextafter(hi, lo)
		}
		sum += r.w[i] * g(x)
	}
	return sum * half
}

// panelHeap is a max-heap on the error estimate.
type panelHeap []panel

func (h panelHeap) Len() int           { return len(h) }
func (h panelHeap) Less(i, j int) bool { return h[i].err > h[j].err }
func (h panelHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *panelHeap) Push(x any)        { *h = append(*h, x.(panel)) }
func (h *panelHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

func (h panelHeap) totals() (value, errSum float64) {
	for _, p := range h {
		value += p.value
		errSum += p.err
	}
	return value, errSum
}

type mappingKind int

const (
	finite mappingKind = iota
	upperInfinite
	lowerInfinite
	bothInfinite
)

// mapping sends t from a finite interval onto [a, b].
type mapping struct {
	kind mappingKind
	a, b float64
}

func newMapping(a, b float64) mapping {
	switch {
	case math.IsInf(a, -1) && math.IsInf(b, 1):
		return mapping{kind: bothInfinite}
	case math.IsInf(b, 1):
		return mapping{kind: upperInfinite, a: a}
	case math.IsInf(a, -1):
		return mapping{kind: lowerInfinite, b: b}
	default:
		return mapping{kind: finite, a: a, b: b}
	}
}

// span is the interval of t.
func (m mapping) span() (float64, float64) {
	switch m.kind {
	case bothInfinite:
		return -1, 1
	case upperInfinite, lowerInfinite:
		return 0, 1
	default:
		return m.a, m.b
	}
}

// forward returns x(t) and dx/dt.
func (m mapping) forward(t float64) (float64, float64) {
	switch m.kind {
	case bothInfinite:
		d := 1 - t*t
		return t / d, (1 + t*t) / (d * d)
	case upperInfinite:
		d := 1 - t
		return m.a + t/d, 1 / (d * d)
	case lowerInfinite:
		return m.b - (1-t)/t, 1 / (t * t)
	default:
		return t, 1
	}
}

// integrand returns f(x(t)) dx/dt. Where the substitution overflows, at
// the infinite ends, the integrand is taken as zero.
func (m mapping) integrand(f func(float64) float64) func(float64) float64 {
	return func(t float64) float64 {
		x, dx := m.forward(t)
		if math.IsInf(x, 0) || math.IsInf(dx, 0) {
			return 0
		}
		return f(x) * dx
	}
}

// edges returns sorted panel boundaries in t. The span is split into n equal
// panels, and every end of the span that maps to a finite x gets cuts at
// geometrically shrinking distances, so features there much narrower than a
// panel are still sampled.
func (m mapping) edges(n int) []float64 {
	lo, hi := m.span()
	width := (hi - lo) / float64(n)

	cuts := make([]float64, 0, n+1+2*endCuts)
	for k := 0; k <= n; k++ {
		cuts = append(cuts, lo+float64(k)*width)
	}
	cuts[n] = hi

	lowerFinite := m.kind == finite || m.kind == upperInfinite
	upperFinite := m.kind == finite || m.kind == lowerInfinite
	resolution := 16 * epsilon * math.Max(math.Abs(lo), math.Abs(hi))
	d := width
	for k := 0; k < endCuts; k++ {
		d /= 2
		if d <= resolution {
			break
		}
		if lowerFinite && lo+d > lo {
			cuts = append(cuts, lo+d)
		}
		if upperFinite && hi-d < hi {
			cuts = append(cuts, hi-d)
		}
	}

	sort.Float64s(cuts)
	out := cuts[:1]
	for _, c := range cuts[1:] {
		if c > out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}
