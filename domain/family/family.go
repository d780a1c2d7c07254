package family

import (
	"math"
	"strings"

	"bayesplay/domain/core"
	"bayesplay/domain/params"
)

// PriorFamily is a supported prior distribution shape
type PriorFamily string

const (
	PriorNormal   PriorFamily = "normal"
	PriorCauchy   PriorFamily = "cauchy"
	PriorStudentT PriorFamily = "student_t"
	PriorBeta     PriorFamily = "beta"
	PriorUniform  PriorFamily = "uniform"
	PriorPoint    PriorFamily = "point"
)

// LikelihoodFamily is a supported likelihood shape
type LikelihoodFamily string

const (
	LikelihoodNormal       LikelihoodFamily = "normal"
	LikelihoodStudentT     LikelihoodFamily = "student_t"
	LikelihoodNoncentralD  LikelihoodFamily = "noncentral_d"
	LikelihoodNoncentralD2 LikelihoodFamily = "noncentral_d2"
	LikelihoodNoncentralT  LikelihoodFamily = "noncentral_t"
	LikelihoodBinomial     LikelihoodFamily = "binomial"
)

// PriorFamilies lists every prior family in a stable order.
var PriorFamilies = []PriorFamily{
	PriorNormal, PriorCauchy, PriorStudentT, PriorBeta, PriorUniform, PriorPoint,
}

// LikelihoodFamilies lists every likelihood family in a stable order.
var LikelihoodFamilies = []LikelihoodFamily{
	LikelihoodNormal, LikelihoodStudentT, LikelihoodNoncentralD,
	LikelihoodNoncentralD2, LikelihoodNoncentralT, LikelihoodBinomial,
}

// ParsePriorFamily resolves a family name. Matching ignores case and surrounding space.
func ParsePriorFamily(s string) (PriorFamily, error) {
	f := PriorFamily(normalizeName(s))
	if _, ok := priorSchemas[f]; !ok {
		return "", core.NewUnknownFamilyError(s)
	}
	return f, nil
}

// ParseLikelihoodFamily resolves a family name. Matching ignores case and surrounding space.
func ParseLikelihoodFamily(s string) (LikelihoodFamily, error) {
	f := LikelihoodFamily(normalizeName(s))
	if _, ok := likelihoodSchemas[f]; !ok {
		return "", core.NewUnknownFamilyError(s)
	}
	return f, nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RequiredParams returns the parameters the family cannot be built without.
func (f PriorFamily) RequiredParams() []params.ParameterName {
	return append([]params.ParameterName(nil), priorSchemas[f].required...)
}

// OptionalParams returns the parameters the family accepts but does not require.
func (f PriorFamily) OptionalParams() []params.ParameterName {
	return append([]params.ParameterName(nil), priorSchemas[f].optional...)
}

// Support returns the widest support of the family before truncation.
func (f PriorFamily) Support() core.Support {
	return priorSchemas[f].support
}

func (f PriorFamily) String() string {
	return string(f)
}

// RequiredParams returns the parameters the family cannot be built without.
func (f LikelihoodFamily) RequiredParams() []params.ParameterName {
	return append([]params.ParameterName(nil), likelihoodSchemas[f].required...)
}

// OptionalParams returns the parameters the family accepts but does not require.
func (f LikelihoodFamily) OptionalParams() []params.ParameterName {
	return append([]params.ParameterName(nil), likelihoodSchemas[f].optional...)
}

// Support returns the range of the parameter over which the likelihood is defined.
func (f LikelihoodFamily) Support() core.Support {
	return likelihoodSchemas[f].support
}

func (f LikelihoodFamily) String() string {
	return string(f)
}

// constraint is a range rule on one parameter. Rules may look at other
// parameters; absent optional parameters are skipped.
type constraint struct {
	name params.ParameterName
	desc string
	ok   func(v float64, vals values) bool
}

type schema struct {
	required    []params.ParameterName
	optional    []params.ParameterName
	constraints []constraint
	support     core.Support
}

func (s schema) accepts(name params.ParameterName) bool {
	for _, n := range s.required {
		if n == name {
			return true
		}
	}
	for _, n := range s.optional {
		if n == name {
			return true
		}
	}
	return false
}

func positive(name params.ParameterName) constraint {
	return constraint{name: name, desc: "must be > 0", ok: func(v float64, _ values) bool { return v > 0 }}
}

func integer(name params.ParameterName, min float64) constraint {
	return constraint{
		name: name,
		desc: "must be an integer >= " + formatBound(min),
		ok:   func(v float64, _ values) bool { return v == math.Trunc(v) && v >= min },
	}
}

func above(name params.ParameterName, min float64) constraint {
	return constraint{
		name: name,
		desc: "must be > " + formatBound(min),
		ok:   func(v float64, _ values) bool { return v > min },
	}
}

// lowerLimit requires ll to sit below ul (when given) and inside the family's support.
func lowerLimit(sup core.Support) constraint {
	return constraint{
		name: params.LL,
		desc: "must be < ul and inside " + formatSupport(sup),
		ok: func(v float64, vals values) bool {
			if ul, ok := vals[params.UL]; ok && !(v < ul) {
				return false
			}
			return v >= sup.Lower && v < sup.Upper
		},
	}
}

func upperLimit(sup core.Support) constraint {
	return constraint{
		name: params.UL,
		desc: "must be > ll and inside " + formatSupport(sup),
		ok: func(v float64, vals values) bool {
			if ll, ok := vals[params.LL]; ok && !(v > ll) {
				return false
			}
			return v <= sup.Upper && v > sup.Lower
		},
	}
}

var truncation = []params.ParameterName{params.LL, params.UL}

var priorSchemas = map[PriorFamily]schema{
	PriorNormal: {
		required:    []params.ParameterName{params.Mean, params.SD},
		optional:    truncation,
		constraints: []constraint{positive(params.SD), lowerLimit(core.RealLine), upperLimit(core.RealLine)},
		support:     core.RealLine,
	},
	PriorCauchy: {
		required:    []params.ParameterName{params.Location, params.Scale},
		optional:    truncation,
		constraints: []constraint{positive(params.Scale), lowerLimit(core.RealLine), upperLimit(core.RealLine)},
		support:     core.RealLine,
	},
	PriorStudentT: {
		required: []params.ParameterName{params.Mean, params.SD, params.DF},
		optional: truncation,
		constraints: []constraint{
			positive(params.SD), positive(params.DF),
			lowerLimit(core.RealLine), upperLimit(core.RealLine),
		},
		support: core.RealLine,
	},
	PriorBeta: {
		required: []params.ParameterName{params.Alpha, params.Beta},
		optional: truncation,
		constraints: []constraint{
			positive(params.Alpha), positive(params.Beta),
			lowerLimit(core.UnitInterval), upperLimit(core.UnitInterval),
		},
		support: core.UnitInterval,
	},
	PriorUniform: {
		required: []params.ParameterName{params.Min, params.Max},
		constraints: []constraint{{
			name: params.Max,
			desc: "must be > min with a finite width max - min",
			ok: func(v float64, vals values) bool {
				return v > vals[params.Min] && !math.IsInf(v-vals[params.Min], 0)
			},
		}},
		support: core.RealLine,
	},
	PriorPoint: {
		required: []params.ParameterName{params.Point},
		support:  core.RealLine,
	},
}

var likelihoodSchemas = map[LikelihoodFamily]schema{
	LikelihoodNormal: {
		required:    []params.ParameterName{params.Mean, params.SE},
		constraints: []constraint{positive(params.SE)},
		support:     core.RealLine,
	},
	LikelihoodStudentT: {
		required:    []params.ParameterName{params.Mean, params.SD, params.DF},
		constraints: []constraint{positive(params.SD), positive(params.DF)},
		support:     core.RealLine,
	},
	LikelihoodNoncentralD: {
		required:    []params.ParameterName{params.D, params.N},
		constraints: []constraint{above(params.N, 1)},
		support:     core.RealLine,
	},
	LikelihoodNoncentralD2: {
		required: []params.ParameterName{params.D, params.N1, params.N2},
		constraints: []constraint{
			{name: params.N1, desc: "must be >= 1", ok: func(v float64, _ values) bool { return v >= 1 }},
			{
				name: params.N2,
				desc: "must be >= 1 with n1 + n2 > 2",
				ok:   func(v float64, vals values) bool { return v >= 1 && v+vals[params.N1] > 2 },
			},
		},
		support: core.RealLine,
	},
	LikelihoodNoncentralT: {
		required:    []params.ParameterName{params.T, params.DF},
		constraints: []constraint{positive(params.DF)},
		support:     core.RealLine,
	},
	LikelihoodBinomial: {
		required: []params.ParameterName{params.Successes, params.Trials},
		constraints: []constraint{
			integer(params.Trials, 1),
			{
				name: params.Successes,
				desc: "must be an integer in [0, trials]",
				ok: func(v float64, vals values) bool {
					return v == math.Trunc(v) && v >= 0 && v <= vals[params.Trials]
				},
			},
		},
		support: core.UnitInterval,
	},
}
