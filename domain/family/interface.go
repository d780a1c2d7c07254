package family

import (
	"math"
	"strconv"

	"bayesplay/domain/core"
	"bayesplay/domain/params"
)

// values holds the resolved, validated parameter values of an interface.
type values map[params.ParameterName]float64

// PriorInterface is a prior family paired with exactly its validated parameters.
// The only way to obtain a usable one is NewPriorInterface.
type PriorInterface struct {
	family PriorFamily
	def    params.ParamDefinition
	vals   values
}

// LikelihoodInterface is a likelihood family paired with exactly its validated parameters.
// The only way to obtain a usable one is NewLikelihoodInterface.
type LikelihoodInterface struct {
	family LikelihoodFamily
	def    params.ParamDefinition
	vals   values
}

// NewPriorInterface validates a raw family name and parameter list.
func NewPriorInterface(name string, raw []params.Param) (PriorInterface, error) {
	f, err := ParsePriorFamily(name)
	if err != nil {
		return PriorInterface{}, err
	}
	def, err := params.Parse(raw)
	if err != nil {
		return PriorInterface{}, err
	}
	return NewPriorInterfaceFromDefinition(f, def)
}

// NewPriorInterfaceFromDefinition validates an already parsed definition.
func NewPriorInterfaceFromDefinition(f PriorFamily, def params.ParamDefinition) (PriorInterface, error) {
	s, ok := priorSchemas[f]
	if !ok {
		return PriorInterface{}, core.NewUnknownFamilyError(string(f))
	}
	vals, err := validate(string(f), s, def)
	if err != nil {
		return PriorInterface{}, err
	}
	return PriorInterface{family: f, def: clone(def), vals: vals}, nil
}

// NewLikelihoodInterface validates a raw family name and parameter list.
func NewLikelihoodInterface(name string, raw []params.Param) (LikelihoodInterface, error) {
	f, err := ParseLikelihoodFamily(name)
	if err != nil {
		return LikelihoodInterface{}, err
	}
	def, err := params.Parse(raw)
	if err != nil {
		return LikelihoodInterface{}, err
	}
	return NewLikelihoodInterfaceFromDefinition(f, def)
}

// NewLikelihoodInterfaceFromDefinition validates an already parsed definition.
func NewLikelihoodInterfaceFromDefinition(f LikelihoodFamily, def params.ParamDefinition) (LikelihoodInterface, error) {
	s, ok := likelihoodSchemas[f]
	if !ok {
		return LikelihoodInterface{}, core.NewUnknownFamilyError(string(f))
	}
	vals, err := validate(string(f), s, def)
	if err != nil {
		return LikelihoodInterface{}, err
	}
	return LikelihoodInterface{family: f, def: clone(def), vals: vals}, nil
}

// Family returns the validated family.
func (pi PriorInterface) Family() PriorFamily { return pi.family }

// Params returns a copy of the validated definition.
func (pi PriorInterface) Params() params.ParamDefinition { return clone(pi.def) }

// Value returns a validated parameter value.
func (pi PriorInterface) Value(name params.ParameterName) (float64, bool) {
	v, ok := pi.vals[name]
	return v, ok
}

// Valid reports whether the interface came from the validating constructor.
func (pi PriorInterface) Valid() bool { return pi.vals != nil }

// Family returns the validated family.
func (li LikelihoodInterface) Family() LikelihoodFamily { return li.family }

// Params returns a copy of the validated definition.
func (li LikelihoodInterface) Params() params.ParamDefinition { return clone(li.def) }

// Value returns a validated parameter value.
func (li LikelihoodInterface) Value(name params.ParameterName) (float64, bool) {
	v, ok := li.vals[name]
	return v, ok
}

// Valid reports whether the interface came from the validating constructor.
func (li LikelihoodInterface) Valid() bool { return li.vals != nil }

// validate applies the schema to a definition. Checks run in a fixed order so the
// reported error is deterministic: duplicates, surplus names, missing names, ranges.
func validate(fam string, s schema, def params.ParamDefinition) (values, error) {
	vals := make(values, len(def))
	for _, setting := range def {
		if _, dup := vals[setting.Name]; dup {
			return nil, core.NewDuplicateParameterError(fam, string(setting.Name))
		}
		if !s.accepts(setting.Name) {
			return nil, core.NewUnexpectedParameterError(fam, string(setting.Name))
		}
		vals[setting.Name] = setting.Value
	}

	for _, name := range s.required {
		if _, ok := vals[name]; !ok {
			return nil, core.NewMissingParameterError(fam, string(name))
		}
	}

	for _, setting := range def {
		if math.IsNaN(setting.Value) || math.IsInf(setting.Value, 0) {
			return nil, core.NewInvalidParameterError(fam, string(setting.Name), setting.Value, "must be finite")
		}
	}

	for _, c := range s.constraints {
		v, ok := vals[c.name]
		if !ok {
			continue
		}
		if !c.ok(v, vals) {
			return nil, core.NewInvalidParameterError(fam, string(c.name), v, c.desc)
		}
	}
	return vals, nil
}

func clone(def params.ParamDefinition) params.ParamDefinition {
	return append(params.ParamDefinition(nil), def...)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatSupport(s core.Support) string {
	return "[" + formatBound(s.Lower) + ", " + formatBound(s.Upper) + "]"
}
