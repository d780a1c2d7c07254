package params

import (
	"bayesplay/domain/core"
)

// ParameterName identifies a recognized distribution parameter
type ParameterName string

const (
	Mean      ParameterName = "mean"
	SD        ParameterName = "sd"
	SE        ParameterName = "se"
	Location  ParameterName = "location"
	Scale     ParameterName = "scale"
	DF        ParameterName = "df"
	Point     ParameterName = "point"
	Alpha     ParameterName = "alpha"
	Beta      ParameterName = "beta"
	LL        ParameterName = "ll"
	UL        ParameterName = "ul"
	Min       ParameterName = "min"
	Max       ParameterName = "max"
	D         ParameterName = "d"
	N         ParameterName = "n"
	N1        ParameterName = "n1"
	N2        ParameterName = "n2"
	T         ParameterName = "t"
	Successes ParameterName = "successes"
	Trials    ParameterName = "trials"
)

var knownNames = map[ParameterName]struct{}{
	Mean: {}, SD: {}, SE: {}, Location: {}, Scale: {}, DF: {}, Point: {},
	Alpha: {}, Beta: {}, LL: {}, UL: {}, Min: {}, Max: {},
	D: {}, N: {}, N1: {}, N2: {}, T: {}, Successes: {}, Trials: {},
}

// ParseParameterName converts a raw name into a ParameterName.
func ParseParameterName(s string) (ParameterName, error) {
	name := ParameterName(s)
	if _, ok := knownNames[name]; !ok {
		return "", core.NewUnknownParameterError(s)
	}
	return name, nil
}

func (n ParameterName) String() string {
	return string(n)
}

// ParamSetting binds a value to a parameter name
type ParamSetting struct {
	Name  ParameterName `json:"name"`
	Value float64       `json:"value"`
}

// ParamDefinition is an ordered list of settings. Lookup is by name.
type ParamDefinition []ParamSetting

// Get returns the first value set for name.
func (d ParamDefinition) Get(name ParameterName) (float64, bool) {
	for _, s := range d {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

// Names returns the parameter names in definition order.
func (d ParamDefinition) Names() []ParameterName {
	names := make([]ParameterName, len(d))
	for i, s := range d {
		names[i] = s.Name
	}
	return names
}

// Param is the raw name/value pair supplied by callers before parsing.
type Param struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// P is shorthand for building a Param.
func P(name ParameterName, value float64) Param {
	return Param{Name: string(name), Value: value}
}

// Parse converts raw params into a definition, failing on the first unknown name.
func Parse(raw []Param) (ParamDefinition, error) {
	def := make(ParamDefinition, 0, len(raw))
	for _, p := range raw {
		name, err := ParseParameterName(p.Name)
		if err != nil {
			return nil, err
		}
		def = append(def, ParamSetting{Name: name, Value: p.Value})
	}
	return def, nil
}
