// Package modelfile reads model documents: a likelihood, a prior and an
// optional null prior, written as YAML or JSON.
//
// Documents are checked against a JSON Schema reflected from the Go types
// before any family or parameter validation happens.
package modelfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/swaggest/jsonschema-go"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"bayesplay/app"
	"bayesplay/domain/core"
	"bayesplay/domain/params"
)

// Format is the encoding of a model document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrInvalidDocument is returned when a document does not match the schema.
var ErrInvalidDocument = fmt.Errorf("%w: invalid model document", core.ErrValidation)

// Param is a parameter entry of a component.
type Param struct {
	_     struct{} `additionalProperties:"false"`
	Name  string   `json:"name" yaml:"name" required:"true" enum:"mean,sd,se,location,scale,df,point,alpha,beta,ll,ul,min,max,d,n,n1,n2,t,successes,trials" description:"Parameter name"`
	Value float64  `json:"value" yaml:"value" required:"true" description:"Parameter value"`
}

// Component is a family with its parameters.
type Component struct {
	_      struct{} `additionalProperties:"false"`
	Family string   `json:"family" yaml:"family" required:"true" minLength:"1" description:"Distribution family, case-insensitive"`
	Params []Param  `json:"params" yaml:"params" required:"true" description:"Family parameters in any order"`
}

// Document is a complete model file.
type Document struct {
	_          struct{}   `additionalProperties:"false"`
	Likelihood Component  `json:"likelihood" yaml:"likelihood" required:"true" description:"Likelihood of the observed data"`
	Prior      Component  `json:"prior" yaml:"prior" required:"true" description:"Prior of the alternative hypothesis"`
	NullPrior  *Component `json:"null_prior,omitempty" yaml:"null_prior,omitempty" description:"Prior of the null hypothesis, used for Bayes factors"`
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DocumentError lists every schema violation of a document.
type DocumentError struct {
	Errors []FieldError `json:"errors"`
}

func (e *DocumentError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(parts, "; "))
}

func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}

// App converts the component for the model service.
func (c Component) App() app.Component {
	ps := make([]params.Param, len(c.Params))
	for i, p := range c.Params {
		ps[i] = params.Param{Name: p.Name, Value: p.Value}
	}
	return app.Component{Family: c.Family, Params: ps}
}

var (
	schemaOnce  sync.Once
	schemaBytes []byte
	schemaErr   error
)

// Schema returns the JSON Schema of Document.
func Schema() ([]byte, error) {
	schemaOnce.Do(func() {
		r := jsonschema.Reflector{}
		var s jsonschema.Schema
		s, schemaErr = r.Reflect(Document{}, jsonschema.InlineRefs)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("reflect model document schema: %w", schemaErr)
			return
		}
		s.WithTitle("bayesplay model")
		schemaBytes, schemaErr = json.MarshalIndent(s, "", "  ")
	})
	return schemaBytes, schemaErr
}

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", core.NewInvalidInputError(fmt.Sprintf("unsupported model file extension %q", filepath.Ext(path)))
	}
}

// Load reads and validates a model file.
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes and validates a model document.
func Parse(data []byte, format Format) (*Document, error) {
	body, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(body); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode model document: %w", err)
	}
	return &doc, nil
}

// Validate checks a JSON document against the schema.
func Validate(body []byte) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return &DocumentError{Errors: []FieldError{{Field: "(root)", Message: "document is empty"}}}
	}

	schemaDoc, err := Schema()
	if err != nil {
		return err
	}
	sch, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaDoc))
	if err != nil {
		return fmt.Errorf("gojsonschema.NewSchema: %w", err)
	}

	res, err := sch.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &DocumentError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if res.Valid() {
		return nil
	}

	errs := make([]FieldError, 0, len(res.Errors()))
	for _, re := range res.Errors() {
		errs = append(errs, FieldError{Field: re.Field(), Message: re.Description()})
	}
	return &DocumentError{Errors: errs}
}

func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &DocumentError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
		}
		if raw == nil {
			return nil, nil
		}
		body, err := json.Marshal(raw)
		if err != nil {
			var ute *json.UnsupportedTypeError
			if errors.As(err, &ute) {
				return nil, &DocumentError{Errors: []FieldError{{Field: "(root)", Message: "mapping keys must be strings"}}}
			}
			return nil, err
		}
		return body, nil
	default:
		return nil, core.NewInvalidInputError(fmt.Sprintf("unsupported model format %q", format))
	}
}
