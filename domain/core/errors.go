package core

import (
	"errors"
	"fmt"
	"strconv"
)

// Domain errors - centralized error definitions
var (
	// Validation errors
	ErrValidation            = errors.New("validation failed")
	ErrUnknownFamily         = fmt.Errorf("%w: unknown family", ErrValidation)
	ErrUnknownParameter      = fmt.Errorf("%w: unknown parameter", ErrValidation)
	ErrMissingParameter      = fmt.Errorf("%w: missing parameter", ErrValidation)
	ErrInvalidParameterValue = fmt.Errorf("%w: invalid parameter value", ErrValidation)
	ErrDuplicateParameter    = fmt.Errorf("%w: duplicate parameter", ErrValidation)
	ErrUnexpectedParameter   = fmt.Errorf("%w: unexpected parameter", ErrValidation)

	// Evaluation errors
	ErrDomain       = errors.New("outside support")
	ErrNonFinite    = errors.New("non-finite result")
	ErrInvalidInput = errors.New("invalid input")

	// Integration errors
	ErrIntegration         = errors.New("integration failed")
	ErrDegeneratePosterior = errors.New("degenerate posterior")

	// Comparison errors
	ErrIncompatibleEvidence = errors.New("evidence computed against different likelihoods")
)

// ValidationError describes why a family/parameter configuration was rejected.
// Kind is one of the ErrValidation children.
type ValidationError struct {
	Kind       error
	Family     string
	Parameter  string
	Value      float64
	HasValue   bool
	Constraint string
}

func (e *ValidationError) Error() string {
	msg := e.Kind.Error()
	if errors.Is(e.Kind, ErrUnknownFamily) {
		return msg + fmt.Sprintf(" %q", e.Family)
	}
	switch {
	case e.Parameter != "" && e.HasValue:
		msg += fmt.Sprintf(" %q = %s", e.Parameter, strconv.FormatFloat(e.Value, 'g', -1, 64))
	case e.Parameter != "":
		msg += fmt.Sprintf(" %q", e.Parameter)
	}
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	}
	if e.Family != "" {
		msg += fmt.Sprintf(" for family %q", e.Family)
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// DomainError reports a point evaluated outside [Lower, Upper].
type DomainError struct {
	X     float64
	Lower float64
	Upper float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: x = %g not in [%g, %g]", ErrDomain, e.X, e.Lower, e.Upper)
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}

// IntegrationError reports quadrature that could not reach its tolerance.
type IntegrationError struct {
	Lower         float64
	Upper         float64
	Estimate      float64
	ErrorEstimate float64
	Subdivisions  int
	Reason        string
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v on [%g, %g]: %s (estimate %g, error %g, %d subdivisions)",
		ErrIntegration, e.Lower, e.Upper, e.Reason, e.Estimate, e.ErrorEstimate, e.Subdivisions)
}

func (e *IntegrationError) Unwrap() error {
	return ErrIntegration
}

// DegeneratePosteriorError reports a normalizing constant that is not finite and positive.
type DegeneratePosteriorError struct {
	Constant float64
}

func (e *DegeneratePosteriorError) Error() string {
	return fmt.Sprintf("%v: normalizing constant %g is not finite and strictly positive", ErrDegeneratePosterior, e.Constant)
}

func (e *DegeneratePosteriorError) Unwrap() error {
	return ErrDegeneratePosterior
}

// Error constructors with context
func NewUnknownFamilyError(family string) error {
	return &ValidationError{Kind: ErrUnknownFamily, Family: family}
}

func NewUnknownParameterError(name string) error {
	return &ValidationError{Kind: ErrUnknownParameter, Parameter: name}
}

func NewMissingParameterError(family, name string) error {
	return &ValidationError{Kind: ErrMissingParameter, Family: family, Parameter: name}
}

func NewDuplicateParameterError(family, name string) error {
	return &ValidationError{Kind: ErrDuplicateParameter, Family: family, Parameter: name}
}

func NewUnexpectedParameterError(family, name string) error {
	return &ValidationError{Kind: ErrUnexpectedParameter, Family: family, Parameter: name}
}

func NewInvalidParameterError(family, name string, value float64, constraint string) error {
	return &ValidationError{
		Kind:       ErrInvalidParameterValue,
		Family:     family,
		Parameter:  name,
		Value:      value,
		HasValue:   true,
		Constraint: constraint,
	}
}

func NewDomainError(x, lower, upper float64) error {
	return &DomainError{X: x, Lower: lower, Upper: upper}
}

func NewNonFiniteError(x, value float64) error {
	return fmt.Errorf("%w: f(%g) = %g", ErrNonFinite, x, value)
}

func NewInvalidInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

// IsPointwiseError reports errors that batch evaluation converts to an empty cell.
func IsPointwiseError(err error) bool {
	return errors.Is(err, ErrDomain) || errors.Is(err, ErrNonFinite)
}

func IsIntegrationError(err error) bool {
	return errors.Is(err, ErrIntegration)
}

func IsDegeneratePosteriorError(err error) bool {
	return errors.Is(err, ErrDegeneratePosterior)
}
