package ports

// Function is implemented by every evaluable object: priors, likelihoods,
// models and posteriors.
type Function interface {
	// Function evaluates at a single point and reports points outside the support as errors
	Function(x float64) (float64, error)

	// FunctionVec evaluates a batch. Points outside the support yield nil cells;
	// only structurally invalid input fails the call.
	FunctionVec(xs []float64) ([]*float64, error)
}

// Integrator is implemented by objects with a meaningful integral over the
// parameter. Likelihoods do not implement it.
type Integrator interface {
	// Integrate over [lower, upper] intersected with the support. A nil bound
	// selects the support boundary on that side.
	Integrate(lower, upper *float64) (float64, error)
}

// Density is a Function that can also be integrated.
type Density interface {
	Function
	Integrator
}
