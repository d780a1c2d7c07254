package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bayesplay/domain/distribution"
	"bayesplay/domain/family"
	"bayesplay/domain/model"
	"bayesplay/domain/params"
	"bayesplay/internal"
	"bayesplay/internal/quadrature"
)

// Component names a distribution family and its parameters as they arrive
// from a model file or a request body.
type Component struct {
	Family string         `json:"family" yaml:"family"`
	Params []params.Param `json:"params" yaml:"params"`
}

func (c Component) String() string {
	return fmt.Sprintf("%s%v", c.Family, c.Params)
}

// ModelService builds priors, likelihoods, models and posteriors. Models and
// posteriors all integrate with one quadrature configuration.
type ModelService struct {
	quad   quadrature.Config
	logger *slog.Logger
}

// Comparison holds the evidence of two models sharing a likelihood and their ratio.
type Comparison struct {
	H1        model.Evidence
	H0        model.Evidence
	BF10      float64
	RuntimeMs int64
}

// NewModelService creates a model service. A nil logger uses the process default.
func NewModelService(quad quadrature.Config, logger *slog.Logger) *ModelService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if quad.Logger == nil {
		quad.Logger = logger
	}
	return &ModelService{quad: quad, logger: logger}
}

// BuildPrior validates c as a prior and builds it.
func (s *ModelService) BuildPrior(c Component) (distribution.Prior, error) {
	pi, err := family.NewPriorInterface(c.Family, c.Params)
	if err != nil {
		return distribution.Prior{}, err
	}
	return distribution.NewPrior(pi)
}

// BuildLikelihood validates c as a likelihood and builds it.
func (s *ModelService) BuildLikelihood(c Component) (distribution.Likelihood, error) {
	li, err := family.NewLikelihoodInterface(c.Family, c.Params)
	if err != nil {
		return distribution.Likelihood{}, err
	}
	return distribution.NewLikelihood(li)
}

// BuildModel builds prior x likelihood.
func (s *ModelService) BuildModel(prior, likelihood Component) (model.Model, error) {
	p, err := s.BuildPrior(prior)
	if err != nil {
		return model.Model{}, err
	}
	l, err := s.BuildLikelihood(likelihood)
	if err != nil {
		return model.Model{}, err
	}
	return model.New(p, l).WithQuadrature(s.quad), nil
}

// BuildPosterior builds and normalizes prior x likelihood.
func (s *ModelService) BuildPosterior(ctx context.Context, prior, likelihood Component) (model.Posterior, error) {
	m, err := s.BuildModel(prior, likelihood)
	if err != nil {
		return model.Posterior{}, err
	}
	post, err := model.NewPosteriorContext(ctx, m)
	if err != nil {
		return model.Posterior{}, err
	}
	s.logger.Debug("posterior normalized",
		"prior", prior.Family, "likelihood", likelihood.Family, "constant", post.NormalizingConstant())
	return post, nil
}

// Evidence returns the marginal likelihood of prior x likelihood.
func (s *ModelService) Evidence(ctx context.Context, prior, likelihood Component) (model.Evidence, error) {
	m, err := s.BuildModel(prior, likelihood)
	if err != nil {
		return model.Evidence{}, err
	}
	return m.EvidenceContext(ctx)
}

// CompareModels integrates h1 x likelihood and h0 x likelihood concurrently and
// returns both evidences with BF10 = Z1 / Z0.
func (s *ModelService) CompareModels(ctx context.Context, likelihood, h1, h0 Component) (*Comparison, error) {
	startTime := time.Now()

	l, err := s.BuildLikelihood(likelihood)
	if err != nil {
		return nil, err
	}
	p1, err := s.BuildPrior(h1)
	if err != nil {
		return nil, fmt.Errorf("alternative prior: %w", err)
	}
	p0, err := s.BuildPrior(h0)
	if err != nil {
		return nil, fmt.Errorf("null prior: %w", err)
	}

	var e1, e0 model.Evidence
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		e1, err = model.New(p1, l).WithQuadrature(s.quad).EvidenceContext(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		e0, err = model.New(p0, l).WithQuadrature(s.quad).EvidenceContext(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bf, err := model.BayesFactor(e1, e0)
	if err != nil {
		return nil, err
	}

	result := &Comparison{
		H1:        e1,
		H0:        e0,
		BF10:      bf,
		RuntimeMs: time.Since(startTime).Milliseconds(),
	}
	s.logger.Info("models compared",
		"likelihood", likelihood.Family, "h1", h1.Family, "h0", h0.Family,
		"bf10", bf, "runtime_ms", result.RuntimeMs)
	return result, nil
}
