package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bayesplay/app"
	"bayesplay/domain/model"
	"bayesplay/internal/errors"
)

type priorEvaluateRequest struct {
	Prior app.Component `json:"prior"`
	X     []float64     `json:"x"`
}

type likelihoodEvaluateRequest struct {
	Likelihood app.Component `json:"likelihood"`
	X          []float64     `json:"x"`
}

type priorIntegrateRequest struct {
	Prior app.Component `json:"prior"`
	Lower *float64      `json:"lower"`
	Upper *float64      `json:"upper"`
}

type posteriorRequest struct {
	Prior      app.Component `json:"prior"`
	Likelihood app.Component `json:"likelihood"`
	X          []float64     `json:"x,omitempty"`
	Lower      *float64      `json:"lower,omitempty"`
	Upper      *float64      `json:"upper,omitempty"`
}

type bayesFactorRequest struct {
	Likelihood app.Component `json:"likelihood"`
	H1         app.Component `json:"h1"`
	H0         app.Component `json:"h0"`
}

type valuesResponse struct {
	Values []*float64 `json:"values"`
}

type valueResponse struct {
	Value float64 `json:"value"`
}

type evidenceResponse struct {
	Evidence float64 `json:"evidence"`
}

type bayesFactorResponse struct {
	H1   float64 `json:"h1"`
	H0   float64 `json:"h0"`
	BF10 float64 `json:"bf10"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bind decodes the JSON body, writing the error response on failure.
func (s *Server) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		s.writeError(c, errors.InvalidInput("malformed request body: "+err.Error()))
		return false
	}
	return true
}

func (s *Server) handlePriorEvaluate(c *gin.Context) {
	var req priorEvaluateRequest
	if !s.bind(c, &req) {
		return
	}
	prior, err := s.service.BuildPrior(req.Prior)
	if err != nil {
		s.writeError(c, err)
		return
	}
	values, err := prior.FunctionVec(req.X)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, valuesResponse{Values: values})
}

func (s *Server) handlePriorIntegrate(c *gin.Context) {
	var req priorIntegrateRequest
	if !s.bind(c, &req) {
		return
	}
	prior, err := s.service.BuildPrior(req.Prior)
	if err != nil {
		s.writeError(c, err)
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	v, err := prior.IntegrateContext(ctx, req.Lower, req.Upper)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, valueResponse{Value: v})
}

func (s *Server) handleLikelihoodEvaluate(c *gin.Context) {
	var req likelihoodEvaluateRequest
	if !s.bind(c, &req) {
		return
	}
	lik, err := s.service.BuildLikelihood(req.Likelihood)
	if err != nil {
		s.writeError(c, err)
		return
	}
	values, err := lik.FunctionVec(req.X)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, valuesResponse{Values: values})
}

func (s *Server) posterior(c *gin.Context, req posteriorRequest) (model.Posterior, bool) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	post, err := s.service.BuildPosterior(ctx, req.Prior, req.Likelihood)
	if err != nil {
		s.writeError(c, err)
		return model.Posterior{}, false
	}
	return post, true
}

func (s *Server) handlePosteriorEvaluate(c *gin.Context) {
	var req posteriorRequest
	if !s.bind(c, &req) {
		return
	}
	post, ok := s.posterior(c, req)
	if !ok {
		return
	}
	values, err := post.FunctionVec(req.X)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, valuesResponse{Values: values})
}

func (s *Server) handlePosteriorIntegrate(c *gin.Context) {
	var req posteriorRequest
	if !s.bind(c, &req) {
		return
	}
	post, ok := s.posterior(c, req)
	if !ok {
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	v, err := post.IntegrateContext(ctx, req.Lower, req.Upper)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, valueResponse{Value: v})
}

func (s *Server) handleEvidence(c *gin.Context) {
	var req posteriorRequest
	if !s.bind(c, &req) {
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	ev, err := s.service.Evidence(ctx, req.Prior, req.Likelihood)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, evidenceResponse{Evidence: ev.Value})
}

func (s *Server) handleBayesFactor(c *gin.Context) {
	var req bayesFactorRequest
	if !s.bind(c, &req) {
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	cmp, err := s.service.CompareModels(ctx, req.Likelihood, req.H1, req.H0)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bayesFactorResponse{H1: cmp.H1.Value, H0: cmp.H0.Value, BF10: cmp.BF10})
}
