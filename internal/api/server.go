package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bayesplay/app"
	"bayesplay/internal/errors"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// Server exposes the model service over HTTP.
type Server struct {
	router  *gin.Engine
	service *app.ModelService
	logger  *slog.Logger
	timeout time.Duration
}

// NewServer creates a server. A zero timeout disables the per-request deadline.
func NewServer(service *app.ModelService, logger *slog.Logger, timeout time.Duration) *Server {
	s := &Server{
		router:  gin.New(),
		service: service,
		logger:  logger,
		timeout: timeout,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.CustomRecoveryWithWriter(io.Discard, s.handlePanic), requestID(), s.accessLog())
}

// handlePanic answers a panicking handler with an internal error; writeError logs it.
func (s *Server) handlePanic(c *gin.Context, recovered any) {
	s.writeError(c, errors.InternalError(fmt.Sprintf("handler panicked: %v", recovered)))
	c.Abort()
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/v1")
	v1.POST("/prior/evaluate", s.handlePriorEvaluate)
	v1.POST("/prior/integrate", s.handlePriorIntegrate)
	v1.POST("/likelihood/evaluate", s.handleLikelihoodEvaluate)
	v1.POST("/posterior/evaluate", s.handlePosteriorEvaluate)
	v1.POST("/posterior/integrate", s.handlePosteriorIntegrate)
	v1.POST("/evidence", s.handleEvidence)
	v1.POST("/bayes-factor", s.handleBayesFactor)

	s.router.NoRoute(func(c *gin.Context) {
		s.writeError(c, errors.NotFound("route "+c.Request.URL.Path))
	})
}

// requestID reuses an incoming request id or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDKey))
	}
}

// requestContext applies the configured deadline to a request.
func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), s.timeout)
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (s *Server) writeError(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	status := errors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err, "request_id", c.GetString(requestIDKey))
	}
	c.JSON(status, gin.H{"error": errorBody{
		Code:      appErr.Code,
		Message:   appErr.Error(),
		RequestID: c.GetString(requestIDKey),
	}})
}
