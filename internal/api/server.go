// Package api exposes quotes, risk lookups, prompt enrichment and table
// metadata over a JSON HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"autorisk/domain/core"
	"autorisk/internal"
	"autorisk/internal/container"
)

// RequestIDHeader carries the request correlation id in both directions
const RequestIDHeader = "X-Request-ID"

// Server routes HTTP requests to the container's components
type Server struct {
	router    *gin.Engine
	container *container.Container
	logger    *internal.Logger
}

// NewServer builds the gin engine and registers every route
func NewServer(c *container.Container, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if c.Config.Server.GinMode != "" {
		gin.SetMode(c.Config.Server.GinMode)
	}

	s := &Server{
		router:    gin.New(),
		container: c,
		logger:    logger,
	}
	s.router.Use(gin.Recovery(), s.requestID(), s.accessLog())
	s.setupRoutes()
	return s
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until the server fails
func (s *Server) Start(addr string) error {
	s.logger.Info("starting API server on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/v1")
	{
		v1.POST("/estimate", s.handleEstimate)
		v1.GET("/risk", s.handleRiskProfile)
		v1.POST("/enrich", s.handleEnrich)

		v1.GET("/accidents/brand/:brand", s.handleAccidentsByBrand)
		v1.GET("/accidents/state/:uf", s.handleAccidentsByState)
		v1.GET("/theft/:state", s.handleTheft)
		v1.GET("/population/:uf", s.handlePopulation)

		v1.GET("/tables", s.handleTables)
		v1.GET("/tables/:name", s.handleTableInfo)
		v1.GET("/tables/:name/values/:column", s.handleUniqueValues)
		v1.GET("/merge", s.handleMerge)

		v1.GET("/temporal/evolution", s.handleEvolution)
		v1.GET("/temporal/movers", s.handleMovers)
		v1.GET("/temporal/regions", s.handleRegions)
		v1.GET("/temporal/claims", s.handleClaims)
		v1.GET("/temporal/compare", s.handleComparePeriods)

		v1.GET("/insights/brands", s.handleCompareBrands)
		v1.GET("/insights/causes", s.handleCauses)
		v1.GET("/insights/states", s.handleAffectedStates)
		v1.GET("/insights/crime/:state", s.handleCrimeEvolution)
		v1.GET("/insights/ages", s.handleAgeDistribution)
	}
}

// requestID accepts a caller's UUID correlation id or issues a new one
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseRequestID(c.GetHeader(RequestIDHeader))
		if err != nil {
			id = core.NewRequestID()
		}
		c.Set(RequestIDHeader, id.String())
		c.Header(RequestIDHeader, id.String())
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d in %s [%s]", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start), c.GetString(RequestIDHeader))
	}
}
