package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"autorisk/domain/enrichment"
	"autorisk/domain/premium"
	apperrors "autorisk/internal/errors"
	"autorisk/internal/risk"
	tables "autorisk/internal/table"
)

// Defaults for optional query parameters
const (
	defaultRankSize       = 5
	defaultMergeRows      = 100
	defaultPopulationYear = risk.ProfilePopulationYear
)

// EnrichRequest is the body of POST /v1/enrich
type EnrichRequest struct {
	Message string            `json:"message" binding:"required"`
	History []enrichment.Turn `json:"history"`
}

// writeError maps err to a status code and a JSON error body
func (s *Server) writeError(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	status := apperrors.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s failed [%s]: %v", c.Request.Method, c.Request.URL.Path, c.GetString(RequestIDHeader), err)
	}
	c.JSON(status, gin.H{
		"error":      appErr.Error(),
		"code":       apperrors.GetCode(appErr),
		"request_id": c.GetString(RequestIDHeader),
	})
}

func (s *Server) badRequest(c *gin.Context, message string) {
	s.writeError(c, apperrors.InvalidInput(message))
}

// intQuery parses an optional integer query parameter
func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"tables":   s.container.Registry.Names(),
		"degraded": s.container.Combiner.Degraded(),
	})
}

func (s *Server) handleEstimate(c *gin.Context) {
	var q premium.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		s.badRequest(c, err.Error())
		return
	}

	res, err := s.container.Quotes.Quote(c.Request.Context(), q)
	if err != nil {
		s.writeError(c, err)
		return
	}
	status := http.StatusOK
	if res.Error {
		status = http.StatusNotFound
	}
	c.JSON(status, res)
}

func (s *Server) handleRiskProfile(c *gin.Context) {
	model, uf := strings.TrimSpace(c.Query("model")), strings.TrimSpace(c.Query("uf"))
	if model == "" || uf == "" {
		s.badRequest(c, "model and uf are required")
		return
	}

	profile, err := s.container.Analyzer.IntegratedRiskProfile(c.Request.Context(), model, uf)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleEnrich(c *gin.Context) {
	var req EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err.Error())
		return
	}

	prompt, err := s.container.Enricher.EnrichPrompt(c.Request.Context(), req.Message, req.History)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

func (s *Server) handleAccidentsByBrand(c *gin.Context) {
	stats, err := s.container.Analyzer.AccidentStatsByBrand(c.Request.Context(), c.Param("brand"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleAccidentsByState(c *gin.Context) {
	stats, err := s.container.Analyzer.AccidentStatsByState(c.Request.Context(), c.Param("uf"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleTheft(c *gin.Context) {
	year, ok := intQuery(c, "year", 0)
	if !ok {
		s.badRequest(c, "year must be an integer")
		return
	}

	stats, err := s.container.Analyzer.TheftStatsByState(c.Request.Context(), c.Param("state"), year)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handlePopulation(c *gin.Context) {
	year, ok := intQuery(c, "year", defaultPopulationYear)
	if !ok {
		s.badRequest(c, "year must be an integer")
		return
	}

	demo, err := s.container.Analyzer.PopulationByState(c.Request.Context(), c.Param("uf"), year)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, demo)
}

// handleTables renders the table summary as JSON, markdown or HTML
func (s *Server) handleTables(c *gin.Context) {
	ctx := c.Request.Context()
	switch c.DefaultQuery("format", "json") {
	case "markdown":
		c.String(http.StatusOK, s.container.Registry.Summary(ctx))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(s.container.Registry.SummaryHTML(ctx)))
	default:
		c.JSON(http.StatusOK, gin.H{"tables": s.container.Registry.Names()})
	}
}

func (s *Server) handleTableInfo(c *gin.Context) {
	info, err := s.container.Registry.Info(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// handleMerge joins two tables on a key column and returns the first n rows
func (s *Server) handleMerge(c *gin.Context) {
	left, right, on := c.Query("left"), c.Query("right"), c.Query("on")
	if left == "" || right == "" || on == "" {
		s.badRequest(c, "left, right and on are required")
		return
	}
	n, ok := intQuery(c, "n", defaultMergeRows)
	if !ok {
		s.badRequest(c, "n must be an integer")
		return
	}

	merged, err := s.container.Combiner.Merge(c.Request.Context(), left, right, on, tables.JoinType(c.Query("how")))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registros": merged.Len(), "columns": merged.Columns, "rows": merged.Head(n).Rows})
}

// handleUniqueValues also answers for the combined policy view under its own name
func (s *Server) handleUniqueValues(c *gin.Context) {
	values, err := s.container.Combiner.UniqueValues(c.Request.Context(), c.Param("name"), c.Param("column"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}

func (s *Server) handleEvolution(c *gin.Context) {
	ev, err := s.container.Trends.PriceEvolution(c.Request.Context(), strings.TrimSpace(c.Query("model")))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) handleMovers(c *gin.Context) {
	n, ok := intQuery(c, "n", defaultRankSize)
	if !ok {
		s.badRequest(c, "n must be an integer")
		return
	}
	growing := c.DefaultQuery("direction", "up") != "down"

	moves, err := s.container.Trends.TopMovers(c.Request.Context(), n, growing)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, moves)
}

func (s *Server) handleRegions(c *gin.Context) {
	regions, err := s.container.Trends.CompareRegions(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, regions)
}

func (s *Server) handleClaims(c *gin.Context) {
	trend, err := s.container.Trends.ClaimsTrend(c.Request.Context(), strings.TrimSpace(c.Query("model")))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

// handleComparePeriods compares a metric between the two half-year tables,
// grouped by the comma-separated columns of group_by
func (s *Server) handleComparePeriods(c *gin.Context) {
	metric := c.DefaultQuery("metric", "premio1")
	var groupBy []string
	for _, g := range strings.Split(c.DefaultQuery("group_by", "modelo"), ",") {
		if g = strings.TrimSpace(g); g != "" {
			groupBy = append(groupBy, g)
		}
	}
	if len(groupBy) == 0 {
		s.badRequest(c, "group_by needs at least one column")
		return
	}

	rows, err := s.container.Combiner.ComparePeriods(c.Request.Context(), metric, groupBy, tables.PolicyH1, tables.PolicyH2)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleCompareBrands(c *gin.Context) {
	first, second := strings.TrimSpace(c.Query("a")), strings.TrimSpace(c.Query("b"))
	if first == "" || second == "" {
		s.badRequest(c, "a and b are required")
		return
	}

	cmp, err := s.container.Analyzer.CompareBrands(c.Request.Context(), first, second)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *Server) handleCauses(c *gin.Context) {
	n, ok := intQuery(c, "n", defaultRankSize)
	if !ok {
		s.badRequest(c, "n must be an integer")
		return
	}

	causes, err := s.container.Analyzer.MostCommonCauses(c.Request.Context(), n)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, causes)
}

func (s *Server) handleAffectedStates(c *gin.Context) {
	n, ok := intQuery(c, "n", defaultRankSize)
	if !ok {
		s.badRequest(c, "n must be an integer")
		return
	}

	states, err := s.container.Analyzer.MostAffectedStates(c.Request.Context(), n, c.Query("crime"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

func (s *Server) handleCrimeEvolution(c *gin.Context) {
	points, err := s.container.Analyzer.CrimeEvolution(c.Request.Context(), c.Param("state"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) handleAgeDistribution(c *gin.Context) {
	year, ok := intQuery(c, "year", defaultPopulationYear)
	if !ok {
		s.badRequest(c, "year must be an integer")
		return
	}

	shares, err := s.container.Analyzer.AgeDistribution(c.Request.Context(), year)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shares)
}
