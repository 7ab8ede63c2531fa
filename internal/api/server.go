package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"drugwatch/app"
	"drugwatch/domain/core"
	"drugwatch/domain/signal"
	"drugwatch/internal"
	"drugwatch/ports"
)

// Server exposes the query router over JSON. Two routes: health and query.
type Server struct {
	router  *gin.Engine
	queries *app.QueryService
	reports ports.ReportWriter
	logger  *internal.Logger
}

// NewServer wires the HTTP surface
func NewServer(queries *app.QueryService, reports ports.ReportWriter, logger *internal.Logger, ginMode string) *Server {
	gin.SetMode(ginMode)
	s := &Server{
		router:  gin.New(),
		queries: queries,
		reports: reports,
		logger:  logger,
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.POST("/api/query", s.handleQuery)
	s.router.POST("/api/query/report", s.handleQueryReport)
}

// Run blocks serving on addr
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// queryRequest is the JSON body accepted by /api/query
type queryRequest struct {
	Drugs       []string          `json:"drugs"`
	Reactions   []string          `json:"reactions"`
	SeriousOnly bool              `json:"serious_only"`
	Regions     []string          `json:"regions"`
	AgeRange    *signal.AgeRange  `json:"age_range"`
	Window      signal.TimeWindow `json:"window"`
	Limit       int               `json:"limit"`
}

func (r queryRequest) toSpec() signal.QuerySpec {
	window := r.Window
	if window == "" {
		window = signal.WindowAll
	}
	return signal.QuerySpec{
		Drugs:       r.Drugs,
		Reactions:   r.Reactions,
		SeriousOnly: r.SeriousOnly,
		Regions:     r.Regions,
		AgeRange:    r.AgeRange,
		Window:      window,
		Limit:       r.Limit,
	}
}

func (s *Server) handleQuery(c *gin.Context) {
	result, ok := s.runQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleQueryReport runs the query and exports the ranked list through the
// configured report writer, returning the artifact path with the results.
func (s *Server) handleQueryReport(c *gin.Context) {
	result, ok := s.runQuery(c)
	if !ok {
		return
	}

	path, err := s.reports.WriteReport(c.Request.Context(), "Signal query "+result.QueryID.String(), result.Results)
	if err != nil {
		s.logger.Error("report export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report export failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": result, "report_path": path})
}

func (s *Server) runQuery(c *gin.Context) (*app.QueryResult, bool) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	result, err := s.queries.RunQuery(ctx, req.toSpec())
	if err != nil {
		if core.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		s.logger.Error("query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query execution failed"})
		return nil, false
	}
	return result, true
}

const queryTimeout = 30 * time.Second
