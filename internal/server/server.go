package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/agenthands/geoparse/internal/config"
	"github.com/agenthands/geoparse/internal/core"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/render"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 100
)

type Server struct {
	Pipeline *core.Pipeline
	Logger   *slog.Logger
	Metrics  *Metrics

	registry *prometheus.Registry
	limiter  *rate.Limiter
}

func NewServer(p *core.Pipeline, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Server{
		Pipeline: p,
		Logger:   logger,
		Metrics:  NewMetrics(reg),
		registry: reg,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(s.Logger))

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/", RateLimit(s.limiter))
	api.POST("/query", s.Query)
	api.GET("/suggest", s.Suggest)
	api.GET("/stats", s.Stats)

	return r
}

type QueryRequest struct {
	Query     string   `json:"query"`
	Threshold *float64 `json:"threshold,omitempty"`
	Format    string   `json:"format,omitempty"`
}

type QueryResponse struct {
	model.QueryResult
	Formatted string `json:"formatted"`
}

func (s *Server) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.Metrics.Queries.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	format, err := render.ParseFormat(req.Format)
	if err != nil {
		s.Metrics.Queries.WithLabelValues("bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := s.Pipeline
	if req.Threshold != nil {
		p, err = p.WithThreshold(*req.Threshold)
		if err != nil {
			s.Metrics.Queries.WithLabelValues("bad_request").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	started := time.Now()
	result, err := p.ProcessQuery(c.Request.Context(), req.Query)
	s.Metrics.Duration.Observe(time.Since(started).Seconds())
	if err != nil {
		status := "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = "canceled"
		}
		s.Metrics.Queries.WithLabelValues(status).Inc()
		s.Logger.Error("failed to process query", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process query"})
		return
	}
	s.Metrics.Queries.WithLabelValues("ok").Inc()
	s.Metrics.observe(result)

	formatted, err := render.Render(result, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render result"})
		return
	}
	c.JSON(http.StatusOK, QueryResponse{QueryResult: result, Formatted: formatted})
}

func (s *Server) Suggest(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}

	var typ model.EntityType
	if v := c.Query("type"); v != "" {
		t, err := model.ParseEntityType(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		typ = t
	}

	limit := defaultSuggestLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSuggestLimit)
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": s.Pipeline.Index.Suggest(q, typ, limit)})
}

func (s *Server) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"gazetteer":       s.Pipeline.Index.Stats(),
		"fuzzy_threshold": s.Pipeline.Resolver.Threshold(),
		"type_priority":   s.Pipeline.Resolver.Priority(),
		"max_candidates":  s.Pipeline.MaxCandidates,
		"order":           s.Pipeline.Order,
	})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
