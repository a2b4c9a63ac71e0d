// Package server exposes the movie catalogue over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bi0dread/qfilter"
	"github.com/bi0dread/qfilter/internal/movies"
)

// ListRequest is the POST body of /api/movies.
type ListRequest struct {
	Filter     string `json:"filter" form:"filter"`
	SearchTerm string `json:"searchTerm" form:"search"`
}

// ListResponse mirrors qfilter.Response with the records named movies.
type ListResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Movies  []movies.Movie `json:"movies"`
}

type Server struct {
	svc     *qfilter.Service[movies.Movie]
	log     *slog.Logger
	metrics *Metrics
	reg     *prometheus.Registry
	router  *gin.Engine
}

// New wires the routes. Each Server owns its own metrics registry.
func New(svc *qfilter.Service[movies.Movie], log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		svc:     svc,
		log:     log,
		metrics: NewMetrics(reg),
		reg:     reg,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.GET("/movies", s.listMovies)
	api.POST("/movies", s.listMovies)

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// listMovies answers 200 for every well-formed request; query failures are
// reported through success=false.
func (s *Server) listMovies(c *gin.Context) {
	start := time.Now()
	method := c.Request.Method

	var req ListRequest
	var err error
	if method == http.MethodPost {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		s.metrics.Requests.WithLabelValues(method, "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp := s.svc.List(c.Request.Context(), req.Filter, movies.Search(req.SearchTerm))

	outcome := "ok"
	if !resp.Success {
		outcome = "failed"
	} else {
		s.metrics.Records.Observe(float64(len(resp.Records)))
	}
	s.metrics.Requests.WithLabelValues(method, outcome).Inc()
	s.metrics.Duration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, ListResponse{Success: resp.Success, Error: resp.Error, Movies: resp.Records})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
