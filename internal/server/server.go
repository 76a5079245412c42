// Package server exposes a loaded session over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/bayleafwalker/bindery-graph/internal/graph"
	"github.com/bayleafwalker/bindery-graph/internal/metadata"
	"github.com/bayleafwalker/bindery-graph/internal/metrics"
	"github.com/bayleafwalker/bindery-graph/internal/registry"
	"github.com/bayleafwalker/bindery-graph/internal/session"
)

const shutdownTimeout = 10 * time.Second

// Server serialises access to one session. Resolution mutates the registry,
// so every handler touching the session holds mu.
type Server struct {
	mu     sync.Mutex
	sess   *session.Session
	log    logr.Logger
	engine *gin.Engine
}

func New(sess *session.Session, log logr.Logger) *Server {
	s := &Server{sess: sess, log: log.WithName("server")}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.POST("/resolve", s.handleResolve)
	v1.GET("/dependees", s.handleQuery("dependees", (*session.Session).DependeesOf))
	v1.GET("/dependers", s.handleQuery("dependers", (*session.Session).DependersOf))
	v1.GET("/files/preferred", s.handlePreferredFiles)
	v1.GET("/files/known", s.handleKnownFiles)
	v1.GET("/files/targets", s.handleTargetFiles)
	v1.GET("/metadata", s.handleMetadata)
	v1.GET("/why", s.handleWhy)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.V(1).Info("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start))
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	n := len(s.sess.AllKnownFiles())
	s.mu.Unlock()
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Files: n})
}

func (s *Server) handleResolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	kind := metadata.Build
	switch req.Kind {
	case "", string(metadata.Build):
	case string(metadata.Run):
		kind = metadata.Run
	default:
		badRequest(c, fmt.Errorf("kind must be build or run, got %q", req.Kind))
		return
	}

	s.mu.Lock()
	report, err := s.sess.Resolve(c.Request.Context(), req.Targets, kind)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err, http.StatusInternalServerError, codeInternal)
		return
	}

	resp := ResolveResponse{Targets: make([]TargetResult, 0, len(report.Targets)), Failed: report.Failed()}
	for _, st := range report.Targets {
		resp.Targets = append(resp.Targets, targetResult(st))
	}
	c.JSON(http.StatusOK, resp)
}

func targetResult(st registry.TargetStatus) TargetResult {
	r := TargetResult{Name: st.Name, Kind: string(st.Kind), File: st.File, Status: "resolved"}
	if st.Err != nil {
		r.Status = "failed"
		if errors.Is(st.Err, registry.ErrIgnoredTarget) {
			r.Status = "ignored"
		}
		r.Error = st.Err.Error()
		r.Reasons = registry.Reasons(st.Err)
	}
	return r
}

type queryParams struct {
	Target    string `form:"target" binding:"required"`
	Kind      string `form:"kind"`
	Recursive bool   `form:"recursive"`
	Limit     int    `form:"limit" binding:"min=0"`
}

type queryFunc func(s *session.Session, ctx context.Context, file string, kinds []metadata.Kind, recursive bool, opts ...session.QueryOption) (session.Result, error)

func (s *Server) handleQuery(name string, run queryFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p queryParams
		if err := c.ShouldBindQuery(&p); err != nil {
			badRequest(c, err)
			return
		}
		kinds, err := metadata.ParseKinds(p.Kind)
		if err != nil {
			badRequest(c, err)
			return
		}

		ctx := c.Request.Context()
		s.mu.Lock()
		defer s.mu.Unlock()

		file, err := s.sess.LookupFile(ctx, p.Target)
		if err != nil {
			s.fail(c, err, http.StatusInternalServerError, codeInternal)
			return
		}
		res, err := run(s.sess, ctx, file, kinds, p.Recursive, session.WithLimit(p.Limit))
		if err != nil {
			s.fail(c, err, http.StatusInternalServerError, codeInternal)
			return
		}
		s.log.V(2).Info("query", "query", name, "root", file, "visits", len(res.Visits))

		visits := res.Visits
		if visits == nil {
			visits = []graph.Visit{}
		}
		c.JSON(http.StatusOK, QueryResponse{
			Root:       file,
			Visits:     visits,
			Truncated:  res.Truncated,
			DurationMs: res.Duration.Milliseconds(),
		})
	}
}

func (s *Server) handlePreferredFiles(c *gin.Context) {
	s.mu.Lock()
	files, err := s.sess.PreferredFiles(c.Request.Context())
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err, http.StatusInternalServerError, codeInternal)
		return
	}
	c.JSON(http.StatusOK, FilesResponse{Files: nonNil(files)})
}

func (s *Server) handleKnownFiles(c *gin.Context) {
	s.mu.Lock()
	files := s.sess.AllKnownFiles()
	s.mu.Unlock()
	c.JSON(http.StatusOK, FilesResponse{Files: nonNil(files)})
}

func (s *Server) handleTargetFiles(c *gin.Context) {
	s.mu.Lock()
	files := s.sess.TargetFiles()
	s.mu.Unlock()
	c.JSON(http.StatusOK, FilesResponse{Files: nonNil(files)})
}

// handleMetadata returns the variables of ?target=, or the global
// configuration when target is absent. ?var= narrows the result.
func (s *Server) handleMetadata(c *gin.Context) {
	target := c.Query("target")

	s.mu.Lock()
	data, err := s.sess.ParseTargetMetadata(c.Request.Context(), target)
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err, http.StatusBadGateway, codeParseFailure)
		return
	}

	if vars := c.QueryArray("var"); len(vars) > 0 {
		narrowed := make(map[string]string, len(vars))
		for _, k := range vars {
			narrowed[k] = data[k]
		}
		data = narrowed
	}
	c.JSON(http.StatusOK, MetadataResponse{Target: target, Data: data})
}

func (s *Server) handleWhy(c *gin.Context) {
	target := c.Query("target")
	if target == "" {
		badRequest(c, errors.New("target is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := s.sess.LookupFile(c.Request.Context(), target)
	if err != nil {
		s.fail(c, err, http.StatusInternalServerError, codeInternal)
		return
	}
	resp := WhyResponse{File: file, Requests: []RequestView{}}
	for _, r := range s.sess.Requests(file) {
		resp.Requests = append(resp.Requests, RequestView{Target: r.Target.Name, Kind: string(r.Target.Kind), Depender: r.Depender})
	}
	c.JSON(http.StatusOK, resp)
}

func nonNil(files []string) []string {
	if files == nil {
		return []string{}
	}
	return files
}
