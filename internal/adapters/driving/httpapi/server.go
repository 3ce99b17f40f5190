// Package httpapi exposes the retrieval engine as a JSON service. Every
// endpoint answers with a {success, data?, error?} envelope so agent
// clients can branch on a single field.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finsight-labs/finsearch-cli/internal/core/ports/driving"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: search, ingest and index services are required")

// Server serves the retrieval engine over HTTP.
type Server struct {
	search  driving.SearchService
	ingest  driving.IngestService
	index   driving.IndexService
	metrics *metrics
}

// NewServer creates an HTTP server around the given services.
func NewServer(search driving.SearchService, ingest driving.IngestService, index driving.IndexService) (*Server, error) {
	if search == nil || ingest == nil || index == nil {
		return nil, ErrMissingService
	}
	return &Server{
		search:  search,
		ingest:  ingest,
		index:   index,
		metrics: newMetrics(prometheus.NewRegistry()),
	}, nil
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("POST /document", s.handleAddDocument)
	mux.HandleFunc("GET /document/{id}", s.handleGetDocument)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /company/search", s.handleCompanySearch)
	mux.HandleFunc("POST /financial-data", s.handleAddFinancialData)
	mux.HandleFunc("POST /filing", s.handleAddFiling)
	mux.HandleFunc("POST /news-article", s.handleAddNewsArticle)
	mux.HandleFunc("POST /financial-context", s.handleContext)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	return s.metrics.instrument(mux)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP server listening on %s", addr)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
