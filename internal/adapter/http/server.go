package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxVolumeBytes bounds request bodies on the classify route.
const maxVolumeBytes = 64 << 20

// Classifier runs one volume message through the HSDA engine.
type Classifier interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// Server exposes health, readiness, metrics, and on-demand classification.
type Server struct {
	httpServer *http.Server
	classifier Classifier
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, and /metrics routes.
// When classifier is non-nil, POST /v1/classify is also registered.
func NewServer(addr string, ready sharedobs.ReadinessChecker, classifier Classifier, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		classifier: classifier,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if classifier != nil {
		mux.HandleFunc("POST /v1/classify", s.handleClassify)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleClassify accepts a volume message body (optionally zstd-encoded, signalled
// by Content-Encoding) and responds with the classified volume.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxVolumeBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("volume exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	headers := map[string]string{}
	if enc := r.Header.Get("Content-Encoding"); enc != "" {
		headers[domain.HeaderContentEncoding] = enc
	}
	out, err := s.classifier.Transform(r.Context(), domain.RawEvent{
		Value:     body,
		Headers:   headers,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Warn("classify request failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if enc, ok := out.Headers[domain.HeaderContentEncoding]; ok {
		w.Header().Set("Content-Encoding", enc)
	}
	if status, ok := out.Headers[domain.HeaderStatus]; ok {
		w.Header().Set("X-HSDA-Status", status)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(out.Value) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
