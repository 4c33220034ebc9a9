package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toolstream/mcp-core/pkg/logging"
)

// Server provides HTTP endpoints for health checks and metrics. The protocol
// itself never runs over HTTP; this listener exists solely for scraping.
type Server struct {
	Address string
	Logger  logging.Logger
}

// NewServer creates a new metrics server.
func NewServer(address string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Server{
		Address: address,
		Logger:  logger,
	}
}

// Start runs the metrics listener until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.LivenessHandler)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    s.Address,
		Handler: mux,
	}

	go func() {
		s.Logger.Info("starting metrics server", "address", s.Address)

		startErr := server.ListenAndServe()
		if startErr != nil && startErr != http.ErrServerClosed {
			s.Logger.Error("metrics server error", "error", startErr)
		}
	}()

	<-ctx.Done()

	s.Logger.Info("shutting down metrics server")

	if err := server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutting down metrics server: %w", err)
	}
	return nil
}

// LivenessHandler handles liveness probe requests.
func (s *Server) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
