// Package server runs the read-dispatch-write loop over a byte-stream
// transport. Messages are decoded sequentially in stream order; each request
// is dispatched on its own goroutine so a slow handler never blocks the
// reader, with a semaphore capping how many run at once.
package server

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/toolstream/mcp-core/pkg/logging"
	"github.com/toolstream/mcp-core/pkg/metrics"
	"github.com/toolstream/mcp-core/pkg/protocol"
	"github.com/toolstream/mcp-core/pkg/server/core"
	"github.com/toolstream/mcp-core/pkg/transport"

	mcperrors "github.com/toolstream/mcp-core/pkg/errors"
)

// ServerConfig holds configuration options for the serve loop.
type ServerConfig struct {
	// DefaultTimeout bounds each request's processing time.
	DefaultTimeout time.Duration
	// MaxConcurrency caps concurrently executing handlers.
	MaxConcurrency int64
	// Logger receives diagnostics; never the protocol stream.
	Logger logging.Logger
}

// DefaultServerConfig provides reasonable default configuration values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		DefaultTimeout: 30 * time.Second,
		MaxConcurrency: 16,
	}
}

// Server drives an MCP dispatcher over a Transport.
type Server struct {
	mcpServer core.MCPServer
	transport transport.Transport
	logger    logging.Logger

	sem            *semaphore.Weighted
	defaultTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup // in-flight request goroutines
	notifWg sync.WaitGroup

	shutdownMu   sync.RWMutex
	shuttingDown bool
}

// NewServer creates a serve loop for the given dispatcher and transport.
func NewServer(mcpServer core.MCPServer, t transport.Transport, config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	maxConcurrency := config.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultServerConfig().MaxConcurrency
	}
	timeout := config.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultServerConfig().DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		mcpServer:      mcpServer,
		transport:      t,
		logger:         logger,
		sem:            semaphore.NewWeighted(maxConcurrency),
		defaultTimeout: timeout,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start runs the read loop until the transport closes or Stop is called.
// Malformed frames are answered with a parse error and the loop continues;
// only transport loss ends it.
func (s *Server) Start() error {
	if s.isShuttingDown() {
		return mcperrors.ErrShuttingDown
	}

	s.notifWg.Add(1)
	go func() {
		defer s.notifWg.Done()
		s.forwardNotifications()
	}()

	for {
		msg, err := s.transport.Receive(s.ctx)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				// Stop() owns the rest of the shutdown.
				return nil

			case errors.Is(err, io.EOF), errors.Is(err, mcperrors.ErrConnClosed):
				s.logger.Info("transport closed")
				return s.Stop()

			default:
				if perr, ok := mcperrors.AsProtocolError(err); ok {
					// Fatal to this message only, not to the session.
					s.logger.Warn("discarding malformed frame", "error", perr)
					s.writeError(nil, perr.Code, perr.Message, perr.Data)
					continue
				}
				s.logger.Error("transport read failed", "error", err)
				_ = s.Stop()
				return err
			}
		}

		if s.isShuttingDown() {
			if msg.ID != nil {
				s.writeError(msg.ID, protocol.ErrCodeShuttingDown, protocol.MsgShuttingDown, nil)
			}
			continue
		}

		if isLifecycleMethod(msg.Method) {
			// Session state is only ever written from this loop, so lifecycle
			// transitions happen in stream order. These operations never
			// block on handler code.
			s.dispatch(msg)
			continue
		}

		s.wg.Add(1)
		go func(m *protocol.Message) {
			defer s.wg.Done()
			s.handleMessage(m)
		}(msg)
	}
}

// isLifecycleMethod reports whether the method mutates session state and must
// therefore be processed in stream order by the read loop itself.
func isLifecycleMethod(method string) bool {
	switch method {
	case "initialize", "notifications/initialized", "notifications/cancelled", "shutdown":
		return true
	}
	return false
}

// handleMessage dispatches one message under the concurrency cap. Waiting for
// a semaphore slot happens here, in the request's own goroutine, never in the
// read loop.
func (s *Server) handleMessage(msg *protocol.Message) {
	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		if msg.ID != nil {
			s.writeError(msg.ID, protocol.ErrCodeShuttingDown, protocol.MsgShuttingDown, nil)
		}
		return
	}
	defer s.sem.Release(1)

	s.dispatch(msg)
}

// dispatch runs one message through the core dispatcher under the per-request
// deadline and writes the outcome.
func (s *Server) dispatch(msg *protocol.Message) {
	metrics.RequestsInFlight.Inc()
	defer metrics.RequestsInFlight.Dec()
	start := time.Now()

	ctx, cancel := context.WithTimeout(s.ctx, s.defaultTimeout)
	defer cancel()

	respCh := make(chan *protocol.Message, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := s.mcpServer.HandleMessage(ctx, msg)
		if err != nil {
			errCh <- err
			return
		}
		respCh <- resp
	}()

	var status string
	select {
	case <-ctx.Done():
		// Detach from the handler: it may keep running for cleanup, but its
		// result is discarded.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			status = metrics.StatusTimeout
			s.logger.Warn("request timed out",
				"method", msg.Method,
				"error", &mcperrors.TimeoutError{Duration: s.defaultTimeout})
			if msg.ID != nil {
				s.writeError(msg.ID, protocol.ErrCodeInternalError, protocol.MsgRequestTimeout,
					map[string]interface{}{"reason": "timeout"})
			}
		} else {
			status = metrics.StatusError
			if msg.ID != nil {
				s.writeError(msg.ID, protocol.ErrCodeShuttingDown, protocol.MsgShuttingDown, nil)
			}
		}

	case err := <-errCh:
		status = s.writeDispatchError(msg.ID, err)

	case resp := <-respCh:
		status = metrics.StatusOK
		if resp != nil && msg.ID != nil {
			s.writeMessage(resp)
		}
	}

	metrics.RequestsTotal.WithLabelValues(msg.Method, status).Inc()
	metrics.RequestDuration.WithLabelValues(msg.Method).Observe(time.Since(start).Seconds())
}

// writeDispatchError converts a dispatch failure to the peer-visible error
// response. Anything untyped is sanitized to a generic internal error; the
// detail stays in the log.
func (s *Server) writeDispatchError(id *protocol.RequestID, err error) string {
	if perr, ok := mcperrors.AsProtocolError(err); ok {
		if id != nil {
			s.writeError(id, perr.Code, perr.Message, perr.Data)
		}
		return statusForCode(perr.Code)
	}

	if mcperrors.IsTimeout(err) {
		if id != nil {
			s.writeError(id, protocol.ErrCodeInternalError, protocol.MsgRequestTimeout,
				map[string]interface{}{"reason": "timeout"})
		}
		return metrics.StatusTimeout
	}

	s.logger.Error("dispatch failed", "error", err)
	if id != nil {
		s.writeError(id, protocol.ErrCodeInternalError, protocol.MsgInternalError, nil)
	}
	return metrics.StatusError
}

func statusForCode(code int) string {
	switch code {
	case protocol.ErrCodeMethodNotFound:
		return metrics.StatusNotFound
	case protocol.ErrCodeInvalidParams:
		return metrics.StatusInvalid
	default:
		return metrics.StatusError
	}
}

func (s *Server) forwardNotifications() {
	notifChan := s.mcpServer.Notifications()

	for {
		select {
		case <-s.ctx.Done():
			return
		case notif, ok := <-notifChan:
			if !ok {
				return
			}
			s.writeMessage(&notif)
		}
	}
}

func (s *Server) writeMessage(msg *protocol.Message) {
	// Writes use a background context: shutdown error responses must still
	// reach the peer after the serve context is cancelled.
	if err := s.transport.Send(context.Background(), msg); err != nil {
		s.logger.Error("failed to write message", "error", err)
	}
}

func (s *Server) writeError(id *protocol.RequestID, code int, message string, data interface{}) {
	s.writeMessage(protocol.NewErrorMessage(id, code, message, data))
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.shuttingDown
}

// Stop rejects new requests, lets in-flight requests complete (bounded by a
// 10s grace period), then tears down the read loop.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return nil
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Transition the dispatcher first so it rejects work racing with us.
	if err := s.mcpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("dispatcher shutdown failed", "error", err)
	}

	var err error
	doneCh := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-shutdownCtx.Done():
		err = errors.New("server shutdown timed out waiting for operations to complete")
	}

	s.cancel()
	s.notifWg.Wait()
	return err
}
