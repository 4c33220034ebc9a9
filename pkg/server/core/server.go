// Package core implements the protocol state machine: it routes decoded
// requests to the matching internal operation or tool handler, enforces the
// session lifecycle, and converts every failure into a typed protocol error.
package core

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	mcperrors "github.com/toolstream/mcp-core/pkg/errors"
	"github.com/toolstream/mcp-core/pkg/logging"
	"github.com/toolstream/mcp-core/pkg/metrics"
	"github.com/toolstream/mcp-core/pkg/models"
	"github.com/toolstream/mcp-core/pkg/protocol"
	"github.com/toolstream/mcp-core/pkg/schema"
	"github.com/toolstream/mcp-core/pkg/server/tools"
)

// ProtocolVersion is the MCP specification version this server implements.
const ProtocolVersion = "2024-11-05"

// MCPServer is the dispatch interface the transport loop drives.
type MCPServer interface {
	HandleMessage(ctx context.Context, msg *protocol.Message) (*protocol.Message, error)
	Notifications() <-chan protocol.Message
	Shutdown(ctx context.Context) error
}

// ServerOptions provides configuration options for creating a new Server.
type ServerOptions struct {
	Info         models.Implementation
	Instructions string
	Logger       logging.Logger
}

// Server is the core dispatcher. It owns the session state machine and the
// tool registry; the registry is populated before the session becomes ready
// and read-only afterwards.
type Server struct {
	info         models.Implementation
	instructions string

	session  *Session
	registry *tools.Registry
	logger   logging.Logger

	logManager   *logManager
	capabilities protocol.ServerCapabilities

	notificationChan chan protocol.Message
	shutdownOnce     sync.Once
	shutdownCh       chan struct{}

	wg sync.WaitGroup
}

// NewServerWithOptions creates a new server with the specified options.
func NewServerWithOptions(options ServerOptions) *Server {
	logger := options.Logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	instructions := options.Instructions
	if instructions == "" {
		instructions = fmt.Sprintf("%s %s - ready for requests", options.Info.Name, options.Info.Version)
	}

	server := &Server{
		info:             options.Info,
		instructions:     instructions,
		session:          NewSession(),
		registry:         tools.NewRegistry(),
		logger:           logger,
		logManager:       newLogManager(),
		notificationChan: make(chan protocol.Message, 100),
		shutdownCh:       make(chan struct{}),
		capabilities: protocol.ServerCapabilities{
			Tools:   &protocol.ToolsCapability{},
			Logging: map[string]interface{}{},
		},
	}

	server.logManager.SetSink(func(level models.LogLevel, data interface{}, logger string) {
		server.sendLogNotification(level, data, logger)
	})

	return server
}

// NewServer creates a new MCP server instance with the specified
// implementation details.
func NewServer(info models.Implementation, logger logging.Logger) *Server {
	return NewServerWithOptions(ServerOptions{Info: info, Logger: logger})
}

// RegisterTool adds a tool to the registry. Must be called before the
// session becomes ready; duplicate names are an error.
func (s *Server) RegisterTool(tool models.Tool, handler tools.Handler) error {
	return s.registry.Register(tool, handler)
}

// Registry returns the server's tool registry.
func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// Session returns the server's session.
func (s *Server) Session() *Session {
	return s.session
}

// Notifications returns the channel for receiving server notifications.
func (s *Server) Notifications() <-chan protocol.Message {
	return s.notificationChan
}

// HandleMessage processes one decoded message and returns the response for
// requests, or nil for notifications. All failures are typed: the caller can
// rely on *errors.ProtocolError carrying the wire code.
func (s *Server) HandleMessage(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	switch msg.Kind() {
	case protocol.KindRequest, protocol.KindNotification:
	default:
		// Responses and errors from the peer are not requests; nothing to do.
		return nil, nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(ctx, msg)
	case "notifications/initialized":
		s.handleInitialized()
		return nil, nil
	case "notifications/cancelled":
		return nil, nil
	}

	if perr := s.checkReady(); perr != nil {
		return nil, perr
	}

	switch msg.Method {
	case "ping":
		return createResponse(msg.ID, struct{}{})
	case "tools/list":
		return s.handleListTools(ctx, msg)
	case "tools/call":
		return s.handleCallTool(ctx, msg)
	case "logging/setLevel":
		return s.handleSetLevel(ctx, msg)
	case "shutdown":
		resp, err := createResponse(msg.ID, struct{}{})
		if err != nil {
			return nil, err
		}
		s.initiateShutdown()
		return resp, nil
	default:
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeMethodNotFound,
			Message: protocol.MsgMethodNotFound,
			Data:    fmt.Sprintf("unsupported method: %s", msg.Method),
		}
	}
}

// checkReady gates methods on the session state. Requests before READY are
// rejected, never queued; requests during shutdown get the closing error.
func (s *Server) checkReady() *mcperrors.ProtocolError {
	switch s.session.State() {
	case StateReady:
		return nil
	case StateShuttingDown:
		return &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeShuttingDown,
			Message: protocol.MsgShuttingDown,
		}
	default:
		return &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeInvalidRequest,
			Message: protocol.MsgInvalidRequest,
			Data:    mcperrors.ErrNotInitialized.Error(),
		}
	}
}

func (s *Server) handleInitialize(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	if err := s.session.beginInitialize(); err != nil {
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeInvalidRequest,
			Message: protocol.MsgInvalidRequest,
			Data:    err.Error(),
		}
	}

	var params models.InitializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return nil, &mcperrors.ProtocolError{
				Code:    protocol.ErrCodeInvalidParams,
				Message: protocol.MsgInvalidParams,
				Data:    fmt.Sprintf("invalid initialize params: %v", err),
			}
		}
	}

	s.logger.Info("initializing session",
		"session_id", s.session.ID(),
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"protocol_version", params.ProtocolVersion)

	result := models.InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    s.capabilities,
		ServerInfo:      s.info,
		Instructions:    s.instructions,
	}

	return createResponse(msg.ID, result)
}

func (s *Server) handleInitialized() {
	if err := s.session.markReady(); err != nil {
		s.logger.Warn("unexpected initialized notification", "error", err)
		return
	}

	// The registry is read-only from here on; concurrent handler
	// executions read it without coordination.
	s.registry.Freeze()
	s.logger.Info("session ready",
		"session_id", s.session.ID(),
		"tools", s.registry.Len())
}

func (s *Server) handleListTools(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	result := models.ListToolsResult{
		Tools: s.registry.List(),
	}
	return createResponse(msg.ID, result)
}

func (s *Server) handleCallTool(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	var params models.CallToolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeInvalidParams,
			Message: protocol.MsgInvalidParams,
			Data:    fmt.Sprintf("invalid call tool params: %v", err),
		}
	}

	entry, ok := s.registry.Lookup(params.Name)
	if !ok {
		metrics.ToolCallsTotal.WithLabelValues(params.Name, metrics.StatusNotFound).Inc()
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeMethodNotFound,
			Message: protocol.MsgMethodNotFound,
			Data:    fmt.Sprintf("unknown tool: %s", params.Name),
		}
	}

	if err := entry.Schema.Validate(params.Arguments); err != nil {
		metrics.ToolCallsTotal.WithLabelValues(params.Name, metrics.StatusInvalid).Inc()
		var verr *schema.ValidationError
		if stderrors.As(err, &verr) {
			return nil, &mcperrors.ProtocolError{
				Code:    protocol.ErrCodeInvalidParams,
				Message: protocol.MsgInvalidParams,
				Data:    verr.Violations,
			}
		}
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeInvalidParams,
			Message: protocol.MsgInvalidParams,
			Data:    err.Error(),
		}
	}

	result, err := s.invokeTool(ctx, entry, params.Arguments)
	if err != nil {
		// Full detail goes to the log; the peer sees a sanitized message.
		s.logger.Error("tool handler failed",
			"tool", params.Name,
			"session_id", s.session.ID(),
			"error", err)
		metrics.ToolCallsTotal.WithLabelValues(params.Name, metrics.StatusError).Inc()
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeInternalError,
			Message: protocol.MsgInternalError,
		}
	}

	metrics.ToolCallsTotal.WithLabelValues(params.Name, metrics.StatusOK).Inc()
	return createResponse(msg.ID, result)
}

// invokeTool runs the handler with panic isolation: one call's fault must
// not corrupt the session or prevent subsequent calls.
func (s *Server) invokeTool(ctx context.Context, entry *tools.Entry, args map[string]interface{}) (result *models.CallToolResult, err error) {
	s.wg.Add(1)
	defer s.wg.Done()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("tool handler panic: %v", r)
		}
	}()

	return entry.Handler(ctx, args)
}

func (s *Server) handleSetLevel(ctx context.Context, msg *protocol.Message) (*protocol.Message, error) {
	var params models.SetLevelParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeInvalidParams,
			Message: protocol.MsgInvalidParams,
			Data:    fmt.Sprintf("invalid set level params: %v", err),
		}
	}

	if !params.Level.IsValid() {
		return nil, &mcperrors.ProtocolError{
			Code:    protocol.ErrCodeInvalidParams,
			Message: protocol.MsgInvalidParams,
			Data:    fmt.Sprintf("invalid log level: %s", params.Level),
		}
	}

	s.logManager.SetLevel(params.Level)
	return createResponse(msg.ID, struct{}{})
}

// SendLog forwards a log record to the peer as a notifications/message
// notification, subject to the peer-set level.
func (s *Server) SendLog(level models.LogLevel, data interface{}, logger string) {
	s.logManager.Log(level, data, logger)
}

func (s *Server) sendLogNotification(level models.LogLevel, data interface{}, logger string) {
	params := models.LoggingMessageParams{
		Level:  level,
		Data:   data,
		Logger: logger,
	}
	notification, err := protocol.NewNotification("notifications/message", params)
	if err != nil {
		s.logger.Error("failed to marshal log notification", "error", err)
		return
	}

	select {
	case s.notificationChan <- *notification:
	case <-s.shutdownCh:
		// Shutting down, don't queue more notifications.
	default:
		s.logger.Warn("notification channel full, dropping notification")
	}
}

// initiateShutdown transitions the session; in-flight requests complete,
// new ones are rejected by checkReady.
func (s *Server) initiateShutdown() {
	if s.session.beginShutdown() {
		close(s.shutdownCh)
		s.logger.Info("session shutting down", "session_id", s.session.ID())
	}
}

// Shutdown initiates shutdown and waits for in-flight handlers to finish,
// bounded by the context (plus a 10s safety net).
func (s *Server) Shutdown(ctx context.Context) error {
	var err error

	s.shutdownOnce.Do(func() {
		s.initiateShutdown()

		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			s.logger.Info("shutdown complete", "session_id", s.session.ID())
		case <-waitCtx.Done():
			s.logger.Error("shutdown timed out waiting for in-flight requests",
				"session_id", s.session.ID())
			err = waitCtx.Err()
		}
	})

	return err
}

func createResponse(id *protocol.RequestID, result interface{}) (*protocol.Message, error) {
	resp, err := protocol.NewResponse(id, result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return resp, nil
}
