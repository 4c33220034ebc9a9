// Package protocol provides the core JSON-RPC 2.0 types for MCP
package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version tag carried by every message.
const Version = "2.0"

// RequestID represents a uniquely identifying ID for a request in JSON-RPC
// It can be either a string or an integer
type RequestID interface{}

// MessageKind classifies a decoded message envelope.
type MessageKind int

const (
	KindInvalid MessageKind = iota
	KindRequest
	KindNotification
	KindResponse
	KindError
)

func (k MessageKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindResponse:
		return "response"
	case KindError:
		return "error"
	default:
		return "invalid"
	}
}

// Message represents a JSON-RPC message envelope. A single struct covers
// requests, notifications, responses and errors; Kind reports which one a
// decoded message is. Params and Result are carried opaquely as raw JSON.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *RequestID      `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject contains the error details for a JSON-RPC error response
type ErrorObject struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Kind classifies the message based on which envelope fields are set.
func (m *Message) Kind() MessageKind {
	switch {
	case m.Error != nil:
		return KindError
	case m.Result != nil:
		if m.ID == nil {
			return KindInvalid
		}
		return KindResponse
	case m.Method != "" && m.ID != nil:
		return KindRequest
	case m.Method != "":
		return KindNotification
	default:
		return KindInvalid
	}
}

// Common JSON-RPC error codes
const (
	// Standard JSON-RPC 2.0 errors
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603

	// Server error codes are from -32000 to -32099
	ErrCodeShuttingDown   = -32000
	ErrCodeRequestTimeout = -32001
)

// Error message constants
const (
	MsgParseError     = "Parse error"
	MsgInvalidRequest = "Invalid request"
	MsgMethodNotFound = "Method not found"
	MsgInvalidParams  = "Invalid params"
	MsgInternalError  = "Internal error"

	MsgShuttingDown   = "Server is shutting down"
	MsgRequestTimeout = "Request processing timed out"
)

// NewRequest creates a new JSON-RPC request with marshaled params.
func NewRequest(id RequestID, method string, params interface{}) (*Message, error) {
	raw, err := marshalValue(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request params: %w", err)
	}

	return &Message{
		JSONRPC: Version,
		ID:      &id,
		Method:  method,
		Params:  raw,
	}, nil
}

// NewResponse creates a new JSON-RPC response with a marshaled result.
func NewResponse(id *RequestID, result interface{}) (*Message, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response result: %w", err)
	}

	return &Message{
		JSONRPC: Version,
		ID:      id,
		Result:  raw,
	}, nil
}

// NewErrorMessage creates a new JSON-RPC error response. A nil id yields an
// explicit null id on the wire, as required when the request id is unknown.
func NewErrorMessage(id *RequestID, code int, message string, data interface{}) *Message {
	if id == nil {
		var null RequestID
		id = &null
	}
	return &Message{
		JSONRPC: Version,
		ID:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// NewNotification creates a new JSON-RPC notification with marshaled params.
func NewNotification(method string, params interface{}) (*Message, error) {
	raw, err := marshalValue(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification params: %w", err)
	}

	return &Message{
		JSONRPC: Version,
		Method:  method,
		Params:  raw,
	}, nil
}

func marshalValue(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}
