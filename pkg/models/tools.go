package models

import (
	"encoding/json"

	"github.com/toolstream/mcp-core/pkg/protocol"
	"github.com/toolstream/mcp-core/pkg/schema"
)

// Tool describes a named callable capability exposed to a peer. Name is
// unique and immutable once registered.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema *schema.Schema `json:"inputSchema,omitempty"`
}

// CallToolParams are the parameters of a tools/call request.
type CallToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// CallToolResult is the ordered sequence of content items produced by a tool
// handler. It is returned wholesale; streaming is not supported.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// UnmarshalJSON decodes the content items through their type tags.
func (r *CallToolResult) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Content []json.RawMessage `json:"content"`
		IsError bool              `json:"isError,omitempty"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	r.IsError = tmp.IsError
	r.Content = make([]Content, 0, len(tmp.Content))
	for _, raw := range tmp.Content {
		c, err := UnmarshalContent(raw)
		if err != nil {
			return err
		}
		r.Content = append(r.Content, c)
	}
	return nil
}

// ListToolsResult is the result of a tools/list request.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// InitializeParams are the parameters of an initialize request.
type InitializeParams struct {
	ProtocolVersion string                      `json:"protocolVersion"`
	Capabilities    protocol.ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation              `json:"clientInfo"`
}

// InitializeResult is the result of an initialize request.
type InitializeResult struct {
	ProtocolVersion string                      `json:"protocolVersion"`
	Capabilities    protocol.ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation              `json:"serverInfo"`
	Instructions    string                      `json:"instructions,omitempty"`
}

// SetLevelParams are the parameters of a logging/setLevel request.
type SetLevelParams struct {
	Level LogLevel `json:"level"`
}

// LoggingMessageParams are the parameters of a notifications/message
// notification carrying a server log record to the peer.
type LoggingMessageParams struct {
	Level  LogLevel    `json:"level"`
	Data   interface{} `json:"data"`
	Logger string      `json:"logger,omitempty"`
}
