package protocol

// ToolsCapability describes the server's tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities describes what the server supports, sent in the
// initialize result.
type ServerCapabilities struct {
	Tools   *ToolsCapability       `json:"tools,omitempty"`
	Logging map[string]interface{} `json:"logging,omitempty"`
}

// RootsCapability describes the client's filesystem roots support.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ClientCapabilities describes what the client supports, received in the
// initialize request.
type ClientCapabilities struct {
	Roots        *RootsCapability       `json:"roots,omitempty"`
	Sampling     map[string]interface{} `json:"sampling,omitempty"`
	Experimental map[string]interface{} `json:"experimental,omitempty"`
}
