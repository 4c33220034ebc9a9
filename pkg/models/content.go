package models

import (
	"encoding/json"
	"fmt"
)

// Content represents the base interface for all content types
type Content interface {
	ContentType() string
}

// TextContent represents text provided to or from an LLM
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (t TextContent) ContentType() string {
	return "text"
}

// NewTextContent creates a text content item.
func NewTextContent(text string) TextContent {
	return TextContent{Type: "text", Text: text}
}

// ImageContent represents an image provided to or from an LLM
type ImageContent struct {
	Type     string `json:"type"`
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

func (i ImageContent) ContentType() string {
	return "image"
}

// ResourceContents holds the payload of an embedded resource.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// EmbeddedResource represents a resource embedded in a tool result
type EmbeddedResource struct {
	Type     string           `json:"type"`
	Resource ResourceContents `json:"resource"`
}

func (e EmbeddedResource) ContentType() string {
	return "resource"
}

// contentWrapper is a helper struct for content type discrimination
type contentWrapper struct {
	Type string `json:"type"`
}

// UnmarshalContent decodes a single content item by its type tag.
func UnmarshalContent(data []byte) (Content, error) {
	var wrapper contentWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	var content Content
	switch wrapper.Type {
	case "text":
		var c TextContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		content = c
	case "image":
		var c ImageContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		content = c
	case "resource":
		var c EmbeddedResource
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		content = c
	default:
		return nil, fmt.Errorf("unknown content type: %s", wrapper.Type)
	}

	return content, nil
}
