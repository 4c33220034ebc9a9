// Package schema implements the structural subset of JSON Schema used to
// describe tool inputs: primitive types, required properties, enums, numeric
// ranges, string length and pattern constraints, and array item schemas.
//
// A Schema is resolved once (compiling regex patterns and checking keyword
// sanity) and then validated against concurrently without locking.
package schema

import (
	"fmt"
	"regexp"
)

// Schema is a structural schema over a JSON value. Nil constraints are
// absent; a nil *Schema accepts every value.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`

	// object keywords
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`

	// generic keywords
	Enum []interface{} `json:"enum,omitempty"`

	// numeric keywords
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// string keywords
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// array keywords
	Items *Schema `json:"items,omitempty"`
}

// Object is a convenience constructor for the common tool-input shape: an
// object schema with the given properties and required names.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

var validTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"object":  true,
	"array":   true,
	"null":    true,
}

// Resolved is a schema prepared for validation: patterns are compiled and
// keyword sanity has been checked. Resolved values are immutable and safe
// for concurrent use.
type Resolved struct {
	root     *Schema
	patterns map[*Schema]*regexp.Regexp
}

// Resolve prepares the schema for validation. It fails if a declared type is
// unknown or a pattern does not compile, so malformed tool schemas surface
// at registration time rather than on the first call.
func (s *Schema) Resolve() (*Resolved, error) {
	r := &Resolved{
		root:     s,
		patterns: make(map[*Schema]*regexp.Regexp),
	}
	if err := r.resolve(s, ""); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Resolved) resolve(s *Schema, path string) error {
	if s == nil {
		return nil
	}
	if path == "" {
		path = "(root)"
	}

	if s.Type != "" && !validTypes[s.Type] {
		return fmt.Errorf("schema %s: unknown type %q", path, s.Type)
	}

	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("schema %s: invalid pattern %q: %w", path, s.Pattern, err)
		}
		r.patterns[s] = re
	}

	if s.MinLength != nil && *s.MinLength < 0 {
		return fmt.Errorf("schema %s: negative minLength", path)
	}
	if s.MaxLength != nil && *s.MaxLength < 0 {
		return fmt.Errorf("schema %s: negative maxLength", path)
	}

	for name, sub := range s.Properties {
		if err := r.resolve(sub, joinPath(path, name)); err != nil {
			return err
		}
	}
	if s.Items != nil {
		if err := r.resolve(s.Items, path+"[]"); err != nil {
			return err
		}
	}
	return nil
}

func joinPath(base, field string) string {
	if base == "" || base == "(root)" {
		return field
	}
	return base + "." + field
}
