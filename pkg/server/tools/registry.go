// Package tools implements the tool registry: named, schema-validated
// capabilities keyed by unique name, listed in registration order.
package tools

import (
	"context"
	"fmt"
	"sync"

	mcperrors "github.com/toolstream/mcp-core/pkg/errors"
	"github.com/toolstream/mcp-core/pkg/models"
	"github.com/toolstream/mcp-core/pkg/schema"
)

// Handler is the capability implementing a tool's behavior. It receives
// arguments that already conform to the tool's input schema and produces a
// result or an error. Handlers must not write to the protocol stream and
// must provide their own synchronization for any shared resources.
type Handler func(ctx context.Context, arguments map[string]interface{}) (*models.CallToolResult, error)

// Entry is a registered tool with its handler and resolved input schema.
type Entry struct {
	Tool    models.Tool
	Handler Handler
	Schema  *schema.Resolved
}

// Registry holds tool entries keyed by unique name. It is append-only:
// tools are registered during startup, the registry is frozen when the
// session becomes ready, and concurrent handler executions read it without
// further coordination.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
	frozen  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Register adds a tool with its handler. The tool's input schema is resolved
// here so a malformed schema fails at startup, not on the first call.
// Registering a duplicate name or registering after Freeze is an error.
func (r *Registry) Register(tool models.Tool, handler Handler) error {
	if tool.Name == "" {
		return fmt.Errorf("register tool: name must not be empty")
	}
	if handler == nil {
		return fmt.Errorf("register tool %q: handler must not be nil", tool.Name)
	}

	resolved, err := tool.InputSchema.Resolve()
	if err != nil {
		return fmt.Errorf("register tool %q: %w", tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register tool %q: %w", tool.Name, mcperrors.ErrRegistryFrozen)
	}
	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("register tool %q: %w", tool.Name, mcperrors.ErrDuplicateTool)
	}

	r.entries[tool.Name] = &Entry{
		Tool:    tool,
		Handler: handler,
		Schema:  resolved,
	}
	r.order = append(r.order, tool.Name)
	return nil
}

// Freeze makes the registry read-only. Called by the dispatcher when the
// session becomes ready, so no lookup can race a registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// List returns the registered tool descriptors in registration order.
func (r *Registry) List() []models.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]models.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.entries[name].Tool)
	}
	return tools
}

// Lookup returns the entry for name, or false if no such tool is registered.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	return entry, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
