package tools

import (
	"sort"
	"sync"

	"google.golang.org/adk/tool"

	"atlas/pkg/errors"
)

// Registry stores tools by name for discovery and lookup.
type Registry struct {
	tools map[string]tool.Tool
	mu    sync.RWMutex
}

// NewRegistry constructs an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]tool.Tool),
	}
}

// Register adds or replaces a tool under the provided name.
func (r *Registry) Register(name string, t tool.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = t
}

// Get retrieves a tool by name if registered.
func (r *Registry) Get(name string) (tool.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the sorted names of all registered tools.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForNames resolves the given tool names in order, failing on the first
// name with no registration. Agent factories use this to assemble an
// agent's tool set from its config.
func (r *Registry) ForNames(names []string) ([]tool.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "tool %s is not registered", name)
		}
		out = append(out, t)
	}
	return out, nil
}
