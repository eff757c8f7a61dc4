package tool

import (
	"fmt"
	"strings"
	"sync"
)

// EmptyCatalog is the catalog text of a registry without tools.
const EmptyCatalog = "(no tools registered)"

// Registry is the set of tools available to an agent, keyed by name.
//
// Registration order is preserved and drives the catalog order, so the
// description shown to the model is deterministic. Re-registering a name
// replaces the tool in place. A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds t under t.Name(). An existing tool with the same name is
// silently replaced and keeps its catalog position.
func (r *Registry) Register(t Tool) {
	if t == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tools == nil {
		r.tools = map[string]Tool{}
	}

	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// RegisterFunc wraps fn in a FunctionTool and registers it.
func (r *Registry) RegisterFunc(name, description string, fn Func, optFns ...func(o *FunctionToolOptions)) {
	r.Register(NewFunctionTool(name, description, fn, optFns...))
}

// Unregister removes the tool with the given name. It reports whether a tool
// was removed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; !ok {
		return false
	}
	delete(r.tools, name)

	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Lookup returns the tool registered under name. Absence is reported through
// the boolean, never as an error.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Describe renders the tool catalog, one "- name: description" line per tool
// in registration order.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return EmptyCatalog
	}

	var b strings.Builder
	for i, name := range r.order {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: %s", name, r.tools[name].Description())
	}
	return b.String()
}
