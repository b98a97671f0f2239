package bitfield

import (
	"sync"

	"github.com/wippyai/bitfield/errors"
)

// Registry holds named layouts whose values travel in a uint64 carrier,
// whatever their declared base. Definition files, the CLI and the
// WebAssembly host module share layouts through it. A Registry is safe for
// concurrent use.
type Registry struct {
	layouts map[string]*Layout[uint64]
	order   []string
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{layouts: make(map[string]*Layout[uint64])}
}

// Define resolves decls against kind and registers the result under name.
// Kinds wider than 64 bits cannot be carried and are rejected.
func (r *Registry) Define(name string, kind Kind, decls ...Decl) (*Layout[uint64], error) {
	if kind == U128 {
		return nil, errors.New(errors.PhaseDefine, errors.KindUnsupported).
			Path(name).
			Base(kind.String()).
			Detail("registry layouts are carried in 64 bits").
			Build()
	}
	l, err := DefineAs[uint64](name, kind, decls...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Register adds an already resolved layout.
func (r *Registry) Register(l *Layout[uint64]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.layouts[l.name]; exists {
		return errors.New(errors.PhaseDefine, errors.KindRegistration).
			Path(l.name).
			Detail("bitfield %q already registered", l.name).
			Build()
	}
	r.layouts[l.name] = l
	r.order = append(r.order, l.name)
	return nil
}

// Lookup returns the layout registered under name.
func (r *Registry) Lookup(name string) (*Layout[uint64], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.layouts[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLookup, "bitfield", name)
	}
	return l, nil
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Layouts returns registered layouts in registration order.
func (r *Registry) Layouts() []*Layout[uint64] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Layout[uint64], len(r.order))
	for i, name := range r.order {
		out[i] = r.layouts[name]
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
