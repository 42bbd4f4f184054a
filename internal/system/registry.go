package system

import (
	"log/slog"
	"slices"

	"github.com/roach88/dasha/internal/domain"
)

// Registry maps system ids to definitions.
//
// Registration happens once during warm-up from a single goroutine; Freeze
// then makes the registry read-only. Resolve takes no lock, so any number of
// goroutines may read a frozen registry concurrently.
type Registry struct {
	defs   map[ID]*Definition
	order  []ID
	frozen bool
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[ID]*Definition)}
}

// NewBuiltinRegistry creates a registry holding every built-in system.
// The registry is left unfrozen so callers may add custom systems.
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	for _, def := range Builtins() {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates and adds a definition. Fails with
// InvalidSystemDefinition on a bad table or rule set, a duplicate id, or
// registration after Freeze.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return domain.NewError(domain.CodeInvalidSystemDefinition, "nil definition")
	}
	if r.frozen {
		return domain.NewError(domain.CodeInvalidSystemDefinition,
			"registry is frozen").WithSystem(string(def.ID))
	}
	if err := def.Validate(); err != nil {
		return err
	}
	if _, exists := r.defs[def.ID]; exists {
		return domain.NewError(domain.CodeInvalidSystemDefinition,
			"system already registered").WithSystem(string(def.ID))
	}
	r.defs[def.ID] = def
	r.order = append(r.order, def.ID)

	slog.Debug("period system registered",
		"system", def.ID,
		"rulers", def.Table.Len(),
		"total", def.Table.Total(),
		"child_start", def.ChildStart,
	)
	return nil
}

// Freeze makes the registry read-only. Idempotent.
func (r *Registry) Freeze() { r.frozen = true }

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen }

// Resolve returns the definition for id or fails with UnknownSystem.
func (r *Registry) Resolve(id ID) (*Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return nil, domain.NewError(domain.CodeUnknownSystem, "no system registered as %q", id).WithSystem(string(id))
	}
	return def, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []ID {
	ids := slices.Clone(r.order)
	slices.Sort(ids)
	return ids
}

// Definitions returns the definitions in registration order.
func (r *Registry) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}
