// Package wasmhost exposes registered bitfield layouts to WebAssembly
// guests as a wazero host module.
//
// For every layout L and field f the module exports
//
//	L.f.get    (i64) -> i64        field value of an aggregate
//	L.f.set    (i64, i64) -> i64   aggregate with the field replaced
//	L.f.is_set (i64) -> i32        1 when the field is non-zero
//
// Aggregates cross the boundary as i64 whatever their declared base, so a
// guest packs and unpacks with exactly the host's rules.
package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/bitfield"
	"github.com/wippyai/bitfield/errors"
)

// DefaultModuleName is the import module name guests use.
const DefaultModuleName = "bitfield"

var (
	i64   = []api.ValueType{api.ValueTypeI64}
	i64x2 = []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}
	i32   = []api.ValueType{api.ValueTypeI32}
)

// Option configures a Host.
type Option func(*Host)

// WithModuleName overrides DefaultModuleName.
func WithModuleName(name string) Option {
	return func(h *Host) { h.moduleName = name }
}

// WithLogger sets the logger used for export and instantiation events.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// Host builds the host module from a registry.
type Host struct {
	registry   *bitfield.Registry
	logger     *zap.Logger
	moduleName string
}

// New creates a host over r.
func New(r *bitfield.Registry, opts ...Option) *Host {
	h := &Host{
		registry:   r,
		logger:     Logger(),
		moduleName: DefaultModuleName,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ModuleName returns the name the module is instantiated under.
func (h *Host) ModuleName() string { return h.moduleName }

// Export describes one exported host function.
type Export struct {
	Name    string
	Layout  string
	Field   string
	Params  []api.ValueType
	Results []api.ValueType
	fn      api.GoModuleFunc
}

// Exports lists the functions the module would export for the layouts
// currently registered, in registration then declaration order.
func (h *Host) Exports() []Export {
	var out []Export
	for _, l := range h.registry.Layouts() {
		for _, f := range l.Fields() {
			prefix := l.Name() + "." + f.Name() + "."
			out = append(out,
				Export{Name: prefix + "get", Layout: l.Name(), Field: f.Name(), Params: i64, Results: i64, fn: getter(f)},
				Export{Name: prefix + "set", Layout: l.Name(), Field: f.Name(), Params: i64x2, Results: i64, fn: setter(f)},
				Export{Name: prefix + "is_set", Layout: l.Name(), Field: f.Name(), Params: i64, Results: i32, fn: tester(f)},
			)
		}
	}
	return out
}

// Instantiate builds the host module into rt. Layouts registered after
// this call are not visible to the module.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(h.moduleName)

	exports := h.Exports()
	for _, e := range exports {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(e.fn, e.Params, e.Results).
			WithName(e.Name).
			Export(e.Name)
		h.logger.Debug("host function exported",
			zap.String("module", h.moduleName),
			zap.String("name", e.Name))
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(errors.PhaseHost, "host module "+h.moduleName, err)
	}

	h.logger.Info("bitfield host module instantiated",
		zap.String("module", h.moduleName),
		zap.Int("layouts", h.registry.Len()),
		zap.Int("functions", len(exports)))
	return mod, nil
}

func getter(f bitfield.Field[uint64]) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = f.Get(stack[0])
	}
}

func setter(f bitfield.Field[uint64]) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		stack[0] = f.With(stack[0], stack[1])
	}
}

func tester(f bitfield.Field[uint64]) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		var set uint32
		if f.IsSet(stack[0]) {
			set = 1
		}
		stack[0] = api.EncodeU32(set)
	}
}
