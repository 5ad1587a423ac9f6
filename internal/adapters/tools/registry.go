package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/bnema/cascade-chat/internal/ports"
)

var _ ports.ToolRegistry = (*Registry)(nil)

// Handler runs one tool call. Arguments arrive as decoded JSON.
type Handler func(ctx context.Context, args map[string]any) (string, error)

type Registry struct {
	specs    map[string]domain.ToolSpec
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{specs: map[string]domain.ToolSpec{}, handlers: map[string]Handler{}}
}

// Default returns the registry with the built-in host tools.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(SystemInfoSpec, SystemInfo{}.Handle)
	r.MustRegister(ListFilesSpec, ListFiles)
	return r
}

func (r *Registry) Register(spec domain.ToolSpec, handler Handler) error {
	if spec.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if handler == nil {
		return fmt.Errorf("tool %q has no handler", spec.Name)
	}
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("duplicate tool %q", spec.Name)
	}

	r.specs[spec.Name] = spec
	r.handlers[spec.Name] = handler
	return nil
}

func (r *Registry) MustRegister(spec domain.ToolSpec, handler Handler) {
	if err := r.Register(spec, handler); err != nil {
		panic(err)
	}
}

// Specs returns the registered tools sorted by name.
func (r *Registry) Specs() []domain.ToolSpec {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]domain.ToolSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, r.specs[name])
	}
	return specs
}

func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	handler, ok := r.handlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return handler(ctx, args)
}

func stringArg(args map[string]any, name string, fallback string) string {
	raw, ok := args[name]
	if !ok || raw == nil {
		return fallback
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return fallback
	}
	return value
}
