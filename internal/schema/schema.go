// Package schema defines the generic schema validate/transform capability
// used for schema-typed sources, resolved by a lookup table keyed by the
// per-file schema type tag.
package schema

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// LandingDataType is the legacy schema type that requires an additional
// server-side template render pass over its transformed data.
const LandingDataType = "LandingData"

// Context carries per-file information a transformer may need.
type Context struct {
	FilePath string
	Locale   string
}

// Transformer validates and transforms one schema type.
type Transformer interface {
	// Validate checks obj against the schema. Violations are returned as a
	// list; they are collected, not thrown.
	Validate(obj map[string]any) []error

	// Transform rewrites obj into its published shape. Non-fatal problems
	// are returned alongside the (possibly partial) result.
	Transform(ctx context.Context, obj map[string]any, tctx Context) (map[string]any, []error)
}

// Registry is a lookup table from schema type tag to Transformer.
type Registry struct {
	mu           sync.RWMutex
	transformers map[string]Transformer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{transformers: make(map[string]Transformer)}
}

// Register binds a transformer to a schema type. Later registrations for
// the same type replace earlier ones.
func (r *Registry) Register(schemaType string, t Transformer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers[schemaType] = t
}

// Lookup resolves the transformer for a schema type.
func (r *Registry) Lookup(schemaType string) (Transformer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transformers[schemaType]
	if !ok {
		return nil, fmt.Errorf("no schema transformer registered for type %q", schemaType)
	}
	return t, nil
}

// Types returns the registered schema types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.transformers))
	for t := range r.transformers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Passthrough is a Transformer that validates nothing and returns the
// object unchanged. Useful as a default and in tests.
type Passthrough struct{}

func (Passthrough) Validate(map[string]any) []error { return nil }

func (Passthrough) Transform(_ context.Context, obj map[string]any, _ Context) (map[string]any, []error) {
	return obj, nil
}
