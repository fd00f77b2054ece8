package render

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"text/template"
)

// TemplateRenderer renders named Go text templates. It backs both the
// MarkupRenderer and ServerTemplateRenderer capabilities for deployments
// that do not plug in an external rendering engine.
type TemplateRenderer struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewTemplateRenderer creates an empty renderer.
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{templates: make(map[string]*template.Template)}
}

// Register parses and stores a template body under name.
func (r *TemplateRenderer) Register(name, body string) error {
	tpl, err := template.New(name).Option("missingkey=zero").Parse(body)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = tpl
	return nil
}

// Render executes the named template with the provided model.
func (r *TemplateRenderer) Render(_ context.Context, name string, model any) (string, error) {
	r.mu.RLock()
	tpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, model); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// IdentityScriptRenderer is the default ScriptRenderer: the simplified view
// of a model is the model itself.
type IdentityScriptRenderer struct{}

func (IdentityScriptRenderer) RenderObject(_ context.Context, _ string, model map[string]any) (any, []error) {
	return model, nil
}

// FuncScriptRenderer dispatches script names to registered Go functions.
// Deployments use it to attach per-schema metadata and view scripts.
type FuncScriptRenderer struct {
	mu               sync.RWMutex
	scripts          map[string]func(model map[string]any) (any, error)
	fallbackIdentity bool
}

// NewFuncScriptRenderer creates a renderer. When fallbackIdentity is true,
// unknown script names return the model unchanged instead of failing.
func NewFuncScriptRenderer(fallbackIdentity bool) *FuncScriptRenderer {
	return &FuncScriptRenderer{
		scripts:          make(map[string]func(model map[string]any) (any, error)),
		fallbackIdentity: fallbackIdentity,
	}
}

// Register binds a script function to a name.
func (r *FuncScriptRenderer) Register(name string, fn func(model map[string]any) (any, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[name] = fn
}

// RenderObject runs the named script over the model.
func (r *FuncScriptRenderer) RenderObject(_ context.Context, name string, model map[string]any) (any, []error) {
	r.mu.RLock()
	fn, ok := r.scripts[name]
	r.mu.RUnlock()
	if !ok {
		if r.fallbackIdentity {
			return model, nil
		}
		return nil, []error{fmt.Errorf("script not found: %s", name)}
	}

	out, err := fn(model)
	if err != nil {
		return nil, []error{err}
	}
	return out, nil
}
