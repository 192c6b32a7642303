package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/a-h/templ"
)

// ComponentFunc builds a templ component from template locals.
type ComponentFunc func(locals map[string]any) templ.Component

// LayoutFunc wraps rendered content in a layout component.
type LayoutFunc func(content templ.Component, locals map[string]any) templ.Component

// Components renders templ components registered by name.
type Components struct {
	items  map[string]ComponentFunc
	layout LayoutFunc
	mu     sync.RWMutex
}

// NewComponents creates an empty component registry.
func NewComponents() *Components {
	return &Components{items: make(map[string]ComponentFunc)}
}

// Register adds or replaces the component for name.
func (c *Components) Register(name string, fn ComponentFunc) *Components {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[name] = fn
	return c
}

// WithLayout sets the layout every component is wrapped in.
func (c *Components) WithLayout(fn LayoutFunc) *Components {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layout = fn
	return c
}

// Render renders the component registered under name.
func (c *Components) Render(ctx context.Context, name string, locals map[string]any) (string, error) {
	c.mu.RLock()
	fn, ok := c.items[name]
	layout := c.layout
	c.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	component := fn(locals)
	if layout != nil {
		component = layout(component, locals)
	}

	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}
	return buf.String(), nil
}

// RendererFunc renders a named template with locals.
type RendererFunc func(ctx context.Context, name string, locals map[string]any) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, name string, locals map[string]any) (string, error) {
	return f(ctx, name, locals)
}

// Renderer renders a named template with locals.
type Renderer interface {
	Render(ctx context.Context, name string, locals map[string]any) (string, error)
}

// First returns a renderer that tries each renderer in order and moves on
// only when one reports ErrTemplateNotFound.
func First(renderers ...Renderer) RendererFunc {
	return func(ctx context.Context, name string, locals map[string]any) (string, error) {
		err := fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		for _, r := range renderers {
			var out string
			out, err = r.Render(ctx, name, locals)
			if err == nil || !errors.Is(err, ErrTemplateNotFound) {
				return out, err
			}
		}
		return "", err
	}
}
