package view

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// LayoutKey is the frontmatter or locals key that selects a layout.
const LayoutKey = "layout"

// Markdown renders Markdown templates from a file system.
// Parsed templates and layouts are cached; it is safe for concurrent use.
type Markdown struct {
	fs            fs.FS
	md            goldmark.Markdown
	funcs         map[string]any
	pages         *cache[*markdownPage]
	layouts       *cache[*template.Template]
	templateDir   string
	layoutDir     string
	defaultLayout string
	ext           string
}

type markdownPage struct {
	meta map[string]any
	body *texttemplate.Template
}

// MarkdownOption configures a Markdown renderer.
type MarkdownOption func(*markdownConfig)

type markdownConfig struct {
	funcs         map[string]any
	templateDir   string
	layoutDir     string
	defaultLayout string
	ext           string
	buttonClass   string
	extensions    []goldmark.Extender
	unsafeHTML    bool
}

// WithTemplateDir sets the directory holding templates. Default ".".
func WithTemplateDir(dir string) MarkdownOption {
	return func(c *markdownConfig) { c.templateDir = dir }
}

// WithLayoutDir sets the directory holding layouts. Default "layouts".
func WithLayoutDir(dir string) MarkdownOption {
	return func(c *markdownConfig) { c.layoutDir = dir }
}

// WithDefaultLayout sets the layout used when neither frontmatter nor
// locals select one. Without it such templates render unwrapped.
func WithDefaultLayout(name string) MarkdownOption {
	return func(c *markdownConfig) { c.defaultLayout = name }
}

// WithExtension sets the file extension appended to bare template names. Default ".md".
func WithExtension(ext string) MarkdownOption {
	return func(c *markdownConfig) { c.ext = ext }
}

// WithFuncs adds template functions to bodies and layouts.
func WithFuncs(funcs map[string]any) MarkdownOption {
	return func(c *markdownConfig) {
		for k, v := range funcs {
			c.funcs[k] = v
		}
	}
}

// WithButtonClass sets the CSS class of [!button|...] links. Default "btn".
func WithButtonClass(class string) MarkdownOption {
	return func(c *markdownConfig) { c.buttonClass = class }
}

// WithMarkdownExtensions adds goldmark extensions.
func WithMarkdownExtensions(ext ...goldmark.Extender) MarkdownOption {
	return func(c *markdownConfig) { c.extensions = append(c.extensions, ext...) }
}

// WithUnsafeHTML lets raw HTML in Markdown through to the output.
// Only enable it for templates whose locals are trusted.
func WithUnsafeHTML() MarkdownOption {
	return func(c *markdownConfig) { c.unsafeHTML = true }
}

// NewMarkdown creates a Markdown renderer reading from fsys.
func NewMarkdown(fsys fs.FS, opts ...MarkdownOption) *Markdown {
	cfg := markdownConfig{
		funcs:       map[string]any{},
		templateDir: ".",
		layoutDir:   "layouts",
		ext:         ".md",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	exts := append([]goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.Linkify,
		Button{Class: cfg.buttonClass},
	}, cfg.extensions...)

	var rendererOpts []goldmark.Option
	if cfg.unsafeHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	return &Markdown{
		fs:            fsys,
		md:            goldmark.New(append(rendererOpts, goldmark.WithExtensions(exts...))...),
		funcs:         cfg.funcs,
		pages:         newCache[*markdownPage](),
		layouts:       newCache[*template.Template](),
		templateDir:   cfg.templateDir,
		layoutDir:     cfg.layoutDir,
		defaultLayout: cfg.defaultLayout,
		ext:           cfg.ext,
	}
}

// Render executes the named template with locals and returns the HTML.
// Missing templates yield ErrTemplateNotFound.
func (v *Markdown) Render(ctx context.Context, name string, locals map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := v.page(name)
	if err != nil {
		return "", err
	}

	var source bytes.Buffer
	if err := page.body.Execute(&source, locals); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	var content bytes.Buffer
	if err := v.md.Convert(source.Bytes(), &content); err != nil {
		return "", fmt.Errorf("%w: %s: convert markdown: %v", ErrRenderFailed, name, err)
	}

	layoutName := v.layoutName(page, locals)
	if layoutName == "" {
		return content.String(), nil
	}

	layout, err := v.layout(layoutName)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	err = layout.Execute(&out, map[string]any{
		"Content":  template.HTML(content.String()),
		"Metadata": page.meta,
		"Locals":   locals,
	})
	if err != nil {
		return "", fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, layoutName, err)
	}
	return out.String(), nil
}

func (v *Markdown) layoutName(page *markdownPage, locals map[string]any) string {
	if s, ok := page.meta[LayoutKey].(string); ok && s != "" {
		return s
	}
	if s, ok := locals[LayoutKey].(string); ok && s != "" {
		return s
	}
	return v.defaultLayout
}

func (v *Markdown) page(name string) (*markdownPage, error) {
	if path.Ext(name) == "" {
		name += v.ext
	}

	return v.pages.get(name, func() (*markdownPage, error) {
		content, err := fs.ReadFile(v.fs, path.Join(v.templateDir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
		}

		parsed, err := ParsePage(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		body, err := texttemplate.New(name).Funcs(v.funcs).Parse(parsed.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
		}
		return &markdownPage{meta: parsed.Metadata, body: body}, nil
	})
}

func (v *Markdown) layout(name string) (*template.Template, error) {
	return v.layouts.get(name, func() (*template.Template, error) {
		content, err := fs.ReadFile(v.fs, path.Join(v.layoutDir, name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
		}

		t, err := template.New(name).Funcs(v.funcs).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, name, err)
		}
		return t, nil
	})
}
