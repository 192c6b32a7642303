package view

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var fence = []byte("---")

// Page is a template file split into frontmatter and body.
type Page struct {
	Metadata map[string]any
	Body     string
}

// ParsePage splits content into YAML frontmatter and Markdown body.
// Content without a leading fence is all body.
func ParsePage(content []byte) (*Page, error) {
	if !bytes.HasPrefix(content, fence) {
		return &Page{Metadata: map[string]any{}, Body: string(content)}, nil
	}

	rest := bytes.TrimLeft(content[len(fence):], "\r\n")
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: empty after opening fence", ErrInvalidFrontmatter)
	}

	head, body, ok := bytes.Cut(rest, fence)
	if !ok {
		return nil, fmt.Errorf("%w: closing fence not found", ErrInvalidFrontmatter)
	}
	body = bytes.TrimPrefix(body, []byte("\r"))
	body = bytes.TrimPrefix(body, []byte("\n"))

	meta := map[string]any{}
	if len(bytes.TrimSpace(head)) > 0 {
		if err := yaml.Unmarshal(head, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return &Page{Metadata: meta, Body: string(body)}, nil
}

// String returns the metadata value for key if it is a string.
func (p *Page) String(key string) string {
	s, _ := p.Metadata[key].(string)
	return s
}
