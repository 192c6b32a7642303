package view_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemail/pkg/view"
)

func greeting(locals map[string]any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		name, _ := locals["name"].(string)
		_, err := io.WriteString(w, "<p>Hello "+templ.EscapeString(name)+"</p>")
		return err
	})
}

func frame(content templ.Component, _ map[string]any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<main>"); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>")
		return err
	})
}

func TestComponents_Render(t *testing.T) {
	t.Parallel()

	c := view.NewComponents().Register("greeting", greeting)

	out, err := c.Render(context.Background(), "greeting", map[string]any{"name": "<Ann>"})
	require.NoError(t, err)
	require.Equal(t, "<p>Hello &lt;Ann&gt;</p>", out)

	c.WithLayout(frame)
	out, err = c.Render(context.Background(), "greeting", map[string]any{"name": "Ann"})
	require.NoError(t, err)
	require.Equal(t, "<main><p>Hello Ann</p></main>", out)

	_, err = c.Render(context.Background(), "missing", nil)
	require.ErrorIs(t, err, view.ErrTemplateNotFound)
}

func TestComponents_RenderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := view.NewComponents().Register("broken", func(map[string]any) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error { return boom })
	})

	_, err := c.Render(context.Background(), "broken", nil)
	require.ErrorIs(t, err, view.ErrRenderFailed)
}

func TestFirst(t *testing.T) {
	t.Parallel()

	components := view.NewComponents().Register("greeting", greeting)
	md := view.NewMarkdown(templatesFS())
	r := view.First(components, md)

	out, err := r.Render(context.Background(), "greeting", map[string]any{"name": "Ann"})
	require.NoError(t, err)
	require.Equal(t, "<p>Hello Ann</p>", out)

	out, err = r.Render(context.Background(), "bare", map[string]any{"name": "Ann"})
	require.NoError(t, err)
	require.Equal(t, "<p>Hi Ann</p>\n", out)

	_, err = r.Render(context.Background(), "nowhere", nil)
	require.ErrorIs(t, err, view.ErrTemplateNotFound)

	_, err = r.Render(context.Background(), "broken", nil)
	require.ErrorIs(t, err, view.ErrRenderFailed)

	_, err = view.First().Render(context.Background(), "any", nil)
	require.ErrorIs(t, err, view.ErrTemplateNotFound)
}
