package main

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/forgemail/pkg/view"
)

// emailComponents holds the emails built as templ components. Names missing
// here fall through to the markdown templates.
func emailComponents() *view.Components {
	return view.NewComponents().
		Register("receipt", receiptEmail).
		WithLayout(componentLayout)
}

func receiptEmail(locals map[string]any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		to, _ := locals["to"].(string)
		_, err := io.WriteString(w, "<h1>Your receipt</h1><p>Sent to "+templ.EscapeString(to)+"</p>")
		return err
	})
}

func componentLayout(content templ.Component, locals map[string]any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title, _ := locals["subject"].(string)
		if _, err := io.WriteString(w, "<html><head><title>"+templ.EscapeString(title)+"</title></head><body>"); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}
