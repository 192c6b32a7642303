// Package view renders named email templates into HTML.
//
// Markdown renders Markdown files with optional YAML frontmatter. The body is
// executed as a text/template with the template locals, converted to HTML with
// goldmark and wrapped in an html/template layout:
//
//	---
//	layout: base.html
//	preheader: Confirm your address
//	---
//	# Hi {{.name}}
//
//	[!button|Verify email]({{.link}})
//
// Layouts receive .Content (the converted body), .Metadata (the frontmatter)
// and .Locals.
//
// Components renders templ components registered by name. First chains
// renderers and falls through on ErrTemplateNotFound.
//
// Every renderer has the signature Render(ctx, name, locals) and can be
// handed to forgemail.AdaptRenderer.
package view
