package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once

	// Line breaks are inserted where block elements end so the
	// stripped text keeps its paragraph structure.
	lineBreakRe  = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockCloseRe = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|table|blockquote|pre|section|article|header|footer)\s*>`)
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML and drops script/style/title content
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// StripHTML removes all HTML tags and returns the escaped text content.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// PlainText converts an HTML document into a readable plain text alternative.
// Block elements become line breaks, entities are decoded, runs of whitespace
// are collapsed and at most one blank line is kept between paragraphs.
func PlainText(s string) string {
	if s == "" {
		return ""
	}

	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = blockCloseRe.ReplaceAllString(s, "$0\n")
	s = html.UnescapeString(StripHTML(s))

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
