package internal

import (
	"fmt"
	"maps"
	"net/mail"
	"strings"

	"github.com/dmitrymomot/forgemail/pkg/transport"
)

// Locals keys consulted for envelope defaults.
const (
	LocalFrom        = "from"
	LocalTo          = "to"
	LocalCC          = "cc"
	LocalBCC         = "bcc"
	LocalReplyTo     = "replyTo"
	LocalSubject     = "subject"
	LocalBody        = "body"
	LocalText        = "text"
	LocalEnvelope    = "envelope"
	LocalInReplyTo   = "inReplyTo"
	LocalReferences  = "references"
	LocalAttachments = "attachments"
	LocalHeaders     = "headers"
)

// Locals holds template variables.
type Locals map[string]any

// String returns the value for key as a string.
// Strings and fmt.Stringer values are accepted; anything else yields "".
// A Stringer that panics, such as a nil *url.URL, yields "".
func (l Locals) String(key string) string {
	switch v := l[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return stringOf(v)
	default:
		return ""
	}
}

func stringOf(v fmt.Stringer) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	return v.String()
}

// List returns the value for key as a list of strings.
// A string is split on commas; []string and []any of strings are accepted.
func (l Locals) List(key string) []string {
	switch v := l[key].(type) {
	case string:
		return splitList(v)
	case []string:
		return compact(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return compact(out)
	default:
		return nil
	}
}

// Addresses is like List but parses a string as an RFC 5322 address list,
// so quoted display names may contain commas. Strings that do not parse
// are split on commas.
func (l Locals) Addresses(key string) []string {
	if v, ok := l[key].(string); ok {
		return splitAddresses(v)
	}
	return l.List(key)
}

// Merge returns a copy of l with the entries of over applied on top.
func (l Locals) Merge(over Locals) Locals {
	out := make(Locals, len(l)+len(over))
	maps.Copy(out, l)
	maps.Copy(out, over)
	return out
}

func (l Locals) envelope() *transport.Envelope {
	switch v := l[LocalEnvelope].(type) {
	case *transport.Envelope:
		return v
	case transport.Envelope:
		return &v
	case map[string]any:
		env := Locals(v)
		e := &transport.Envelope{From: env.String("from"), To: env.Addresses("to")}
		if e.From == "" && len(e.To) == 0 {
			return nil
		}
		return e
	default:
		return nil
	}
}

func (l Locals) attachments() []transport.Attachment {
	switch v := l[LocalAttachments].(type) {
	case []transport.Attachment:
		return v
	case transport.Attachment:
		return []transport.Attachment{v}
	default:
		return nil
	}
}

func (l Locals) headers() map[string]string {
	switch v := l[LocalHeaders].(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			if s, ok := val.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return compact(strings.Split(s, ","))
}

func splitAddresses(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if addrs, err := mail.ParseAddressList(s); err == nil {
		out := make([]string, 0, len(addrs))
		for _, a := range addrs {
			if a.Name == "" {
				out = append(out, a.Address)
				continue
			}
			out = append(out, a.String())
		}
		return compact(out)
	}
	return splitList(s)
}

func compact(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
