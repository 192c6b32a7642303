package transport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/mail.v2"
)

// Compose builds the MIME message for msg and returns it with its Message-ID.
// The text part is placed before the HTML alternative so clients prefer HTML.
func Compose(msg *Message) (*mail.Message, string, error) {
	m := mail.NewMessage()

	messageID := msg.MessageID
	if messageID == "" {
		messageID = newMessageID(msg.From)
	}

	if msg.From != "" {
		m.SetHeader("From", msg.From)
	}
	if len(msg.To) > 0 {
		m.SetHeader("To", msg.To...)
	}
	if len(msg.CC) > 0 {
		m.SetHeader("Cc", msg.CC...)
	}
	if len(msg.BCC) > 0 {
		m.SetHeader("Bcc", msg.BCC...)
	}
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	if msg.InReplyTo != "" {
		m.SetHeader("In-Reply-To", msg.InReplyTo)
	}
	if len(msg.References) > 0 {
		m.SetHeader("References", strings.Join(msg.References, " "))
	}
	for k, v := range msg.CustomHeaders() {
		m.SetHeader(k, v)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", messageID)
	m.SetDateHeader("Date", time.Now())

	text := msg.PlainText()
	switch {
	case text != "" && msg.HTML != "":
		m.SetBody("text/plain", text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", text)
	}

	for i, a := range msg.Attachments {
		if a.Filename == "" {
			return nil, "", fmt.Errorf("%w: attachment %d has no filename", ErrInvalidSettings, i)
		}
		settings := []mail.FileSetting{mail.SetCopyFunc(copyContent(a.Content))}
		if a.ContentType != "" {
			settings = append(settings, mail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		if a.ContentID != "" {
			settings = append(settings, mail.SetHeader(map[string][]string{
				"Content-ID": {"<" + strings.Trim(a.ContentID, "<>") + ">"},
			}))
			m.Embed(a.Filename, settings...)
			continue
		}
		m.Attach(a.Filename, settings...)
	}

	return m, messageID, nil
}

func copyContent(content []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	}
}

// newMessageID returns a unique Message-ID in the sender's domain.
func newMessageID(from string) string {
	domain := "localhost"
	if addr := bareAddress(from); addr != "" {
		if at := strings.LastIndexByte(addr, '@'); at >= 0 && at < len(addr)-1 {
			domain = addr[at+1:]
		}
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
