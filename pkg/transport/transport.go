package transport

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Transport kinds understood by New.
const (
	KindSMTP   = "smtp"
	KindStub   = "stub"
	KindResend = "resend"
)

// DefaultKind is used when no kind is configured.
const DefaultKind = KindSMTP

// Transport delivers messages. Implementations must be safe for concurrent use.
type Transport interface {
	// Send delivers or composes the message.
	Send(ctx context.Context, msg *Message) (*Result, error)

	// Close releases the transport's connections.
	// The transport must not be used afterwards.
	Close() error
}

// Pinger is implemented by transports that can verify their server is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Result describes a processed message.
type Result struct {
	MessageID string   // Message-ID header or provider id
	Message   string   // Composed RFC 5322 message (stub transport only)
	Accepted  []string // Envelope recipients handed to the server
}

// Settings holds transport-specific configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Settings struct {
	Extra              map[string]string `env:"MAILER_EXTRA"`
	Host               string            `env:"MAILER_HOST" envDefault:"localhost"`
	Username           string            `env:"MAILER_USERNAME"`
	Password           string            `env:"MAILER_PASSWORD"`
	APIKey             string            `env:"MAILER_API_KEY"`
	Endpoint           string            `env:"MAILER_ENDPOINT"`   // API base URL override for HTTP transports
	LocalName          string            `env:"MAILER_LOCAL_NAME"` // HELO name
	StartTLS           string            `env:"MAILER_STARTTLS" envDefault:"opportunistic"`
	Port               int               `env:"MAILER_PORT" envDefault:"587"`
	MaxIdle            int               `env:"MAILER_MAX_IDLE" envDefault:"2"`
	Timeout            time.Duration     `env:"MAILER_TIMEOUT" envDefault:"10s"`
	IdleTTL            time.Duration     `env:"MAILER_IDLE_TTL" envDefault:"30s"`
	Secure             bool              `env:"MAILER_SECURE"` // implicit TLS
	InsecureSkipVerify bool              `env:"MAILER_INSECURE_SKIP_VERIFY"`
}

// Factory creates a transport of the given kind.
type Factory func(kind string, s Settings) (Transport, error)

// New creates a transport of a kind implemented in this package.
// Kind matching is case-insensitive; an empty kind selects DefaultKind.
func New(kind string, s Settings) (Transport, error) {
	switch NormalizeKind(kind) {
	case KindSMTP:
		t, err := NewSMTP(s)
		if err != nil {
			return nil, err
		}
		return t, nil
	case KindStub:
		return NewStub(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NormalizeKind lower-cases kind and applies DefaultKind when empty.
func NormalizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return DefaultKind
	}
	return kind
}
