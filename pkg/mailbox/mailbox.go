package mailbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/dmitrymomot/forgemail/pkg/logger"
)

// ErrNotListening is returned by Serve before Listen succeeded.
var ErrNotListening = errors.New("mailbox: not listening")

// Mail is a message accepted by the mailbox.
type Mail struct {
	ReceivedAt time.Time
	From       string
	To         []string
	Data       []byte
}

// String returns the raw message.
func (m Mail) String() string {
	return string(m.Data)
}

// Contains reports whether the raw message contains s.
func (m Mail) Contains(s string) bool {
	return strings.Contains(string(m.Data), s)
}

// Config configures the mailbox.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Addr            string `env:"MAILBOX_ADDR" envDefault:"127.0.0.1:1025"`
	Domain          string `env:"MAILBOX_DOMAIN" envDefault:"localhost"`
	Username        string `env:"MAILBOX_USERNAME"`
	Password        string `env:"MAILBOX_PASSWORD"`
	MaxMessageBytes int64  `env:"MAILBOX_MAX_MESSAGE_BYTES" envDefault:"10485760"`
}

// Option configures a Mailbox.
type Option func(*Mailbox)

// WithCredentials requires AUTH PLAIN with the given credentials.
func WithCredentials(username, password string) Option {
	return func(m *Mailbox) {
		m.username = username
		m.password = password
	}
}

// WithDomain sets the domain announced in the SMTP greeting.
func WithDomain(domain string) Option {
	return func(m *Mailbox) {
		m.server.Domain = domain
	}
}

// WithMaxMessageBytes limits accepted message size.
func WithMaxMessageBytes(n int64) Option {
	return func(m *Mailbox) {
		m.server.MaxMessageBytes = n
	}
}

// WithLogger sets the logger for received messages.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailbox) {
		if l != nil {
			m.logger = l
		}
	}
}

// Mailbox is an in-memory SMTP sink.
type Mailbox struct {
	server   *smtp.Server
	ln       net.Listener
	logger   *slog.Logger
	incoming chan Mail
	username string
	password string
	mails    []Mail
	mu       sync.Mutex
}

// New creates a mailbox. Call Start or Listen and Serve to accept mail.
func New(opts ...Option) *Mailbox {
	m := &Mailbox{
		logger:   logger.NewNope(),
		incoming: make(chan Mail, 128),
	}
	m.server = smtp.NewServer(&backend{mb: m})
	m.server.Domain = "localhost"
	m.server.AllowInsecureAuth = true
	m.server.ReadTimeout = 30 * time.Second
	m.server.WriteTimeout = 30 * time.Second
	m.server.MaxMessageBytes = 10 << 20
	m.server.MaxRecipients = 100

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewFromConfig creates a mailbox from Config.
func NewFromConfig(cfg Config, opts ...Option) *Mailbox {
	base := []Option{}
	if cfg.Domain != "" {
		base = append(base, WithDomain(cfg.Domain))
	}
	if cfg.Username != "" {
		base = append(base, WithCredentials(cfg.Username, cfg.Password))
	}
	if cfg.MaxMessageBytes > 0 {
		base = append(base, WithMaxMessageBytes(cfg.MaxMessageBytes))
	}
	return New(append(base, opts...)...)
}

// Listen binds the mailbox to addr. Use port 0 for a random port.
func (m *Mailbox) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.ln = ln
	m.mu.Unlock()
	return nil
}

// Serve accepts connections until Close is called.
// It returns nil after Close.
func (m *Mailbox) Serve() error {
	m.mu.Lock()
	ln := m.ln
	m.mu.Unlock()
	if ln == nil {
		return ErrNotListening
	}

	m.logger.Info("mailbox listening", slog.String("address", ln.Addr().String()))
	if err := m.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on addr and serves in the background.
func (m *Mailbox) Start(addr string) error {
	if err := m.Listen(addr); err != nil {
		return err
	}
	go func() {
		if err := m.Serve(); err != nil {
			m.logger.Error("mailbox stopped", slog.Any("error", err))
		}
	}()
	return nil
}

// Close stops the server and releases the listener.
func (m *Mailbox) Close() error {
	err := m.server.Close()

	// Serve may not have registered the listener yet
	m.mu.Lock()
	if m.ln != nil {
		_ = m.ln.Close()
	}
	m.mu.Unlock()

	return err
}

// Addr returns the listening address, or an empty string.
func (m *Mailbox) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln == nil {
		return ""
	}
	return m.ln.Addr().String()
}

// Port returns the listening TCP port, or 0.
func (m *Mailbox) Port() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln == nil {
		return 0
	}
	if addr, ok := m.ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Messages returns a snapshot of all received messages.
func (m *Mailbox) Messages() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Mail, len(m.mails))
	copy(out, m.mails)
	return out
}

// Next blocks until a message arrives or ctx is done.
// Each message is returned by Next at most once.
func (m *Mailbox) Next(ctx context.Context) (Mail, error) {
	select {
	case mail := <-m.incoming:
		return mail, nil
	case <-ctx.Done():
		return Mail{}, ctx.Err()
	}
}

func (m *Mailbox) deliver(mail Mail) {
	m.mu.Lock()
	m.mails = append(m.mails, mail)
	m.mu.Unlock()

	select {
	case m.incoming <- mail:
	default:
		// Nobody is draining Next; the message stays in Messages.
	}

	m.logger.Info("mail received",
		slog.String("from", mail.From),
		slog.Any("to", mail.To),
		slog.Int("size", len(mail.Data)),
	)
}

func (m *Mailbox) requiresAuth() bool {
	return m.username != ""
}

// backend creates one session per SMTP connection.
type backend struct {
	mb *Mailbox
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{mb: b.mb}, nil
}

type session struct {
	mb     *Mailbox
	from   string
	to     []string
	authed bool
}

func (s *session) AuthMechanisms() []string {
	if !s.mb.requiresAuth() {
		return nil
	}
	return []string{sasl.Plain}
}

func (s *session) Auth(mech string) (sasl.Server, error) {
	if mech != sasl.Plain {
		return nil, smtp.ErrAuthUnknownMechanism
	}
	return sasl.NewPlainServer(func(_, username, password string) error {
		if username != s.mb.username || password != s.mb.password {
			return smtp.ErrAuthFailed
		}
		s.authed = true
		return nil
	}), nil
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	if s.mb.requiresAuth() && !s.authed {
		return smtp.ErrAuthRequired
	}
	s.from = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.to = append(s.to, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mb.deliver(Mail{
		ReceivedAt: time.Now(),
		From:       s.from,
		To:         append([]string(nil), s.to...),
		Data:       data,
	})
	return nil
}

func (s *session) Reset() {
	s.from = ""
	s.to = nil
}

func (s *session) Logout() error {
	return nil
}
