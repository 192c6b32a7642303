package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dmitrymomot/forgemail/pkg/logger"
	"github.com/dmitrymomot/forgemail/pkg/transport"
)

// Mailer renders templates through its host and delivers them as email.
// It is safe for concurrent use.
type Mailer struct {
	renderer        Renderer
	factory         transport.Factory
	logger          *slog.Logger
	requestRenderer func(r *http.Request) Renderer

	live   transport.Transport
	opts   Options
	mu     sync.RWMutex
	closed bool

	stub     transport.Transport
	stubErr  error
	stubOnce sync.Once
}

// Extend attaches a mailer to host and registers its per-request middleware.
// A host can be extended once; later calls return ErrAlreadyExtended whatever
// the options. The live transport is created before the middleware is added.
func Extend(host Host, opts Options, options ...Option) (*Mailer, error) {
	if host == nil {
		return nil, errors.Join(ErrInvalidOptions, errors.New("host is nil"))
	}
	if !claimHost(host) {
		return nil, ErrAlreadyExtended
	}

	m, err := newMailer(host, opts, options...)
	if err != nil {
		releaseHost(host)
		return nil, err
	}

	host.Use(m.Middleware())
	return m, nil
}

// MustExtend is like Extend but panics on error.
func MustExtend(host Host, opts Options, options ...Option) *Mailer {
	m, err := Extend(host, opts, options...)
	if err != nil {
		panic(err)
	}
	return m
}

func newMailer(renderer Renderer, opts Options, options ...Option) (*Mailer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	m := &Mailer{
		renderer: renderer,
		factory:  DefaultTransportFactory,
		logger:   logger.NewNope(),
		opts:     opts.normalized(),
	}
	for _, opt := range options {
		opt(m)
	}

	live, err := m.factory(m.opts.Transport, m.opts.Settings)
	if err != nil {
		return nil, errors.Join(ErrNoTransport, err)
	}
	m.live = live

	return m, nil
}

// Send renders the requested template with locals and delivers the result
// through the live transport. Rendering failures skip delivery. Exactly one
// delivery attempt is made.
func (m *Mailer) Send(ctx context.Context, req Request, locals Locals) error {
	return m.send(ctx, m.renderer, req, locals)
}

// Render renders the requested template like Send but composes the message
// with the stub transport and returns the full MIME text. Nothing is delivered.
// The stub is created on the first Render; if that fails, every later
// Render returns the same error wrapped in ErrComposeFailed.
func (m *Mailer) Render(ctx context.Context, req Request, locals Locals) (string, error) {
	return m.render(ctx, m.renderer, req, locals)
}

// Update closes the live transport and replaces the configuration and
// transport with ones built from opts. Options are replaced, never merged.
//
// If closing fails, the previous configuration stays in effect and an error
// wrapping ErrCloseFailed is returned. If the new transport cannot be
// created, the new configuration is kept without a live transport and sends
// fail with ErrNoTransport until the next successful Update. The stub
// transport used by Render is not affected.
func (m *Mailer) Update(ctx context.Context, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	opts = opts.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.live != nil {
		if err := m.live.Close(); err != nil {
			m.logger.ErrorContext(ctx, "failed to close transport on update",
				slog.String("transport", m.opts.Transport),
				slog.Any("error", err),
			)
			return errors.Join(ErrCloseFailed, err)
		}
	}

	m.opts = opts
	m.live = nil

	live, err := m.factory(opts.Transport, opts.Settings)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to create transport on update",
			slog.String("transport", opts.Transport),
			slog.Any("error", err),
		)
		return errors.Join(ErrNoTransport, err)
	}
	m.live = live

	m.logger.InfoContext(ctx, "mailer updated",
		slog.String("transport", opts.Transport),
		slog.String("from", opts.From),
	)
	return nil
}

// Ping checks that the live transport can reach its server.
// Transports that cannot be checked are reported healthy.
func (m *Mailer) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	if m.live == nil {
		return ErrNoTransport
	}
	if p, ok := m.live.(transport.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Config returns a copy of the active options.
func (m *Mailer) Config() Options {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opts
}

// Close closes the live and stub transports. The Mailer cannot be used afterwards.
func (m *Mailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	if m.live != nil {
		if err := m.live.Close(); err != nil {
			errs = append(errs, err)
		}
		m.live = nil
	}
	if m.stub != nil {
		if err := m.stub.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrCloseFailed}, errs...)...)
	}
	return nil
}

// Middleware attaches a request Scope to every request context.
// Extend registers it on the host; use it directly for hosts wired by hand.
func (m *Mailer) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := m.NewScope(r)
			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

func (m *Mailer) send(ctx context.Context, r Renderer, req Request, locals Locals) error {
	name, fields, err := resolveRequest(req)
	if err != nil {
		return err
	}

	html, err := r.Render(ctx, name, locals)
	if err != nil {
		m.logger.WarnContext(ctx, "failed to render email",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return errors.Join(ErrRenderFailed, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	if m.live == nil {
		return ErrNoTransport
	}

	msg := buildMessage(fields, locals, m.opts.From, html)
	res, err := m.live.Send(ctx, msg)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to send email",
			slog.String("template", name),
			slog.String("transport", m.opts.Transport),
			slog.Any("to", msg.To),
			slog.Any("error", err),
		)
		return errors.Join(ErrSendFailed, err)
	}

	attrs := []any{
		slog.String("template", name),
		slog.String("transport", m.opts.Transport),
		slog.Any("to", msg.To),
	}
	if res != nil {
		attrs = append(attrs, slog.String("message_id", res.MessageID))
	}
	m.logger.InfoContext(ctx, "email sent", attrs...)
	return nil
}

func (m *Mailer) render(ctx context.Context, r Renderer, req Request, locals Locals) (string, error) {
	name, fields, err := resolveRequest(req)
	if err != nil {
		return "", err
	}

	html, err := r.Render(ctx, name, locals)
	if err != nil {
		m.logger.WarnContext(ctx, "failed to render email",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return "", errors.Join(ErrRenderFailed, err)
	}

	stub, err := m.stubTransport()
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return "", ErrClosed
		}
		return "", errors.Join(ErrComposeFailed, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", ErrClosed
	}

	res, err := stub.Send(ctx, buildMessage(fields, locals, m.opts.From, html))
	if err != nil {
		return "", errors.Join(ErrComposeFailed, err)
	}

	m.logger.DebugContext(ctx, "email composed",
		slog.String("template", name),
		slog.String("message_id", res.MessageID),
	)
	return res.Message, nil
}

// stubTransport creates the stub transport on first use and reuses it.
// The outcome of the first attempt is kept for the life of the Mailer,
// so a factory error for the stub is returned by every later Render.
// A Mailer closed before the first Render never creates the stub.
func (m *Mailer) stubTransport() (transport.Transport, error) {
	m.stubOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.closed {
			m.stubErr = ErrClosed
			return
		}
		m.stub, m.stubErr = m.factory(transport.KindStub, transport.Settings{})
	})

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stub, m.stubErr
}
