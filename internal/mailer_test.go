package internal_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemail/internal"
	"github.com/dmitrymomot/forgemail/pkg/transport"
)

func TestExtend(t *testing.T) {
	t.Parallel()

	t.Run("creates live transport from options", func(t *testing.T) {
		t.Parallel()

		live := &MockTransport{}
		factory := newFakeFactory(live)

		m, err := internal.Extend(newApp(&staticRenderer{}), internal.Options{
			From:     "app@x.com",
			Settings: transport.Settings{Host: "localhost", Port: 1025},
		}, internal.WithTransportFactory(factory.create))
		require.NoError(t, err)
		require.NotNil(t, m)

		require.Len(t, factory.calls, 1)
		require.Equal(t, transport.KindSMTP, factory.calls[0].kind)
		require.Equal(t, "localhost", factory.calls[0].settings.Host)
		require.Equal(t, 1025, factory.calls[0].settings.Port)
		require.Equal(t, transport.KindSMTP, m.Config().Transport)
	})

	t.Run("second extension fails regardless of options", func(t *testing.T) {
		t.Parallel()

		app := newApp(&staticRenderer{})
		factory := newFakeFactory(&MockTransport{}, &MockTransport{})

		_, err := internal.Extend(app, baseOptions(), internal.WithTransportFactory(factory.create))
		require.NoError(t, err)

		_, err = internal.Extend(app, baseOptions(), internal.WithTransportFactory(factory.create))
		require.ErrorIs(t, err, internal.ErrAlreadyExtended)

		_, err = internal.Extend(app, internal.Options{}, internal.WithTransportFactory(factory.create))
		require.ErrorIs(t, err, internal.ErrAlreadyExtended)

		require.Equal(t, 1, factory.count(transport.KindSMTP))
	})

	t.Run("MustExtend panics on second extension", func(t *testing.T) {
		t.Parallel()

		app := newApp(&staticRenderer{})
		factory := newFakeFactory(&MockTransport{})

		internal.MustExtend(app, baseOptions(), internal.WithTransportFactory(factory.create))
		require.PanicsWithError(t, internal.ErrAlreadyExtended.Error(), func() {
			internal.MustExtend(app, baseOptions(), internal.WithTransportFactory(factory.create))
		})
	})

	t.Run("missing sender is rejected and host stays extendable", func(t *testing.T) {
		t.Parallel()

		app := newApp(&staticRenderer{})
		factory := newFakeFactory(&MockTransport{})

		_, err := internal.Extend(app, internal.Options{}, internal.WithTransportFactory(factory.create))
		require.ErrorIs(t, err, internal.ErrInvalidOptions)
		require.ErrorIs(t, err, transport.ErrNoSender)

		_, err = internal.Extend(app, baseOptions(), internal.WithTransportFactory(factory.create))
		require.NoError(t, err)
	})

	t.Run("transport creation failure", func(t *testing.T) {
		t.Parallel()

		factory := newFakeFactory()
		factory.setErr(transport.ErrInvalidSettings)

		_, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(), internal.WithTransportFactory(factory.create))
		require.ErrorIs(t, err, internal.ErrNoTransport)
		require.ErrorIs(t, err, transport.ErrInvalidSettings)
	})

	t.Run("nil host", func(t *testing.T) {
		t.Parallel()

		_, err := internal.Extend(nil, baseOptions())
		require.ErrorIs(t, err, internal.ErrInvalidOptions)
	})
}

func TestMailer_Send_Success(t *testing.T) {
	t.Parallel()

	renderer := &MockRenderer{}
	live := &MockTransport{}
	factory := newFakeFactory(live)

	locals := internal.Locals{"to": "u@y.com", "subject": "Hi"}
	renderer.On("Render", mock.Anything, "welcome", locals).Return("<p>Welcome</p>", nil).Once()
	live.On("Send", mock.Anything, mock.MatchedBy(func(msg *transport.Message) bool {
		return msg.From == "a@x.com" &&
			len(msg.To) == 1 && msg.To[0] == "u@y.com" &&
			msg.Subject == "Hi" &&
			msg.HTML == "<p>Welcome</p>" &&
			msg.GenerateTextFromHTML
	})).Return(&transport.Result{MessageID: "<id@x.com>"}, nil).Once()

	m, err := internal.Extend(newApp(renderer), internal.Options{
		From:     "a@x.com",
		Settings: transport.Settings{Host: "localhost", Port: 1025},
	}, internal.WithTransportFactory(factory.create))
	require.NoError(t, err)

	err = m.Send(context.Background(), internal.ByTemplateName("welcome"), locals)
	require.NoError(t, err)

	renderer.AssertExpectations(t)
	live.AssertExpectations(t)
	require.Zero(t, factory.count(transport.KindStub))
}

func TestMailer_Send_RenderFailure(t *testing.T) {
	t.Parallel()

	renderErr := errors.New("template not found")
	renderer := &MockRenderer{}
	renderer.On("Render", mock.Anything, "missing", mock.Anything).Return("", renderErr)

	live := &MockTransport{}
	m, err := internal.Extend(newApp(renderer), baseOptions(),
		internal.WithTransportFactory(newFakeFactory(live).create))
	require.NoError(t, err)

	for _, req := range []internal.Request{
		internal.ByTemplateName("missing"),
		internal.WithOverrides{Template: "missing", Fields: internal.Fields{To: []string{"a@b.com"}}},
	} {
		err = m.Send(context.Background(), req, internal.Locals{"to": "c@d.com"})
		require.ErrorIs(t, err, internal.ErrRenderFailed)
		require.ErrorIs(t, err, renderErr)

		_, err = m.Render(context.Background(), req, nil)
		require.ErrorIs(t, err, internal.ErrRenderFailed)
	}

	live.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestMailer_Send_DeliveryFailure(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("smtp connection failed")
	live := &MockTransport{}
	live.On("Send", mock.Anything, mock.Anything).Return(nil, sendErr).Once()

	m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(),
		internal.WithTransportFactory(newFakeFactory(live).create))
	require.NoError(t, err)

	err = m.Send(context.Background(), internal.ByTemplateName("welcome"), internal.Locals{"to": "u@y.com"})
	require.ErrorIs(t, err, internal.ErrSendFailed)
	require.ErrorIs(t, err, sendErr)

	// One attempt, no retries
	live.AssertNumberOfCalls(t, "Send", 1)
}

func TestMailer_Send_NoTemplate(t *testing.T) {
	t.Parallel()

	renderer := &MockRenderer{}
	m, err := internal.Extend(newApp(renderer), baseOptions(),
		internal.WithTransportFactory(newFakeFactory(&MockTransport{}).create))
	require.NoError(t, err)

	require.ErrorIs(t, m.Send(context.Background(), nil, nil), internal.ErrNoTemplate)
	require.ErrorIs(t, m.Send(context.Background(), internal.ByTemplateName(""), nil), internal.ErrNoTemplate)

	_, err = m.Render(context.Background(), internal.WithOverrides{}, nil)
	require.ErrorIs(t, err, internal.ErrNoTemplate)

	renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
}

func TestMailer_Render(t *testing.T) {
	t.Parallel()

	live := &MockTransport{}
	factory := newFakeFactory(live)

	m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(), internal.WithTransportFactory(factory.create))
	require.NoError(t, err)

	raw, err := m.Render(context.Background(), internal.ByTemplateName("email"), internal.Locals{
		"to":      "test@localhost",
		"subject": "Test Email",
	})
	require.NoError(t, err)
	require.Contains(t, raw, "Subject: Test Email")
	require.Contains(t, raw, "From: app@x.com")
	require.Contains(t, raw, "To: test@localhost")
	require.Contains(t, raw, "<h1>email</h1>")

	_, err = m.Render(context.Background(), internal.ByTemplateName("email"), nil)
	require.NoError(t, err)

	require.Equal(t, 1, factory.count(transport.KindStub))
	live.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestMailer_Update(t *testing.T) {
	t.Parallel()

	t.Run("replaces sender and transport", func(t *testing.T) {
		t.Parallel()

		oldLive := &MockTransport{}
		oldLive.On("Close").Return(nil).Once()
		newLive := &MockTransport{}
		newLive.On("Send", mock.Anything, mock.MatchedBy(func(msg *transport.Message) bool {
			return msg.From == "updated@x.com"
		})).Return(&transport.Result{}, nil).Once()

		factory := newFakeFactory(oldLive, newLive)
		m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(), internal.WithTransportFactory(factory.create))
		require.NoError(t, err)

		_, err = m.Render(context.Background(), internal.ByTemplateName("email"), nil)
		require.NoError(t, err)

		err = m.Update(context.Background(), internal.Options{
			From:      "updated@x.com",
			Transport: "SMTP",
			Settings:  transport.Settings{Host: "mail.example.com", Port: 2525},
		})
		require.NoError(t, err)

		cfg := m.Config()
		require.Equal(t, "updated@x.com", cfg.From)
		require.Equal(t, transport.KindSMTP, cfg.Transport)
		require.Equal(t, "mail.example.com", cfg.Settings.Host)
		require.Equal(t, 2525, factory.calls[len(factory.calls)-1].settings.Port)

		err = m.Send(context.Background(), internal.ByTemplateName("email"), internal.Locals{"to": "u@y.com"})
		require.NoError(t, err)

		_, err = m.Render(context.Background(), internal.ByTemplateName("email"), nil)
		require.NoError(t, err)

		oldLive.AssertExpectations(t)
		newLive.AssertExpectations(t)
		oldLive.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		require.Equal(t, 1, factory.count(transport.KindStub))
	})

	t.Run("close failure keeps previous configuration", func(t *testing.T) {
		t.Parallel()

		closeErr := errors.New("quit failed")
		oldLive := &MockTransport{}
		oldLive.On("Close").Return(closeErr).Once()
		oldLive.On("Send", mock.Anything, mock.MatchedBy(func(msg *transport.Message) bool {
			return msg.From == "app@x.com"
		})).Return(&transport.Result{}, nil).Once()

		factory := newFakeFactory(oldLive, &MockTransport{})
		m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(), internal.WithTransportFactory(factory.create))
		require.NoError(t, err)

		err = m.Update(context.Background(), internal.Options{From: "updated@x.com"})
		require.ErrorIs(t, err, internal.ErrCloseFailed)
		require.ErrorIs(t, err, closeErr)

		require.Equal(t, 1, factory.count(transport.KindSMTP))
		require.Equal(t, "app@x.com", m.Config().From)

		err = m.Send(context.Background(), internal.ByTemplateName("email"), internal.Locals{"to": "u@y.com"})
		require.NoError(t, err)
		oldLive.AssertExpectations(t)
	})

	t.Run("transport creation failure leaves no live transport", func(t *testing.T) {
		t.Parallel()

		oldLive := &MockTransport{}
		oldLive.On("Close").Return(nil).Once()
		recovered := &MockTransport{}
		recovered.On("Send", mock.Anything, mock.Anything).Return(&transport.Result{}, nil).Once()

		factory := newFakeFactory(oldLive)
		m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(), internal.WithTransportFactory(factory.create))
		require.NoError(t, err)

		factory.setErr(transport.ErrUnknownKind)
		err = m.Update(context.Background(), internal.Options{From: "updated@x.com", Transport: "pigeon"})
		require.ErrorIs(t, err, internal.ErrNoTransport)
		require.ErrorIs(t, err, transport.ErrUnknownKind)

		err = m.Send(context.Background(), internal.ByTemplateName("email"), internal.Locals{"to": "u@y.com"})
		require.ErrorIs(t, err, internal.ErrNoTransport)

		factory.setErr(nil)
		factory.live = append(factory.live, recovered)
		require.NoError(t, m.Update(context.Background(), baseOptions()))
		require.NoError(t, m.Send(context.Background(), internal.ByTemplateName("email"), internal.Locals{"to": "u@y.com"}))
		recovered.AssertExpectations(t)
	})

	t.Run("invalid options do not touch the transport", func(t *testing.T) {
		t.Parallel()

		live := &MockTransport{}
		m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(),
			internal.WithTransportFactory(newFakeFactory(live).create))
		require.NoError(t, err)

		err = m.Update(context.Background(), internal.Options{})
		require.ErrorIs(t, err, internal.ErrInvalidOptions)
		live.AssertNotCalled(t, "Close")
	})
}

func TestMailer_Close(t *testing.T) {
	t.Parallel()

	live := &MockTransport{}
	live.On("Close").Return(nil).Once()

	m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(),
		internal.WithTransportFactory(newFakeFactory(live).create))
	require.NoError(t, err)

	_, err = m.Render(context.Background(), internal.ByTemplateName("email"), nil)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	live.AssertExpectations(t)

	err = m.Send(context.Background(), internal.ByTemplateName("email"), internal.Locals{"to": "u@y.com"})
	require.ErrorIs(t, err, internal.ErrClosed)

	_, err = m.Render(context.Background(), internal.ByTemplateName("email"), nil)
	require.ErrorIs(t, err, internal.ErrClosed)

	require.ErrorIs(t, m.Update(context.Background(), baseOptions()), internal.ErrClosed)
}

func TestMailer_Close_BeforeRender(t *testing.T) {
	t.Parallel()

	live := &MockTransport{}
	live.On("Close").Return(nil).Once()
	factory := newFakeFactory(live)

	m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(), internal.WithTransportFactory(factory.create))
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.Render(context.Background(), internal.ByTemplateName("email"), nil)
	require.ErrorIs(t, err, internal.ErrClosed)
	require.NotErrorIs(t, err, internal.ErrComposeFailed)
	require.Zero(t, factory.count(transport.KindStub))
}

func TestMailer_RenderRacingClose(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		live := &MockTransport{}
		live.On("Close").Return(nil).Once()
		factory := newFakeFactory(live)

		m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(), internal.WithTransportFactory(factory.create))
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for j := 0; j < 10; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := m.Render(context.Background(), internal.ByTemplateName("email"), nil)
				errs <- err
			}()
		}
		require.NoError(t, m.Close())
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				require.ErrorIs(t, err, internal.ErrClosed)
			}
		}
		if stub := factory.createdStub(); stub != nil {
			require.True(t, stub.isClosed())
		}
		require.LessOrEqual(t, factory.count(transport.KindStub), 1)
	}
}

func TestMailer_Close_Error(t *testing.T) {
	t.Parallel()

	closeErr := errors.New("quit failed")
	live := &MockTransport{}
	live.On("Close").Return(closeErr).Once()

	m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(),
		internal.WithTransportFactory(newFakeFactory(live).create))
	require.NoError(t, err)

	err = m.Close()
	require.ErrorIs(t, err, internal.ErrCloseFailed)
	require.ErrorIs(t, err, closeErr)
}

func TestMailer_ConcurrentSendAndUpdate(t *testing.T) {
	t.Parallel()

	const updates = 5
	live := make([]transport.Transport, 0, updates+1)
	for i := 0; i <= updates; i++ {
		live = append(live, transport.NewStub())
	}

	m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(),
		internal.WithTransportFactory(newFakeFactory(live...).create))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Send(context.Background(), internal.ByTemplateName("email"), internal.Locals{"to": "u@y.com"})
		}()
	}
	for i := 0; i < updates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Update(context.Background(), baseOptions())
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

// pingTransport is a MockTransport that also implements transport.Pinger.
type pingTransport struct {
	MockTransport
}

func (p *pingTransport) Ping(ctx context.Context) error {
	return p.Called(ctx).Error(0)
}

func TestMailer_Ping(t *testing.T) {
	t.Parallel()

	t.Run("transport without ping is healthy", func(t *testing.T) {
		t.Parallel()

		m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(),
			internal.WithTransportFactory(newFakeFactory(&MockTransport{}).create))
		require.NoError(t, err)
		require.NoError(t, m.Ping(context.Background()))
	})

	t.Run("delegates to pinger", func(t *testing.T) {
		t.Parallel()

		unreachable := errors.New("connection refused")
		live := &pingTransport{}
		live.On("Ping", mock.Anything).Return(nil).Once()
		live.On("Ping", mock.Anything).Return(unreachable).Once()
		live.On("Close").Return(nil).Once()

		m, err := internal.Extend(newApp(&staticRenderer{}), baseOptions(),
			internal.WithTransportFactory(newFakeFactory(live).create))
		require.NoError(t, err)

		require.NoError(t, m.Ping(context.Background()))
		require.ErrorIs(t, m.Ping(context.Background()), unreachable)

		require.NoError(t, m.Close())
		require.ErrorIs(t, m.Ping(context.Background()), internal.ErrClosed)
		live.AssertExpectations(t)
	})
}
