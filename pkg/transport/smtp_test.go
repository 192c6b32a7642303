package transport_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemail/pkg/mailbox"
	"github.com/dmitrymomot/forgemail/pkg/transport"
)

func startMailbox(t *testing.T, opts ...mailbox.Option) *mailbox.Mailbox {
	t.Helper()

	mb := mailbox.New(opts...)
	require.NoError(t, mb.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = mb.Close() })
	return mb
}

func TestSMTP_Send(t *testing.T) {
	t.Parallel()

	mb := startMailbox(t)
	tr, err := transport.NewSMTP(transport.Settings{
		Host:     "127.0.0.1",
		Port:     mb.Port(),
		StartTLS: "none",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := tr.Send(ctx, &transport.Message{
		From:                 "App <app@example.com>",
		To:                   []string{"user@example.com"},
		BCC:                  []string{"audit@example.com"},
		Subject:              "Welcome",
		HTML:                 "<title>Welcome</title><p>Hello</p>",
		GenerateTextFromHTML: true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"user@example.com", "audit@example.com"}, res.Accepted)

	mail, err := mb.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "app@example.com", mail.From)
	require.Equal(t, []string{"user@example.com", "audit@example.com"}, mail.To)
	require.True(t, mail.Contains("Subject: Welcome"))
	require.True(t, mail.Contains("<title>Welcome</title>"))
	require.False(t, mail.Contains("Bcc:"))
}

func TestSMTP_Send_ReusesConnection(t *testing.T) {
	t.Parallel()

	mb := startMailbox(t)
	tr, err := transport.NewSMTP(transport.Settings{Host: "127.0.0.1", Port: mb.Port(), StartTLS: "none"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		_, err := tr.Send(ctx, &transport.Message{
			From: "app@example.com",
			To:   []string{"user@example.com"},
			HTML: "<p>x</p>",
		})
		require.NoError(t, err)
	}

	require.Len(t, mb.Messages(), 3)
}

func TestSMTP_Send_WithAuth(t *testing.T) {
	t.Parallel()

	mb := startMailbox(t, mailbox.WithCredentials("app", "secret"))

	t.Run("valid credentials", func(t *testing.T) {
		tr, err := transport.NewSMTP(transport.Settings{
			Host:     "127.0.0.1",
			Port:     mb.Port(),
			Username: "app",
			Password: "secret",
			StartTLS: "none",
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = tr.Close() })

		_, err = tr.Send(context.Background(), &transport.Message{
			From: "app@example.com",
			To:   []string{"user@example.com"},
			HTML: "<p>x</p>",
		})
		require.NoError(t, err)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		tr, err := transport.NewSMTP(transport.Settings{
			Host:     "127.0.0.1",
			Port:     mb.Port(),
			Username: "app",
			Password: "wrong",
			StartTLS: "none",
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = tr.Close() })

		_, err = tr.Send(context.Background(), &transport.Message{
			From: "app@example.com",
			To:   []string{"user@example.com"},
			HTML: "<p>x</p>",
		})
		require.Error(t, err)
	})
}

func TestSMTP_Send_ConnectionRefused(t *testing.T) {
	t.Parallel()

	mb := startMailbox(t)
	port := mb.Port()
	require.NoError(t, mb.Close())

	tr, err := transport.NewSMTP(transport.Settings{
		Host:     "127.0.0.1",
		Port:     port,
		StartTLS: "none",
		Timeout:  time.Second,
	})
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), &transport.Message{
		From: "app@example.com",
		To:   []string{"user@example.com"},
	})
	require.Error(t, err)
}

func TestSMTP_Send_Validation(t *testing.T) {
	t.Parallel()

	tr, err := transport.NewSMTP(transport.Settings{Host: "127.0.0.1", Port: 1})
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), &transport.Message{From: "app@example.com"})
	require.ErrorIs(t, err, transport.ErrNoRecipients)
}

func TestSMTP_Close(t *testing.T) {
	t.Parallel()

	mb := startMailbox(t)
	tr, err := transport.NewSMTP(transport.Settings{Host: "127.0.0.1", Port: mb.Port(), StartTLS: "none"})
	require.NoError(t, err)

	_, err = tr.Send(context.Background(), &transport.Message{
		From: "app@example.com",
		To:   []string{"user@example.com"},
	})
	require.NoError(t, err)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	_, err = tr.Send(context.Background(), &transport.Message{
		From: "app@example.com",
		To:   []string{"user@example.com"},
	})
	require.ErrorIs(t, err, transport.ErrClosed)
}

func TestSMTP_Ping(t *testing.T) {
	t.Parallel()

	mb := startMailbox(t)
	tr, err := transport.NewSMTP(transport.Settings{Host: "127.0.0.1", Port: mb.Port(), StartTLS: "none", Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })

	var pinger transport.Pinger = tr
	require.NoError(t, pinger.Ping(context.Background()))
	require.Empty(t, mb.Messages())

	require.NoError(t, mb.Close())
	require.NoError(t, tr.Close())

	tr, err = transport.NewSMTP(transport.Settings{Host: "127.0.0.1", Port: mb.Port(), StartTLS: "none", Timeout: time.Second})
	require.NoError(t, err)
	require.Error(t, tr.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, tr.Ping(ctx), context.Canceled)
}
