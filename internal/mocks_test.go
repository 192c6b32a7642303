package internal_test

import (
	"context"
	"errors"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/forgemail/internal"
	"github.com/dmitrymomot/forgemail/pkg/transport"
)

// MockTransport is a mock implementation of transport.Transport.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(ctx context.Context, msg *transport.Message) (*transport.Result, error) {
	args := m.Called(ctx, msg)
	res, _ := args.Get(0).(*transport.Result)
	return res, args.Error(1)
}

func (m *MockTransport) Close() error {
	return m.Called().Error(0)
}

// MockRenderer is a mock implementation of internal.Renderer.
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, name string, locals internal.Locals) (string, error) {
	args := m.Called(ctx, name, locals)
	return args.String(0), args.Error(1)
}

// trackedStub is a stub transport that records Close.
type trackedStub struct {
	*transport.Stub
	closed bool
	mu     sync.Mutex
}

func (s *trackedStub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *trackedStub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type factoryCall struct {
	kind     string
	settings transport.Settings
}

// fakeFactory hands out queued live transports and one shared stub.
type fakeFactory struct {
	err   error
	stub  *trackedStub
	live  []transport.Transport
	calls []factoryCall
	mu    sync.Mutex
}

func newFakeFactory(live ...transport.Transport) *fakeFactory {
	return &fakeFactory{live: live}
}

func (f *fakeFactory) create(kind string, s transport.Settings) (transport.Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, factoryCall{kind: kind, settings: s})

	if kind == transport.KindStub {
		if f.stub == nil {
			f.stub = &trackedStub{Stub: transport.NewStub()}
		}
		return f.stub, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.live) == 0 {
		return nil, errors.New("no transport queued")
	}
	t := f.live[0]
	f.live = f.live[1:]
	return t, nil
}

func (f *fakeFactory) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeFactory) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// createdStub returns the stub handed out so far, if any.
func (f *fakeFactory) createdStub() *trackedStub {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stub
}

// staticRenderer renders "<h1>{name}</h1>" and records calls.
type staticRenderer struct {
	calls []string
	mu    sync.Mutex
}

func (r *staticRenderer) Render(_ context.Context, name string, _ internal.Locals) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	return "<h1>" + name + "</h1>", nil
}

func newApp(r internal.Renderer) *internal.App {
	return internal.NewApp(chi.NewRouter(), r)
}

func baseOptions() internal.Options {
	return internal.Options{
		From:     "app@x.com",
		Settings: transport.Settings{Host: "localhost", Port: 1025},
	}
}
