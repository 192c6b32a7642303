package transport

import (
	"sync"
	"time"
)

// connPool keeps idle connections for reuse.
// Connections in use are owned by the caller until put or discard.
type connPool[T any] struct {
	dial    func() (T, error)
	close   func(T) error
	idle    []pooledConn[T]
	maxIdle int
	idleTTL time.Duration
	mu      sync.Mutex
	closed  bool
}

type pooledConn[T any] struct {
	conn T
	ts   time.Time
}

func newConnPool[T any](maxIdle int, idleTTL time.Duration, dial func() (T, error), closeFn func(T) error) *connPool[T] {
	if maxIdle <= 0 {
		maxIdle = 2
	}
	if idleTTL <= 0 {
		idleTTL = 30 * time.Second
	}
	return &connPool[T]{
		dial:    dial,
		close:   closeFn,
		maxIdle: maxIdle,
		idleTTL: idleTTL,
	}
}

// get returns the most recently used idle connection or dials a new one.
func (p *connPool[T]) get() (T, error) {
	var zero T

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, ErrClosed
	}
	for len(p.idle) > 0 {
		last := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if time.Since(last.ts) <= p.idleTTL {
			p.mu.Unlock()
			return last.conn, nil
		}
		_ = p.close(last.conn)
	}
	p.mu.Unlock()

	return p.dial()
}

// put returns a healthy connection to the pool.
func (p *connPool[T]) put(conn T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || len(p.idle) >= p.maxIdle {
		_ = p.close(conn)
		return
	}
	p.idle = append(p.idle, pooledConn[T]{conn: conn, ts: time.Now()})
}

// discard closes a connection that failed mid-use.
func (p *connPool[T]) discard(conn T) {
	_ = p.close(conn)
}

// closeAll closes idle connections and rejects further gets.
// Connections returned later are closed by put.
func (p *connPool[T]) closeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for _, it := range p.idle {
		if err := p.close(it.conn); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.idle = nil
	return firstErr
}

// idleCount reports the number of idle connections.
func (p *connPool[T]) idleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
