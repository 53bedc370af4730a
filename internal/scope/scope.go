// Package scope cancels superseded work.  A Scope hands out one context at
// a time: starting a new operation cancels the previous one, and Close
// cancels whatever is still running when the owner goes away.
package scope

import (
	"context"
	"sync"
)

// Scope is safe for concurrent use.  The zero value is ready to use.
type Scope struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
	closed bool
}

// Begin cancels the previous operation and returns a context for the new
// one, plus a done func that releases it.  After Close, Begin returns an
// already-cancelled context.
func (s *Scope) Begin(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.closed {
		s.mu.Unlock()
		cancel()
		return ctx, cancel
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()
	ctx = context.WithValue(ctx, genKey{s: s}, gen)

	done := func() {
		cancel()
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}
	return ctx, done
}

type genKey struct{ s *Scope }

// Latest reports whether ctx belongs to the most recent operation begun
// on s and s is still open.  Callers publishing a result check it under
// the same lock that guards the result.
func (s *Scope) Latest(ctx context.Context) bool {
	gen, ok := ctx.Value(genKey{s: s}).(uint64)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.gen == gen
}

// Close cancels the running operation and makes later Begin calls return
// cancelled contexts.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
