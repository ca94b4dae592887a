// internal/cache/session.go
package cache

import (
	"context"
	"sync"
)

// Session is a re-entrant scope during which registered memos retain values.
// Begin increments the depth and End decrements it; memos are cleared when
// the depth returns to zero.
type Session struct {
	mu      sync.Mutex
	depth   int
	clearer []func()
}

func NewSession() *Session {
	return &Session{}
}

// Begin enters the session.
func (s *Session) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.depth++
}

// End leaves the session. Calls beyond the matching Begin are ignored.
func (s *Session) End() {
	s.mu.Lock()
	if s.depth == 0 {
		s.mu.Unlock()
		return
	}
	s.depth--
	var clearers []func()
	if s.depth == 0 {
		clearers = s.clearer
	}
	s.mu.Unlock()

	for _, fn := range clearers {
		fn()
	}
}

// Active reports whether at least one Begin is outstanding.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth > 0
}

// Depth returns the current nesting depth.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}

// Run executes fn inside the session. End is called even when fn panics;
// the panic is then re-raised.
func (s *Session) Run(fn func() error) error {
	s.Begin()
	defer s.End()
	return fn()
}

// RunContext is Run for context-aware work. A context that is already done
// short-circuits without entering the session.
func (s *Session) RunContext(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Begin()
	defer s.End()
	return fn(ctx)
}

func (s *Session) register(clear func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearer = append(s.clearer, clear)
}
