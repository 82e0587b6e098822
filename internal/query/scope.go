package query

import (
	"context"
	"sync/atomic"
)

var scopeSeq atomic.Uint64

// Scope ties requests to the lifetime of a view. Closing it cancels the
// requests started under it; results that arrive afterwards are dropped by
// checking Alive or comparing IDs.
type Scope struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScope derives a scope from parent.
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{id: scopeSeq.Add(1), ctx: ctx, cancel: cancel}
}

// ID is unique per process.
func (s *Scope) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context {
	if s == nil {
		return context.Background()
	}
	return s.ctx
}

// Close cancels the scope. It is safe to call more than once.
func (s *Scope) Close() {
	if s != nil {
		s.cancel()
	}
}

// Alive reports whether the scope is still open.
func (s *Scope) Alive() bool {
	return s != nil && s.ctx.Err() == nil
}
