package chat

import (
	"context"
	"sync"
)

// Token is the right of one request to commit its result.
type Token struct {
	ctx        context.Context
	cancel     context.CancelFunc
	seq        uint64
	superseded bool
}

func (t *Token) Context() context.Context {
	return t.ctx
}

func (t *Token) Seq() uint64 {
	return t.seq
}

// Coordinator keeps at most one request current. Beginning a request cancels the previous
// one, and only the current token may be finished.
type Coordinator struct {
	mu      sync.Mutex
	current *Token
	seq     uint64
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Begin cancels any current request and installs a fresh token derived from parent.
func (c *Coordinator) Begin(parent context.Context) *Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.superseded = true
		c.current.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	c.seq++
	c.current = &Token{ctx: ctx, cancel: cancel, seq: c.seq}

	return c.current
}

// Cancel aborts the current request, if any, and leaves the coordinator idle.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return false
	}

	c.current.cancel()
	c.current = nil
	return true
}

// Finish releases t. It reports false when t was already superseded or canceled,
// in which case the newer state is left untouched.
func (c *Coordinator) Finish(t *Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t.cancel()
	if c.current != t {
		return false
	}

	c.current = nil
	return true
}

func (c *Coordinator) IsCurrent(t *Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current == t
}

// Superseded reports whether t was replaced by a newer Begin rather than canceled.
func (c *Coordinator) Superseded(t *Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return t.superseded
}

func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current != nil
}
