package state

import (
	"context"
)

// mailbox is the coordinator's inbox. Sends and receives give up when either
// the caller's context or the mailbox's owning context is done.
type mailbox[T any] struct {
	ch  chan T
	ctx context.Context
}

func newMailbox[T any](ctx context.Context, size int) *mailbox[T] {
	return &mailbox[T]{
		ch:  make(chan T, size),
		ctx: ctx,
	}
}

func (m *mailbox[T]) send(ctx context.Context, msg T) error {
	select {
	case m.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.ctx.Done():
		return m.ctx.Err()
	}
}

func (m *mailbox[T]) receive() (T, error) {
	select {
	case msg := <-m.ch:
		return msg, nil
	case <-m.ctx.Done():
		var zero T
		return zero, m.ctx.Err()
	}
}
