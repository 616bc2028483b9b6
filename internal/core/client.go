package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// ConnState is the liveness state of a connection.
type ConnState int32

const (
	StateConnected ConnState = iota
	StateDisconnected
)

func (s ConnState) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

// Sink is the transport's per-connection delivery primitive.
type Sink interface {
	Deliver(ctx context.Context, event *Event) error
}

// Client is one live real-time connection as seen by the core layer.
// By default events are queued on Events and drained by the transport's
// writer; NewClientWithSink routes them to a custom Sink instead.
type Client struct {
	ID     string
	Events chan *Event

	sink      Sink
	done      chan struct{}
	closeOnce sync.Once
	state     atomic.Int32
}

// NewClient constructs a client with a buffered event queue.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 1
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
		done:   make(chan struct{}),
	}
}

// NewClientWithSink constructs a client whose events go to sink.
func NewClientWithSink(id string, sink Sink) *Client {
	return &Client{
		ID:   id,
		sink: sink,
		done: make(chan struct{}),
	}
}

// Deliver hands an event to the connection. A full queue is waited on until
// ctx ends; a ctx that can never end gets a single non-blocking attempt.
func (c *Client) Deliver(ctx context.Context, event *Event) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	if c.sink != nil {
		return c.sink.Deliver(ctx, event)
	}

	if ctx.Done() == nil {
		select {
		case c.Events <- event:
			return nil
		default:
			return ErrSlowConsumer
		}
	}

	select {
	case c.Events <- event:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrSlowConsumer, ctx.Err())
	}
}

// Done is closed once the connection is disconnected.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// State reports whether the connection is still live.
func (c *Client) State() ConnState {
	return ConnState(c.state.Load())
}

// Close marks the connection disconnected and aborts pending deliveries.
// Events is left open so a concurrent Deliver never sends on a closed channel.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateDisconnected))
		close(c.done)
	})
}
