// Package channel implements both ends of the duplex invocation stream. For
// every request the caller sends, the serving side produces one reply, and
// replies arrive in request order.
package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/3s-rg-codes/function-proto/pkg/message"
	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

// Channel is the calling side of one invocation stream. Send and CloseSend
// must be called from one goroutine and Recv from one (possibly other)
// goroutine.
type Channel struct {
	stream pb.MessageFunction_CallClient
	cancel context.CancelFunc
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	pending int
}

// Open starts a new invocation stream on client.
func Open(ctx context.Context, client pb.MessageFunctionClient, logger *slog.Logger) (*Channel, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(ctx)
	stream, err := client.Call(ctx)
	if err != nil {
		cancel()
		return nil, &TransportError{Op: "open", Err: err}
	}
	return &Channel{stream: stream, cancel: cancel, logger: logger, state: StateOpen}, nil
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns the number of requests sent that have no reply yet.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Send writes one request. It may block while the transport applies flow
// control.
func (c *Channel) Send(m message.Message) error {
	c.mu.Lock()
	if c.state != StateOpen {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrSendClosed, state)
	}
	c.pending++
	c.mu.Unlock()

	if err := c.stream.Send(m.ToProto()); err != nil {
		c.fail("send", err)
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// CloseSend signals end-of-requests. Calling it again is a no-op.
func (c *Channel) CloseSend() error {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return nil
	}
	c.state = StateHalfClosed
	c.mu.Unlock()

	if err := c.stream.CloseSend(); err != nil {
		c.fail("close send", err)
		return &TransportError{Op: "close send", Err: err}
	}
	return nil
}

// Recv returns the next reply. It returns io.EOF once the serving side
// completed after end-of-requests with every request answered. A reply
// stream that ends any other way yields a *ViolationError, and an aborted
// stream a *TransportError.
func (c *Channel) Recv() (message.Message, error) {
	in, err := c.stream.Recv()
	if errors.Is(err, io.EOF) {
		return message.Message{}, c.completed()
	}
	if err != nil {
		c.fail("recv", err)
		return message.Message{}, &TransportError{Op: "recv", Err: err}
	}

	m, err := message.FromProto(in)
	if err != nil {
		c.fail("decode", err)
		return message.Message{}, err
	}

	c.mu.Lock()
	if c.pending > 0 {
		c.pending--
	}
	c.mu.Unlock()
	return m, nil
}

func (c *Channel) completed() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.state == StateClosed:
		return io.EOF
	case c.state == StateHalfClosed && c.pending == 0:
		c.state = StateClosed
		c.cancel()
		return io.EOF
	case c.state == StateFailed:
		return &TransportError{Op: "recv", Err: io.ErrUnexpectedEOF}
	}

	v := &ViolationError{State: c.state, Pending: c.pending}
	c.logger.Error("Invocation stream violated its lifecycle", "state", c.state, "pending", c.pending)
	c.state = StateFailed
	c.cancel()
	return v
}

func (c *Channel) fail(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Terminal() {
		return
	}
	c.logger.Debug("Invocation stream failed", "op", op, "state", c.state, "error", err)
	c.state = StateFailed
	c.cancel()
}

// Close aborts the stream unless it already completed.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateClosed {
		c.state = StateFailed
	}
	c.cancel()
}

// Exchange sends every request, signals end-of-requests and collects the
// replies in order. Sending and receiving run concurrently so the transport
// never has to buffer the whole exchange.
func (c *Channel) Exchange(ctx context.Context, requests []message.Message) ([]message.Message, error) {
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, c.Close)
	defer stop()

	replies := make([]message.Message, 0, len(requests))
	g.Go(func() error {
		for _, m := range requests {
			if err := c.Send(m); err != nil {
				if errors.Is(err, ErrSendClosed) || errors.Is(err, io.EOF) {
					// the stream already ended; Recv reports why
					return nil
				}
				return err
			}
		}
		return c.CloseSend()
	})
	g.Go(func() error {
		for {
			m, err := c.Recv()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			replies = append(replies, m)
		}
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return replies, ctxErr
		}
		return replies, err
	}
	if len(replies) != len(requests) {
		return replies, fmt.Errorf("%w: %d replies for %d requests", ErrStreamViolation, len(replies), len(requests))
	}
	return replies, nil
}
