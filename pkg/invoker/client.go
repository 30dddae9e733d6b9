// Package invoker calls function instances over the invocation protocol,
// reusing one connection per instance address.
package invoker

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"

	"github.com/3s-rg-codes/function-proto/pkg/channel"
	"github.com/3s-rg-codes/function-proto/pkg/message"
	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

type Client struct {
	pool   *ConnPool
	logger *slog.Logger
}

func NewClient(logger *slog.Logger, opts ...grpc.DialOption) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{pool: NewConnPool(opts...), logger: logger}
}

// Open starts an invocation stream to the instance at address. The stream
// lives until it completes, fails or ctx is cancelled.
func (c *Client) Open(ctx context.Context, address string) (*channel.Channel, error) {
	conn, err := c.pool.GetOrCreate(address)
	if err != nil {
		return nil, err
	}
	ch, err := channel.Open(ctx, pb.NewMessageFunctionClient(conn), c.logger.With("address", address))
	if err != nil {
		// a broken connection is dropped so the next call dials again
		_ = c.pool.Close(address)
		return nil, err
	}
	return ch, nil
}

// Invoke sends requests over one stream and returns the replies in order.
func (c *Client) Invoke(ctx context.Context, address string, requests ...message.Message) ([]message.Message, error) {
	ch, err := c.Open(ctx, address)
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	c.logger.Debug("Invoking function", "address", address, "requests", len(requests))
	replies, err := ch.Exchange(ctx, requests)
	if err != nil {
		c.logger.Warn("Invocation failed", "address", address, "state", ch.State(), "error", err)
		return replies, err
	}
	return replies, nil
}

func (c *Client) Close() {
	c.pool.CloseAll()
}
