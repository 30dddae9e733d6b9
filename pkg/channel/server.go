package channel

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/3s-rg-codes/function-proto/pkg/message"
	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

// ReplyWriter sends replies back to the caller.
type ReplyWriter interface {
	Write(message.Message) error
}

// Handler is invoked once per inbound request. To keep the pairing contract
// it writes exactly one reply per request; Func enforces that shape.
type Handler interface {
	Handle(ctx context.Context, in message.Message, w ReplyWriter) error
}

type HandlerFunc func(ctx context.Context, in message.Message, w ReplyWriter) error

func (f HandlerFunc) Handle(ctx context.Context, in message.Message, w ReplyWriter) error {
	return f(ctx, in, w)
}

// Func adapts a request/reply function into a Handler.
func Func(fn func(ctx context.Context, in message.Message) (message.Message, error)) Handler {
	return HandlerFunc(func(ctx context.Context, in message.Message, w ReplyWriter) error {
		out, err := fn(ctx, in)
		if err != nil {
			return err
		}
		return w.Write(out)
	})
}

// Echo replies with every request unchanged.
var Echo = Func(func(_ context.Context, in message.Message) (message.Message, error) {
	return in, nil
})

// Server serves the MessageFunction service with a Handler.
type Server struct {
	handler Handler
	logger  *slog.Logger
}

func NewServer(handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{handler: handler, logger: logger}
}

type streamWriter struct {
	stream pb.MessageFunction_CallServer
	sent   int
}

func (w *streamWriter) Write(m message.Message) error {
	if err := w.stream.Send(m.ToProto()); err != nil {
		return err
	}
	w.sent++
	return nil
}

// Call handles requests strictly one after another and completes the reply
// stream only after the caller's end-of-requests, once every request has
// been handled.
func (s *Server) Call(stream pb.MessageFunction_CallServer) error {
	ctx := stream.Context()
	w := &streamWriter{stream: stream}
	received := 0

	for {
		in, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			s.logger.Debug("Caller finished sending", "requests", received, "replies", w.sent)
			return nil
		}
		if err != nil {
			s.logger.Warn("Invocation stream aborted", "requests", received, "error", err)
			return err
		}
		received++

		m, err := message.FromProto(in)
		if err != nil {
			s.logger.Error("Received malformed message", "error", err)
			return status.Error(codes.InvalidArgument, err.Error())
		}

		if err := s.handler.Handle(ctx, m, w); err != nil {
			s.logger.Error("Function handler failed", "error", err)
			if _, ok := status.FromError(err); ok {
				return err
			}
			return status.Error(codes.Internal, err.Error())
		}
	}
}
