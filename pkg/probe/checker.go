package probe

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

// Prober is the client side of a Liveness or Readiness service.
type Prober interface {
	Probe(ctx context.Context, in *pb.ProbeRequest, opts ...grpc.CallOption) (*pb.HealthStatus, error)
}

// Kind selects which probe service a checker talks to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

func (k Kind) String() string {
	switch k {
	case Liveness:
		return "liveness"
	case Readiness:
		return "readiness"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) NewClient(cc grpc.ClientConnInterface) Prober {
	if k == Readiness {
		return pb.NewReadinessClient(cc)
	}
	return pb.NewLivenessClient(cc)
}

// ProbeError is returned when the probe could not produce a verdict.
type ProbeError struct {
	Kind    Kind
	Address string
	Err     error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s probe of %s failed: %v", e.Kind, e.Address, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Check probes address once. It returns the reported verdict, or an error
// when no verdict could be obtained; a failed call is never reported as
// unhealthy.
func Check(ctx context.Context, kind Kind, address string, opts ...grpc.DialOption) (bool, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return false, &ProbeError{Kind: kind, Address: address, Err: err}
	}
	defer conn.Close()

	status, err := kind.NewClient(conn).Probe(ctx, &pb.ProbeRequest{})
	if err != nil {
		return false, &ProbeError{Kind: kind, Address: address, Err: err}
	}
	return status.GetHealthy(), nil
}

// Race runs Check against a timer of the given duration started at the same
// moment. Whichever finishes first decides the outcome; a probe result that
// arrives after the timer fired is discarded.
func Race(ctx context.Context, kind Kind, address string, timeout time.Duration, opts ...grpc.DialOption) (Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		healthy bool
		err     error
	}
	// buffered so a late result never blocks the probing goroutine
	results := make(chan result, 1)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	go func() {
		healthy, err := Check(ctx, kind, address, opts...)
		results <- result{healthy: healthy, err: err}
	}()

	select {
	case <-timer.C:
		return TimedOut, nil
	case <-ctx.Done():
		return CallFailed, ctx.Err()
	case r := <-results:
		switch {
		case r.err != nil:
			return CallFailed, r.err
		case r.healthy:
			return Healthy, nil
		default:
			return Unhealthy, nil
		}
	}
}
