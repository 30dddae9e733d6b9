// Package probe implements the liveness and readiness endpoints of a function
// instance and the client side that turns a probe into a health verdict.
package probe

import (
	"context"
	"log/slog"
	"sync"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

// HealthCheck is an additional condition evaluated on every probe. A failing
// check makes the probe report unhealthy.
type HealthCheck func(ctx context.Context) error

// Status answers Liveness and Readiness probes. Liveness and readiness use
// separate Status values.
type Status struct {
	name   string
	checks []HealthCheck
	logger *slog.Logger

	mu      sync.RWMutex
	healthy bool
	mirror  *health.Server
}

func NewStatus(name string, healthy bool, logger *slog.Logger, checks ...HealthCheck) *Status {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Status{name: name, healthy: healthy, checks: checks, logger: logger}
}

// Set changes the reported state.
func (s *Status) Set(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
	if s.mirror != nil {
		s.mirror.SetServingStatus(s.name, servingStatus(healthy))
	}
}

// Mirror keeps the serving status of the service called after this Status
// in hs in sync with Set.
func (s *Status) Mirror(hs *health.Server) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror = hs
	hs.SetServingStatus(s.name, servingStatus(s.healthy))
}

func servingStatus(healthy bool) healthpb.HealthCheckResponse_ServingStatus {
	if healthy {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// Healthy evaluates the flag and then every check.
func (s *Status) Healthy(ctx context.Context) bool {
	s.mu.RLock()
	healthy := s.healthy
	s.mu.RUnlock()
	if !healthy {
		return false
	}
	for _, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", "probe", s.name, "error", err)
			return false
		}
	}
	return true
}

func (s *Status) Probe(ctx context.Context, _ *pb.ProbeRequest) (*pb.HealthStatus, error) {
	return &pb.HealthStatus{Healthy: s.Healthy(ctx)}, nil
}

var (
	_ pb.LivenessServer  = (*Status)(nil)
	_ pb.ReadinessServer = (*Status)(nil)
)
