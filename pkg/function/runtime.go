// Package function hosts a function handler behind the invocation protocol:
// the MessageFunction service, the Liveness and Readiness probes and the
// standard gRPC health service share one server.
package function

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/3s-rg-codes/function-proto/pkg/channel"
	"github.com/3s-rg-codes/function-proto/pkg/probe"
	"github.com/3s-rg-codes/function-proto/pkg/utils"
	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

// defaultShutdownTimeout applies when Settings.ShutdownTimeout is not set.
const defaultShutdownTimeout = 10 * time.Second

type Option func(*Runtime)

// WithServerOptions appends options to the underlying grpc.Server.
func WithServerOptions(opts ...grpc.ServerOption) Option {
	return func(r *Runtime) {
		r.serverOpts = append(r.serverOpts, opts...)
	}
}

// WithReadinessCheck adds a condition to the readiness probe.
func WithReadinessCheck(check probe.HealthCheck) Option {
	return func(r *Runtime) {
		r.readinessChecks = append(r.readinessChecks, check)
	}
}

type Runtime struct {
	settings Settings
	logger   *slog.Logger

	server          *grpc.Server
	serverOpts      []grpc.ServerOption
	health          *health.Server
	liveness        *probe.Status
	readiness       *probe.Status
	readinessChecks []probe.HealthCheck

	activityMu    sync.RWMutex
	lastActivity  time.Time
	activeStreams int

	stopOnce sync.Once
	stopped  chan struct{}
}

func New(handler channel.Handler, settings Settings, logger *slog.Logger, opts ...Option) *Runtime {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Runtime{
		settings: settings,
		logger:   logger,
		health:   health.NewServer(),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if settings.MaxMemoryPercent > 0 {
		r.readinessChecks = append(r.readinessChecks, MemoryCheck(settings.MaxMemoryPercent))
	}

	r.liveness = probe.NewStatus(pb.Liveness_ServiceDesc.ServiceName, true, logger)
	// readiness is reported under the invocation service in the standard health service
	r.readiness = probe.NewStatus(pb.MessageFunction_ServiceDesc.ServiceName, false, logger, r.readinessChecks...)
	r.readiness.Mirror(r.health)

	r.server = grpc.NewServer(r.buildServerOptions()...)
	pb.RegisterMessageFunctionServer(r.server, channel.NewServer(handler, logger))
	pb.RegisterLivenessServer(r.server, r.liveness)
	pb.RegisterReadinessServer(r.server, r.readiness)
	healthpb.RegisterHealthServer(r.server, r.health)
	return r
}

func (r *Runtime) buildServerOptions() []grpc.ServerOption {
	recoveryOpt := recovery.WithRecoveryHandler(func(p any) error {
		r.logger.Error("Recovered from panic in function handler", "panic", p)
		return status.Errorf(codes.Internal, "function panicked: %v", p)
	})
	options := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			utils.InterceptorLogger(r.logger),
			recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			utils.StreamInterceptorLogger(r.logger),
			recovery.StreamServerInterceptor(recoveryOpt),
			r.streamActivityInterceptor,
		),
	}
	return append(options, r.serverOpts...)
}

// streamActivityInterceptor tracks invocation streams. Other streams, such
// as health watches, never count as activity.
func (r *Runtime) streamActivityInterceptor(
	srv any,
	ss grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	if info.FullMethod != pb.MessageFunction_Call_FullMethodName {
		return handler(srv, ss)
	}

	r.activityMu.Lock()
	r.activeStreams++
	r.lastActivity = time.Now()
	r.activityMu.Unlock()

	defer func() {
		r.activityMu.Lock()
		r.activeStreams--
		r.lastActivity = time.Now()
		r.activityMu.Unlock()
	}()
	return handler(srv, ss)
}

func (r *Runtime) updateActivity() {
	r.activityMu.Lock()
	r.lastActivity = time.Now()
	r.activityMu.Unlock()
}

// idleFor returns how long no invocation has been running.
func (r *Runtime) idleFor() time.Duration {
	r.activityMu.RLock()
	defer r.activityMu.RUnlock()
	if r.activeStreams > 0 {
		return 0
	}
	return time.Since(r.lastActivity)
}

func (r *Runtime) monitorTimeout() {
	timeout := r.settings.IdleTimeout
	interval := min(time.Second, timeout/2)
	if interval <= 0 {
		interval = timeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopped:
			return
		case <-ticker.C:
		}

		if inactive := r.idleFor(); inactive >= timeout {
			r.logger.Info("Idle timeout reached, shutting down",
				"timeout", timeout,
				"last_activity", inactive)
			r.Stop()
			return
		}
	}
}

// ListenAndServe listens on the configured address and serves until Stop.
func (r *Runtime) ListenAndServe() error {
	lis, err := net.Listen("tcp", r.settings.Address)
	if err != nil {
		return err
	}
	return r.Serve(lis)
}

// Serve reports ready and serves on lis until Stop is called or the idle
// timeout expires.
func (r *Runtime) Serve(lis net.Listener) error {
	r.updateActivity()
	if r.settings.IdleTimeout > 0 {
		go r.monitorTimeout()
	}

	r.readiness.Set(true)
	r.logger.Info("Function server starting", "address", lis.Addr().String(), "idle_timeout", r.settings.IdleTimeout)

	err := r.server.Serve(lis)
	r.readiness.Set(false)
	if err != nil {
		r.logger.Error("Function server failed", "error", err)
	}
	return err
}

// Stop reports not ready, then waits for running calls to finish. Calls
// still open after the shutdown timeout, such as health watches, are cut off.
func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopped)
		r.readiness.Set(false)
		r.health.Shutdown()

		timeout := r.settings.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		graceful := make(chan struct{})
		go func() {
			r.server.GracefulStop()
			close(graceful)
		}()

		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-graceful:
		case <-timer.C:
			r.logger.Warn("Graceful shutdown timed out, closing remaining calls", "timeout", timeout)
			r.server.Stop()
			<-graceful
		}
	})
}

func (r *Runtime) Liveness() *probe.Status {
	return r.liveness
}

func (r *Runtime) Readiness() *probe.Status {
	return r.readiness
}
