package main

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc"

	"github.com/3s-rg-codes/function-proto/pkg/probe"
	pb "github.com/3s-rg-codes/function-proto/proto/function"
)

type hangingProbe struct{}

func (hangingProbe) Probe(ctx context.Context, _ *pb.ProbeRequest) (*pb.HealthStatus, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// serve starts a server answering both probe kinds and returns its port.
func serve(t *testing.T, liveness pb.LivenessServer, readiness pb.ReadinessServer) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := grpc.NewServer()
	pb.RegisterLivenessServer(server, liveness)
	pb.RegisterReadinessServer(server, readiness)
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	_, port, err := net.SplitHostPort(lis.Addr().String())
	require.NoError(t, err)
	return port
}

func unusedPort(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(lis.Addr().String())
	require.NoError(t, err)
	require.NoError(t, lis.Close())
	return port
}

// run executes the command and returns the exit code it asked for and what
// it printed.
func run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &out
	cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := cmd.Run(context.Background(), append([]string{"probe"}, args...))
	if err == nil {
		return 0, out.String()
	}
	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
	return exitErr.ExitCode(), out.String()
}

func TestCheckExitCodes(t *testing.T) {
	ready := probe.NewStatus("readiness", true, nil)
	notReady := probe.NewStatus("readiness", false, nil)
	alive := probe.NewStatus("liveness", true, nil)

	healthyPort := serve(t, alive, ready)
	unhealthyPort := serve(t, alive, notReady)
	hangingPort := serve(t, hangingProbe{}, hangingProbe{})
	closedPort := unusedPort(t)

	tests := []struct {
		name   string
		args   []string
		code   int
		output string
	}{
		{"liveness by default", []string{"--port", healthyPort}, 0, ""},
		{"healthy readiness", []string{"--port", healthyPort, "readiness"}, 0, ""},
		{"unhealthy readiness", []string{"--port", unhealthyPort, "readiness"}, 1, ""},
		{"live while not ready", []string{"--port", unhealthyPort, "liveness"}, 0, ""},
		{"nothing listening", []string{"-p", closedPort}, 2, "liveness probe of"},
		{"timed out", []string{"-h", "127.0.0.1", "-p", hangingPort, "-t", "50ms"}, 3, "Timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, output := run(t, tc.args...)
			assert.Equal(t, tc.code, code)
			if tc.output == "" {
				assert.Empty(t, output)
			} else {
				assert.True(t, strings.Contains(output, tc.output), "output %q", output)
			}
		})
	}
}
