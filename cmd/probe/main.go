package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/3s-rg-codes/function-proto/pkg/probe"
)

func main() {
	// outcomes leave through cli.Exit, which exits with their code
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(probe.CallFailed.ExitCode())
	}
}

func newCommand() *cli.Command {
	// -h selects the host
	cli.HelpFlag = &cli.BoolFlag{
		Name:  "help",
		Usage: "show help",
	}

	return &cli.Command{
		Name:        "probe",
		Usage:       "check whether a function instance is alive or ready",
		Description: "exit codes: 0 healthy, 1 unhealthy, 2 probe call failed, 3 timed out",
		Commands: []*cli.Command{
			{
				Name:   "liveness",
				Usage:  "probe liveness (default)",
				Action: check(probe.Liveness),
			},
			{
				Name:   "readiness",
				Usage:  "probe readiness",
				Action: check(probe.Readiness),
			},
		},
		// all sub commands inherit these flags
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Aliases: []string{"h"},
				Usage:   "host to probe",
				Value:   "127.0.0.1",
				Sources: cli.EnvVars("PROBE_HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "port to probe",
				Value:   10382,
				Sources: cli.EnvVars("PROBE_PORT"),
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "time to wait before failing, example: 500ms, 1s",
				Value:   time.Second,
				Sources: cli.EnvVars("PROBE_TIMEOUT"),
			},
		},
		Action: check(probe.Liveness),
	}
}

func check(kind probe.Kind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		address := net.JoinHostPort(cmd.String("host"), strconv.Itoa(cmd.Int("port")))
		out := cmd.Root().Writer

		outcome, err := probe.Race(ctx, kind, address, cmd.Duration("timeout"))
		switch outcome {
		case probe.Healthy:
			return nil
		case probe.TimedOut:
			fmt.Fprintln(out, "Timeout")
		case probe.CallFailed:
			fmt.Fprintln(out, err)
		}
		return cli.Exit("", outcome.ExitCode())
	}
}
