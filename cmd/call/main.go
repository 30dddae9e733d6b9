package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/goforj/godump"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/3s-rg-codes/function-proto/pkg/invoker"
	"github.com/3s-rg-codes/function-proto/pkg/message"
	"github.com/3s-rg-codes/function-proto/pkg/utils"
)

func main() {
	cmd := &cli.Command{
		Name:      "call",
		Usage:     "send messages to a function instance over one invocation stream",
		ArgsUsage: "[payload...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Usage:   "address of the function instance",
				Value:   "localhost:10382",
				Sources: cli.EnvVars("FUNCTION_ADDRESS"),
			},
			&cli.StringSliceFlag{
				Name:    "header",
				Aliases: []string{"H"},
				Usage:   "header added to every message, as 'Name: value'",
			},
			&cli.StringFlag{
				Name:  "correlation-id",
				Usage: "correlationId header of the messages (default: random)",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "example: 30s, 1m",
				Aliases: []string{"t"},
				Value:   30 * time.Second,
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "payload, json or dump",
				Value: "payload",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			correlationID := cmd.String("correlation-id")
			if correlationID == "" {
				correlationID = uuid.NewString()
			}
			requests, err := buildRequests(cmd.Args().Slice(), cmd.StringSlice("header"), correlationID)
			if err != nil {
				return err
			}

			logger := utils.NewLogger(os.Stderr, cmd.String("log-level"), "text")
			client := invoker.NewClient(logger)
			defer client.Close()

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			replies, err := client.Invoke(ctx, cmd.String("address"), requests...)
			if err != nil {
				return err
			}
			return printReplies(replies, cmd.String("output"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// buildRequests creates one message per payload, or a single empty message
// when no payload is given.
func buildRequests(payloads, headers []string, correlationID string) ([]message.Message, error) {
	base := message.Headers{}.Add("correlationId", correlationID)
	for _, h := range headers {
		name, value, err := parseHeader(h)
		if err != nil {
			return nil, err
		}
		base = base.Add(name, value)
	}

	if len(payloads) == 0 {
		payloads = []string{""}
	}
	requests := make([]message.Message, len(payloads))
	for i, p := range payloads {
		requests[i] = message.NewBuilder().WithHeaders(base).PayloadString(p).Build()
	}
	return requests, nil
}

func parseHeader(h string) (string, string, error) {
	name, value, ok := strings.Cut(h, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q, expected 'Name: value'", h)
	}
	return name, strings.TrimSpace(value), nil
}

type dumpedMessage struct {
	Headers message.Object
	Payload string
}

func printReplies(replies []message.Message, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		for _, r := range replies {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
	case "dump":
		dumped := make([]dumpedMessage, len(replies))
		for i, r := range replies {
			dumped[i] = dumpedMessage{Headers: r.Headers().ToObject(), Payload: string(r.Payload())}
		}
		godump.Dump(dumped)
	default:
		for _, r := range replies {
			fmt.Printf("%s\n", r.Payload())
		}
	}
	return nil
}
