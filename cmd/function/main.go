package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/3s-rg-codes/function-proto/pkg/channel"
	"github.com/3s-rg-codes/function-proto/pkg/function"
	"github.com/3s-rg-codes/function-proto/pkg/utils"
)

// Hosts the echo handler: every request is sent back unchanged.
func main() {
	settings, err := function.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	logger := utils.SetupLogger(settings.Log.Level, settings.Log.Format, settings.Log.FilePath)
	slog.SetDefault(logger)
	logger.Info("Current configuration", "settings", settings)

	rt := function.New(channel.Echo, settings, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		<-sigCh
		logger.Info("Shutting down gracefully...")
		rt.Stop()
	}()

	if err := rt.ListenAndServe(); err != nil {
		logger.Error("Function server failed", "error", err)
		os.Exit(1)
	}
}
