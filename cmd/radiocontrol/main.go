// Package main runs the radiocontrol command.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/louisbranch/radiocontrol/internal/platform/cmd"
	"github.com/louisbranch/radiocontrol/internal/platform/config"
	"github.com/louisbranch/radiocontrol/internal/tools/radiocontrol"
)

func main() {
	log.SetPrefix("[RADIOCONTROL] ")

	cfg, err := radiocontrol.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitCodef(radiocontrol.ExitCode(err), "%s", radiocontrol.ErrorMessage(err, cfg.Locale))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := radiocontrol.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRadioControl, func(ctx context.Context) error {
		return radiocontrol.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		stop()
		cancel()
		config.ExitCodef(radiocontrol.ExitCode(err), "%s", radiocontrol.ErrorMessage(err, cfg.Locale))
	}
}
