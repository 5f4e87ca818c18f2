package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flklr-dev/SecureMVPLab/internal/buildinfo"
	"github.com/flklr-dev/SecureMVPLab/internal/client/cli"
	"github.com/flklr-dev/SecureMVPLab/internal/client/config"
	"github.com/flklr-dev/SecureMVPLab/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
