package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/epiwatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/epiwatch/config.toml)")
	resourceID := flag.String("resource", "", "data.gov.sg resource id to load (optional)")
	limit := flag.Int("limit", 0, "maximum records to request (optional, API default when zero)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		ResourceID: *resourceID,
	}
	if *limit > 0 {
		opts.Limit = *limit
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "epiwatch: %v\n", err)
		return 1
	}
	return 0
}
