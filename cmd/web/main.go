// Command web runs the sales analytics dashboard API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trendtracker/internal/app"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration file")
	flag.Parse()

	ctx := context.Background()

	a, err := app.New(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		a.Logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
