package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ant1kdream/forecast-weather-qa-tests/cli"
	"github.com/ant1kdream/forecast-weather-qa-tests/datasource"
)

func main() {
	// Load environment variables from .env file
	if err := datasource.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], cli.Options{})
	stop()
	os.Exit(code)
}
