package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/pngctl/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
