package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/pngctl/internal/config"
	"github.com/danmuck/pngctl/internal/logging"
	"github.com/danmuck/pngctl/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to pngctl.toml (defaults to $"+config.EnvConfigPath+")")
	addr := flag.String("addr", "", "listen address, overrides server.addr")
	id := flag.String("id", "pngctld", "server id used in logs and metrics")
	flag.Parse()

	logging.ConfigureRuntime()
	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pngctld: %v\n", err)
		os.Exit(1)
	}
	logging.SetLevel(cfg.Log.Level)
	if v := strings.TrimSpace(*addr); v != "" {
		cfg.Server.Addr = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Appear(*id, cfg).Serve(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pngctld: %v\n", err)
		os.Exit(1)
	}
}
