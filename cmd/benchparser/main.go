package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/ciricc/benchparser/internal/app"
	"github.com/ciricc/benchparser/internal/config"
)

func main() {
	cfg, err := config.LoadOrDefault("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
