// Package main runs the Fein personal finance API server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/feinhq/fein/internal/app/runtime"
	"github.com/feinhq/fein/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to FEIN_CONFIG or config/fein.yaml)")
	inMemory := flag.Bool("in-memory", false, "Serve from in-memory stores instead of PostgreSQL")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appRuntime, err := runtime.NewApplication(cfg, runtime.Options{InMemory: *inMemory})
	if err != nil {
		log.Fatalf("build application: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received %s, shutting down", sig)
		cancel()
	}()

	if err := appRuntime.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	if err := appRuntime.Shutdown(context.Background()); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
