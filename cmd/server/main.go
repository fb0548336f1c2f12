package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Tyrowin/roomchat/internal/logger"
	"github.com/Tyrowin/roomchat/internal/relay"
	"github.com/Tyrowin/roomchat/internal/server"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomchat: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg, err := server.NewConfigFromEnv()
	if err != nil {
		return exitConfig, err
	}
	server.SetConfig(cfg)
	active := server.CurrentConfig()

	log := logger.New(logger.Config{
		Level:   active.LogLevel,
		Backend: logger.Backend(active.LogBackend),
		Format:  active.LogFormat,
	})
	log.Info("starting roomchat", "port", active.Port, "origins", active.AllowedOrigins, "strict", active.Strict)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(log, relay.WithStrict(active.Strict))
	server.StartHub(hub)

	httpServer := server.CreateServer(active.Port, server.SetupRoutes(hub))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.StartServer(httpServer)
	}()

	code := exitOK
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server crashed", "err", err)
			code = exitRuntime
		}
	}

	if err := server.ShutdownServer(httpServer, active.ShutdownTimeout); err != nil {
		code = exitRuntime
	}
	if err := hub.Shutdown(active.ShutdownTimeout); err != nil {
		log.Warn("hub shutdown incomplete", "err", err)
		code = exitRuntime
	}
	return code, nil
}
