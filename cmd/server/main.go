package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mhollis/bounce/internal/api"
	"github.com/mhollis/bounce/internal/config"
	"github.com/mhollis/bounce/internal/dependencies/clock"
	"github.com/mhollis/bounce/internal/dependencies/random"
	"github.com/mhollis/bounce/internal/directory"
	memorydir "github.com/mhollis/bounce/internal/directory/memory"
	redisdir "github.com/mhollis/bounce/internal/directory/redis"
	"github.com/mhollis/bounce/internal/model"
	"github.com/mhollis/bounce/internal/registry"
	"github.com/mhollis/bounce/internal/sim"
	"github.com/mhollis/bounce/internal/ws"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Room directory backend
	var dir directory.Directory
	switch cfg.DirectoryType {
	case config.DirectoryTypeRedis:
		redisCfg := redisdir.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisDir, err := redisdir.New(redisCfg)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		dir = redisDir
	default:
		dir = memorydir.New()
	}
	defer func() { _ = dir.Close() }()

	// Core wiring
	reg := registry.New(cfg.Game, clock.New(), random.New(), logger)
	hub := ws.NewHub(logger)

	startSim := func(roomID model.RoomID) {
		sim.Start(reg, hub, roomID, cfg.UpdateInterval, logger)
	}

	handler := ws.NewHandler(reg, hub, dir, startSim, logger)
	wsServer := ws.NewServer(hub, handler, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:    logger,
		Directory: dir,
		WebSocket: wsServer,
		StaticDir: findStaticDir(),
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.HTTPAddr
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("directory", cfg.DirectoryType),
		slog.Duration("tick", cfg.UpdateInterval))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	candidates := []string{
		"static",
		"./static",
		filepath.Join(os.Getenv("PWD"), "static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "static"
}
