package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"wormhole-arena/internal/arena"
	"wormhole-arena/internal/config"
	"wormhole-arena/internal/logging"
	"wormhole-arena/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := arena.NewRegistry(arenaConfig(cfg.Game))
	registry.StartSweeper(ctx)

	limiter := ws.NewIPRateLimiter(ws.RateLimitConfig{
		ConnectsPerSecond: cfg.Server.WSConnectsPerSecond,
		Burst:             cfg.Server.WSConnectBurst,
	})
	defer limiter.Stop()
	wsServer := ws.NewServer(registry, limiter)

	r := newRouter(cfg.Server, registry, wsServer)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func arenaConfig(cfg config.GameConfig) arena.Config {
	return arena.Config{
		TickInterval:       time.Duration(cfg.TickMS) * time.Millisecond,
		BroadcastInterval:  time.Duration(cfg.BroadcastMS) * time.Millisecond,
		MaxTickDelta:       time.Duration(cfg.MaxTickDeltaMS) * time.Millisecond,
		GCWindow:           time.Duration(cfg.GCWindowMins) * time.Minute,
		RoundGrace:         time.Duration(cfg.RoundGraceSecs) * time.Second,
		VoteExpiry:         time.Duration(cfg.VoteExpirySecs) * time.Second,
		BaselineBots:       cfg.BaselineBots,
		ViewRadius:         cfg.ViewRadius,
		MaxFoodPerSnapshot: cfg.MaxFoodPerSnapshot,
		MaxTrailPoints:     cfg.MaxTrailPoints,
		WorldWidth:         cfg.WorldWidth,
		WorldHeight:        cfg.WorldHeight,
	}
}
