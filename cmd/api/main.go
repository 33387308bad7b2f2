package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/open-dream-studios/dev-cms-sub001/internal/audit"
	"github.com/open-dream-studios/dev-cms-sub001/internal/auth"
	"github.com/open-dream-studios/dev-cms-sub001/internal/broadcast"
	"github.com/open-dream-studios/dev-cms-sub001/internal/calls"
	"github.com/open-dream-studios/dev-cms-sub001/internal/config"
	"github.com/open-dream-studios/dev-cms-sub001/internal/directory"
	"github.com/open-dream-studios/dev-cms-sub001/internal/httpapi"
	"github.com/open-dream-studios/dev-cms-sub001/internal/presence"
	"github.com/open-dream-studios/dev-cms-sub001/internal/routing"
	"github.com/open-dream-studios/dev-cms-sub001/internal/telephony"
	"github.com/open-dream-studios/dev-cms-sub001/internal/token"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/logger"
	"github.com/open-dream-studios/dev-cms-sub001/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Voice core wiring. The Redis bridge carries events across instances;
	// each instance's hub fans them out to its own WebSocket clients.
	dir := directory.NewPostgresStore(db)
	reg := presence.NewRegistry()
	hub := broadcast.NewHub(log)
	bridge := broadcast.NewRedisBridge(rdb, hub, log)
	go bridge.Run(rootCtx)

	provider := telephony.NewTwilioProvider()

	handlers := httpapi.Handlers{
		Log:    log,
		Auth:   authManager,
		Audit:  audit.NewService(audit.NewPostgresRepository(db)),
		Tokens: token.NewIssuer(dir, provider, cfg.Voice.TokenTTL),
		Router: &routing.Engine{
			Directory:          dir,
			Presence:           reg,
			Provider:           provider,
			StatusCallbackURL:  cfg.VoiceStatusCallbackURL(),
			MediaStreamURL:     cfg.VoiceMediaStreamURL(),
			DialTimeoutSeconds: cfg.Voice.DialTimeoutSeconds,
		},
		Lifecycle: calls.NewStateMachine(dir, reg, bridge),
		Hub:       hub,
		Presence:  reg,
	}
	handlers.Terminator = &calls.TerminationController{
		Directory: dir,
		Active:    handlers.Lifecycle.Active,
		Provider:  provider,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, db, handlers, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
