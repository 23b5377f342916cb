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

	"agent-console/internal/audit"
	"agent-console/internal/auth"
	"agent-console/internal/call"
	"agent-console/internal/config"
	"agent-console/internal/directory"
	"agent-console/internal/httpapi"
	"agent-console/internal/presence"
	"agent-console/internal/reporting"
	"agent-console/internal/session"
	"agent-console/internal/status"
	"agent-console/pkg/logger"
	"agent-console/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
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

	presenceCache := presence.NewCache(rdb, cfg.Presence.TTL, log)

	sessions := session.NewManager(
		rootCtx,
		status.NewPostgresStore(db),
		call.NewPostgresLog(db),
		presenceCache,
		cfg.Sim,
		log,
	)
	defer sessions.Close()

	h := httpapi.Handlers{
		Auth:      authManager,
		Directory: directory.NewService(directory.NewPostgresRepository(db)),
		Sessions:  sessions,
		Presence:  presenceCache,
		Audit:     audit.NewService(audit.NewPostgresRepo(db)),
		Reporting: reporting.NewService(reporting.NewPostgresRepo(db)),
		Redis:     rdb,
		// A crashed console frees its slot when its token would have expired.
		SlotTTL: cfg.Auth.AccessTokenTTL,
		Log:     log,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager))

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
}
