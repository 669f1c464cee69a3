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

	"dispatch-voice/internal/agents"
	"dispatch-voice/internal/audit"
	"dispatch-voice/internal/auth"
	"dispatch-voice/internal/calls"
	"dispatch-voice/internal/config"
	"dispatch-voice/internal/dispatch"
	"dispatch-voice/internal/httpapi"
	"dispatch-voice/internal/llm"
	"dispatch-voice/internal/reporting"
	"dispatch-voice/internal/telephony"
	"dispatch-voice/pkg/logger"
	"dispatch-voice/pkg/utils"

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

	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
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

	gen, err := llm.New(cfg.LLM, cfg.OutboundTimeout)
	if err != nil {
		log.Error("llm init failed", "err", err)
		os.Exit(1)
	}

	configRepo := agents.NewCachedRepo(agents.NewPostgresRepo(db), rdb, cfg.Redis.AgentCacheTTL)
	callRepo := calls.NewPostgresRepo(db)
	events := audit.NewService(audit.NewPostgresRepo(db))

	h := httpapi.Handlers{
		Dispatch: dispatch.NewService(dispatch.Deps{
			Configs:         configRepo,
			Calls:           callRepo,
			Provider:        telephony.NewRetellProvider(cfg.Retell.APIKey, cfg.Retell.BaseURL, cfg.OutboundTimeout),
			Generator:       gen,
			Audit:           events,
			FromNumber:      cfg.Retell.FromNumber,
			OverrideAgentID: cfg.Retell.AgentID,
		}),
		Agents:  agents.NewService(configRepo),
		Calls:   callRepo,
		Events:  events,
		Reports: reporting.NewService(callRepo),
		Checks: map[string]httpapi.Checker{
			"postgres": func(ctx context.Context) error { return utils.HealthCheck(ctx, db, time.Second) },
			"redis":    func(ctx context.Context) error { return utils.PingRedis(ctx, rdb, time.Second) },
		},
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, h, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Live replies wait on the text generator.
		WriteTimeout: cfg.OutboundTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "llm", cfg.LLM.Provider)
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
