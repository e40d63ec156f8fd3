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

	"callpay-platform/internal/audit"
	"callpay-platform/internal/auth"
	"callpay-platform/internal/billing"
	"callpay-platform/internal/config"
	"callpay-platform/internal/httpapi"
	"callpay-platform/internal/ledger"
	"callpay-platform/internal/presence"
	"callpay-platform/internal/rates"
	"callpay-platform/internal/reaper"
	"callpay-platform/internal/reporting"
	"callpay-platform/internal/rtctoken"
	"callpay-platform/internal/session"
	"callpay-platform/pkg/logger"
	"callpay-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	cfg = cfg.WithCallDefaults()

	log := logger.New(cfg.App.Env, "callpay-api")
	slog.SetDefault(log)

	authMgr, err := auth.NewManager(cfg.Auth)
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

	issuer, err := rtctoken.NewHMACIssuer(cfg.RTC.TokenSecret, cfg.RTC.TokenIssuer, cfg.RTC.TokenTTL)
	if err != nil {
		log.Error("rtc issuer init failed", "err", err)
		os.Exit(1)
	}

	tracker := presence.NewTracker(rdb, cfg.Call.PresenceTTL)
	sessions := session.NewService(db, tracker, issuer, billing.NewEngine(), cfg.RTC.IssueTimeout)
	auditSvc := audit.NewService(audit.NewMemoryRepository())

	h := httpapi.Handlers{
		Auth:     authMgr,
		Sessions: sessions,
		Ledger:   ledger.NewService(db),
		Presence: tracker,
		Rates:    rates.NewService(db),
		Reports:  reporting.NewService(reporting.NewSQLRepository(db)),
		Audit:    auditSvc,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, h, authMgr)

	// The reaper shares the session service so a forced termination takes
	// the exact same billed path a client End would.
	go reaper.New(sessions, auditSvc, log, cfg.Call.ReaperInterval, cfg.Call.RingTimeout, cfg.Call.MaxOngoing).Run(rootCtx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
	log.Info("api stopped")
}
