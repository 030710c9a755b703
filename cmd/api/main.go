package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"phoneline/internal/audit"
	"phoneline/internal/auth"
	"phoneline/internal/calls"
	"phoneline/internal/config"
	"phoneline/internal/reporting"
	"phoneline/internal/routing"
	"phoneline/internal/settings"
	"phoneline/pkg/logger"
	"phoneline/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// app holds the wired dependencies shared by the route groups.
type app struct {
	cfg      config.Config
	auth     *auth.Manager
	engine   *routing.Engine
	store    settings.Store
	resolver *settings.Resolver
	lines    settings.LineDirectory
	tracker  calls.Tracker
	audit    *audit.Service
	reports  *reporting.Service
	// checks back /healthz; empty when running fully in memory.
	checks []utils.DependencyCheck
}

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

	var db *sql.DB
	if cfg.HasPostgres() {
		db, err = utils.OpenPostgres(rootCtx, cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: cfg.DB.MaxConns})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
	} else {
		log.Warn("DB_HOST not set, using in-memory settings and audit log")
	}

	var rdb *redis.Client
	if cfg.HasRedis() {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr(), Password: cfg.Redis.Password})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
	} else {
		log.Warn("REDIS_HOST not set, tracking active calls in process")
	}

	a := wire(cfg, authManager, db, rdb)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, a)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "timezone", a.engine.Location().String())
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

const healthTimeout = 2 * time.Second

// wire picks Postgres/Redis backed implementations when configured and the
// in-memory ones otherwise.
func wire(cfg config.Config, am *auth.Manager, db *sql.DB, rdb *redis.Client) app {
	a := app{
		cfg:    cfg,
		auth:   am,
		engine: routing.NewEngine(routing.WithLocation(cfg.Line.Location())),
	}

	var (
		store     settings.Store
		overrides settings.OverrideStore
	)
	if db != nil {
		a.checks = append(a.checks, utils.PostgresCheck(db, healthTimeout))
		pg := settings.NewPostgresRepo(db)
		store, overrides, a.lines = pg, pg, pg
		events := audit.NewPostgresRepo(db)
		a.audit, a.reports = audit.NewService(events), reporting.NewService(events)
	} else {
		mem := settings.NewMemoryRepo()
		store, overrides = mem, mem
		a.lines = settings.StaticLineDirectory(cfg.Line.Workspaces)
		events := audit.NewMemoryRepo()
		a.audit, a.reports = audit.NewService(events), reporting.NewService(events)
	}
	if rdb != nil && cfg.Line.SettingsCacheTTL > 0 {
		store = settings.NewCachedStore(store, rdb, cfg.Line.SettingsCacheTTL)
	}
	a.store = store
	a.resolver = settings.NewResolver(store, overrides)

	if rdb != nil {
		a.tracker = calls.NewRedisTracker(rdb, cfg.Line.ActiveCallTTL)
		a.checks = append(a.checks, utils.RedisCheck(rdb, healthTimeout))
	} else {
		a.tracker = calls.NewMemoryTracker(cfg.Line.ActiveCallTTL)
	}
	return a
}
