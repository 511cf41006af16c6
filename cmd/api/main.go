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
	"github.com/joho/godotenv"

	"sales-crm/internal/analytics"
	"sales-crm/internal/auth"
	"sales-crm/internal/calendar"
	"sales-crm/internal/config"
	"sales-crm/internal/httpapi"
	"sales-crm/internal/i18n"
	"sales-crm/internal/kv"
	"sales-crm/internal/leadimport"
	"sales-crm/internal/store"
	"sales-crm/internal/templates"
	"sales-crm/internal/wizard"
	"sales-crm/pkg/logger"
	"sales-crm/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; the process env wins either way.
	_ = godotenv.Load()

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
	users := auth.NewDirectory()
	if _, err := users.Add(auth.User{Email: cfg.Auth.DemoEmail, Name: "Demo User", Role: cfg.Auth.DemoRole}, cfg.Auth.DemoPassword); err != nil {
		log.Error("demo user init failed", "err", err)
		os.Exit(1)
	}

	slots, closeSlots, err := openSlots(rootCtx, cfg, log)
	if err != nil {
		log.Error("slot storage init failed", "backend", cfg.Storage.Backend, "err", err)
		os.Exit(1)
	}
	defer closeSlots()

	st := store.New(store.Options{ActivityCap: cfg.CRM.ActivityLogCap, Logger: log})
	if cfg.CRM.SeedMockData {
		st.Seed()
	}

	renderer := templates.NewRenderer()
	wiz := wizard.New(st, wizard.Options{
		LaunchDelay: cfg.CRM.LaunchDelay,
		Notifier:    wizard.LogNotifier{Logger: log},
		Renderer:    renderer,
		Logger:      log,
	})
	defer wiz.Close()

	cal := calendar.New(slots, log)
	if err := cal.Load(rootCtx); err != nil {
		// The calendar stays usable; the next successful write repairs the slot.
		log.Error("calendar load failed", "err", err)
	}

	h := httpapi.Handlers{
		Auth:      authManager,
		Users:     users,
		Store:     st,
		Wizard:    wiz,
		Importer:  leadimport.New(log),
		Calendar:  cal,
		Analytics: analytics.NewService(st),
		Renderer:  renderer,
		Catalog:   i18n.Default(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "storage", cfg.Storage.Backend)
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

// openSlots builds the key/value backend named by STORAGE_BACKEND. The
// returned func releases its connections.
func openSlots(ctx context.Context, cfg config.Config, log *slog.Logger) (kv.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			return nil, nil, err
		}
		log.Info("slot storage ready", "backend", "redis", "prefix", cfg.Redis.KeyPrefix)
		return kv.NewRedisStore(rdb, cfg.Redis.KeyPrefix), closer(rdb), nil

	case config.BackendPostgres:
		db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return nil, nil, err
		}
		pg := kv.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("slot storage ready", "backend", "postgres")
		return pg, closer(db), nil

	default:
		return kv.NewMemoryStore(), func() {}, nil
	}
}

func closer[T interface{ Close() error }](c T) func() {
	return func() { _ = c.Close() }
}
