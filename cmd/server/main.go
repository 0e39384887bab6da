// Package main is the entry point for the bizbooks API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizbooks/internal/config"
	"bizbooks/internal/core/security"
	"bizbooks/internal/domain/analytics"
	"bizbooks/internal/domain/auth"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/inventory"
	"bizbooks/internal/domain/journal"
	"bizbooks/internal/domain/reports"
	v1 "bizbooks/internal/infrastructure/http/v1"
	"bizbooks/internal/infrastructure/metrics"
	infrasecurity "bizbooks/internal/infrastructure/security"
	"bizbooks/internal/infrastructure/spreadsheet"
	"bizbooks/internal/infrastructure/storage/postgres"
	"bizbooks/internal/infrastructure/storage/postgres/auth_repo"
	"bizbooks/internal/infrastructure/storage/postgres/catalog_repo"
	"bizbooks/internal/infrastructure/storage/postgres/inventory_repo"
	"bizbooks/internal/infrastructure/storage/postgres/journal_repo"
	"bizbooks/internal/infrastructure/storage/postgres/report_repo"
	"bizbooks/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting bizbooks server", "version", version, "env", cfg.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("database ready")

	// --- Services ---
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}
	routerCfg := wire(cfg, pool)
	routerCfg.Logger = log
	routerCfg.Metrics = m

	handler, err := v1.Compress(v1.NewRouter(routerCfg))
	if err != nil {
		log.Fatalw("failed to build handler", "error", err)
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go logPoolStats(statsCtx, pool, time.Minute)

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// wire builds every repository and service on top of the pool.
func wire(cfg config.Config, pool *postgres.Pool) v1.RouterConfig {
	txm := postgres.NewTxManager(pool)

	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtCfg.AccessTokenTTL = cfg.JWTTTL
	authService := auth.NewService(
		auth_repo.NewUserRepo(txm),
		txm,
		infrasecurity.NewBcryptHasher(cfg.BcryptCost),
		auth.NewJWTService(jwtCfg),
		security.NewAccessPolicy(cfg.SubscriptionWarningDays),
		auth.DefaultServiceConfig(),
	)

	catalogRepo := catalog_repo.NewRepo(txm)
	journalRepo := journal_repo.NewRepo(txm)
	analyticsService := analytics.NewService(report_repo.NewSourceRepo(txm), txm)

	return v1.RouterConfig{
		DB:               pool,
		Version:          version,
		AuthService:      authService,
		CatalogService:   catalog.NewService(catalogRepo),
		InventoryService: inventory.NewService(inventory_repo.NewRepo(txm), catalogRepo, journalRepo, txm),
		JournalService:   journal.NewService(journalRepo, catalogRepo, spreadsheet.NewReader(), txm),
		AnalyticsService: analyticsService,
		ReportService:    reports.NewService(analyticsService, txm, spreadsheet.NewWriter()),
	}
}

func logPoolStats(ctx context.Context, pool *postgres.Pool, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			postgres.LogPoolStats(ctx, pool)
		}
	}
}
