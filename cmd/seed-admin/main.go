// Package main creates the administrator account, or resets its password
// and unblocks it when it already exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bizbooks/internal/config"
	"bizbooks/internal/core/security"
	"bizbooks/internal/domain/auth"
	infrasecurity "bizbooks/internal/infrastructure/security"
	"bizbooks/internal/infrastructure/storage/postgres"
	"bizbooks/internal/infrastructure/storage/postgres/auth_repo"
	"bizbooks/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	username := flag.String("username", cfg.AdminUsername, "administrator username")
	password := flag.String("password", cfg.AdminPassword, "administrator password (or ADMIN_PASSWORD)")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)

	if *password == "" {
		log.Fatal("an administrator password is required (-password or ADMIN_PASSWORD)")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	txm := postgres.NewTxManager(pool)
	service := auth.NewService(
		auth_repo.NewUserRepo(txm),
		txm,
		infrasecurity.NewBcryptHasher(cfg.BcryptCost),
		auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret)),
		security.NewAccessPolicy(cfg.SubscriptionWarningDays),
		auth.DefaultServiceConfig(),
	)

	user, err := service.EnsureAdmin(ctx, *username, *password)
	if err != nil {
		log.Fatalw("failed to seed administrator", "error", err)
	}
	log.Infow("administrator ready", "user_id", user.ID, "username", user.Username)
}
