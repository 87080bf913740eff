// Command seed creates the initial administrator and the sample assets.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/lnwboom/office-assets/config"
	"github.com/lnwboom/office-assets/database"
	"github.com/lnwboom/office-assets/logger"
	"github.com/lnwboom/office-assets/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := database.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Disconnect(client, log)

	db := client.Database(cfg.MongoDatabase)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	s := &seeder{
		users:         repository.NewUserRepository(db),
		assets:        repository.NewAssetRepository(db),
		adminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		log:           log,
		now:           time.Now,
	}
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}

	if res.GeneratedPassword != "" {
		// Printed once so the operator can log in; it is not stored anywhere else.
		fmt.Printf("admin password: %s\n", res.GeneratedPassword)
	}
	log.Info("database initialization completed",
		zap.Bool("admin_created", res.AdminCreated),
		zap.Int("assets_created", res.AssetsCreated),
	)
	return nil
}
