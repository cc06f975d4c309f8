// Command migrate creates or updates the relational schema.
package main

import (
	"context"
	"log/slog"
	"os"

	"foodbridge/config"
	logs "foodbridge/internal/infra/log"
	"foodbridge/internal/infra/persistence/model"
	"foodbridge/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
		),
		fx.Invoke(migrate),
	)
	if err := app.Err(); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start", slog.Any("error", err))
		os.Exit(1)
	}
	if err := app.Stop(ctx); err != nil {
		slog.Error("Failed to close database", slog.Any("error", err))
	}
}

func migrate(db *gorm.DB, logger *slog.Logger) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return errors.Wrap(err, "failed to auto-migrate models")
	}

	logger.Info("Schema is up to date", slog.Int("models", len(model.All())))

	return nil
}
