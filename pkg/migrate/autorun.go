package migrate

import (
	"context"
	"fmt"

	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/db"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

// MaybeRunDev runs pending migrations at startup. It is a no-op outside dev
// environments or when the auto-migrate flag is off; deployed environments
// migrate through cmd/migrate.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
		logg.Info(ctx, "running goose migrations (dev auto-run)")
	}

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "goose migrations completed")
	}
	return nil
}
