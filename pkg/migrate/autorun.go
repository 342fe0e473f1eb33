package migrate

import (
	"context"
	"fmt"

	"github.com/groupcollect/groupcollect-backend/pkg/config"
	"github.com/groupcollect/groupcollect-backend/pkg/db"
	"github.com/groupcollect/groupcollect-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on startup in dev when
// GROUPCOLLECT_AUTO_MIGRATE is on. sqlite databases are skipped; their
// schema comes from dbtest.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})
	if cfg.DB.IsSQLite() {
		logg.Warn(ctx, "skipping migrations: they target postgres")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	provider, err := NewProvider(sqlDB, nil)
	if err != nil {
		return err
	}

	applied, err := Up(ctx, provider)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "applied", applied), "migrations up to date")
	return nil
}
