package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/orsta/orsta/internal/config"
	"github.com/orsta/orsta/internal/orchestrator"
	pkgdb "github.com/orsta/orsta/pkg/db"
)

// Module applies the embedded schema on startup. A primary failure aborts
// boot; a mirror failure only logs, since the mirror is best effort.
var Module = fx.Module("migrations",
	fx.Invoke(func(orch *orchestrator.Orchestrator, cfg config.Config, log *zap.Logger) error {
		primary, err := orch.Primary().DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(primary, pkgdb.DriverName(cfg.DatabaseURL)); err != nil {
			return err
		}

		if !orch.MirrorEnabled() {
			return nil
		}
		mirror, err := orch.Mirror().DB()
		if err != nil {
			log.Warn("mirror migration skipped", zap.Error(err))
			return nil
		}
		if err := RunMigrations(mirror, pkgdb.DriverName(cfg.MirrorDatabaseURL)); err != nil {
			log.Warn("mirror migration failed", zap.Error(err))
		}
		return nil
	}),
)
