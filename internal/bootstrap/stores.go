package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kirillkom/medguard/internal/config"
	"github.com/kirillkom/medguard/internal/core/ports"
	"github.com/kirillkom/medguard/internal/infrastructure/repository/memory"
	"github.com/kirillkom/medguard/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/medguard/internal/infrastructure/seed"
)

type stores struct {
	reports       ports.ReportRepository
	notifications ports.NotificationRepository
	community     ports.CommunityRepository
	// users and sessions are process-local in every mode.
	users ports.UserStore
	close func()
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return postgresStores(db), nil
	case config.StoreMemory, "":
		return &stores{
			reports:       memory.NewReportRepository(),
			notifications: memory.NewNotificationRepository(),
			community:     memory.NewCommunityRepository(),
			users:         memory.NewUserStore(),
			close:         func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func postgresStores(db *sql.DB) *stores {
	return &stores{
		reports:       postgres.NewReportRepository(db),
		notifications: postgres.NewNotificationRepository(db),
		community:     postgres.NewCommunityRepository(db),
		users:         memory.NewUserStore(),
		close:         func() { _ = db.Close() },
	}
}

// OpenReportStore opens only the report logs, seeding an in-memory store so
// read-only tools have something to show. The returned func releases it.
func OpenReportStore(ctx context.Context, cfg config.Config) (ports.ReportRepository, func(), error) {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	data, err := seed.Load(cfg.SeedPath, time.Now().UTC())
	if err != nil {
		st.close()
		return nil, nil, fmt.Errorf("load seed: %w", err)
	}
	if err := seed.Apply(ctx, data, st.reports, st.community); err != nil {
		st.close()
		return nil, nil, fmt.Errorf("apply seed: %w", err)
	}
	return st.reports, st.close, nil
}
