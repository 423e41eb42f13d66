package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"tradewatch/internal/bootstrap/config"
	"tradewatch/internal/bootstrap/database"
	"tradewatch/internal/bootstrap/logging"
	cacheinfra "tradewatch/internal/infrastructure/cache"
	sqlrepo "tradewatch/internal/infrastructure/persistence/sql/repository"
	sqluow "tradewatch/internal/infrastructure/persistence/sql/uow"
	"tradewatch/internal/infrastructure/provider"
	"tradewatch/internal/ports"
	"tradewatch/internal/usecase/alerts"
	syncuc "tradewatch/internal/usecase/sync"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqlrepo.NewTradeRepository,
			fx.As(new(ports.TradeRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqlrepo.NewReferenceRepository,
			fx.As(new(ports.ReferenceRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqlrepo.NewCheckpointRepository,
			fx.As(new(ports.CheckpointStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqlrepo.NewAlertRepository,
			fx.As(new(ports.AlertRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqlrepo.NewNotificationRepository,
			fx.As(new(ports.NotificationRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqluow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewKVCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideDisclosureSource),
	fx.Provide(provideAlertService),
	fx.Provide(provideSyncService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideDisclosureSource(cfg config.Config) ports.DisclosureSource {
	return provider.NewFileSource(cfg.Source.InputDir)
}

func provideAlertService(
	alertRepo ports.AlertRepository,
	notificationRepo ports.NotificationRepository,
	refs ports.ReferenceRepository,
	uow ports.UnitOfWork,
	cfg config.Config,
) *alerts.Service {
	return alerts.NewService(alertRepo, notificationRepo, refs, uow, alerts.Quotas(cfg.Alerts.Quotas))
}

func provideSyncService(
	source ports.DisclosureSource,
	trades ports.TradeRepository,
	refs ports.ReferenceRepository,
	checkpoints ports.CheckpointStore,
	cache ports.Cache,
	alertSvc *alerts.Service,
	cfg config.Config,
) *syncuc.Service {
	return syncuc.NewService(source, trades, refs, checkpoints, cache, alertSvc, syncuc.Defaults{
		PageSize:         cfg.Sync.PageSize,
		MaxPages:         cfg.Sync.MaxPages,
		BatchSize:        cfg.Sync.BatchSize,
		ResolverCacheTTL: cfg.Sync.ResolverCacheTTL,
	})
}
