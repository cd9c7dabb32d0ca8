// Package app builds the service graph shared by the API server and posctl.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-jewelry-pos/internal/archive"
	"go-jewelry-pos/internal/cache"
	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/receipt"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/service"
	"go-jewelry-pos/internal/ws"
	"go-jewelry-pos/pkg/clients/goldprice"
	"go-jewelry-pos/pkg/database"
	"go-jewelry-pos/pkg/jwt"
	"go-jewelry-pos/pkg/logger"
)

type Repositories struct {
	User        repository.UserRepository
	Role        repository.RoleRepository
	Privilege   repository.PrivilegeRepository
	Item        repository.ItemRepository
	Stock       repository.StockRepository
	Sale        repository.SaleRepository
	Buyback     repository.BuybackRepository
	GoldPrice   repository.GoldPriceRepository
	Promo       repository.PromoRepository
	Report      repository.ReportRepository
	Maintenance repository.MaintenanceRepository
}

type Services struct {
	Auth        service.AuthService
	User        service.UserService
	Item        service.ItemService
	Stock       service.StockService
	Sale        service.SaleService
	Buyback     service.BuybackService
	Maintenance service.MaintenanceService
	Promo       service.PromoService
	Dashboard   service.DashboardService
}

// App owns the connections and services of one process.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	SQLX     *sqlx.DB
	Hub      *ws.Hub
	Location *time.Location
	Repos    Repositories
	Services Services

	// GoldFeedEnabled is false when no feed URL is configured.
	GoldFeedEnabled bool

	sinks   []archive.Sink
	closers []func(context.Context) error
}

// New connects every backing store, migrates, seeds and builds the services.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: log, Location: cfg.Location()}

	db, err := database.Connect(cfg.Database, logger.Named(log, "db"))
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if err := db.AutoMigrate(model.Tables()...); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	if a.SQLX, err = database.SQLX(db, cfg.Database.Driver); err != nil {
		a.Close(ctx)
		return nil, err
	}

	store, err := a.cacheStore(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	if err := a.openSinks(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Hub = ws.NewHub(logger.Named(log, "ws"))
	a.Repos = newRepositories(db, a.SQLX)

	if err := service.SeedAccess(ctx, a.Repos.Privilege, a.Repos.Role, a.Repos.User, cfg.Seed, logger.Named(log, "seed")); err != nil {
		a.Close(ctx)
		return nil, err
	}
	if err := a.Repos.Buyback.SeedRates(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to seed buyback rates: %w", err)
	}

	renderer, err := receipt.NewRenderer(cfg.Shop, a.Location)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Services = a.newServices(store, renderer)
	return a, nil
}

func newRepositories(db *gorm.DB, sqlxDB *sqlx.DB) Repositories {
	return Repositories{
		User:        repository.NewUserRepo(db),
		Role:        repository.NewRoleRepo(db),
		Privilege:   repository.NewPrivilegeRepo(db),
		Item:        repository.NewItemRepo(db),
		Stock:       repository.NewStockRepo(db),
		Sale:        repository.NewSaleRepo(db),
		Buyback:     repository.NewBuybackRepo(db),
		GoldPrice:   repository.NewGoldPriceRepo(db),
		Promo:       repository.NewPromoRepo(db),
		Report:      repository.NewReportRepo(sqlxDB),
		Maintenance: repository.NewMaintenanceRepo(db),
	}
}

func (a *App) cacheStore(ctx context.Context) (cache.Store, error) {
	if !a.Config.Redis.Enabled {
		a.Logger.Info("using in-memory stock view cache")
		return cache.NewMemoryStore(), nil
	}
	store, err := cache.NewRedisStore(ctx, a.Config.Redis)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return store.Close() })
	a.Logger.Info("using redis stock view cache", zap.String("addr", a.Config.Redis.Addr))
	return store, nil
}

func (a *App) openSinks(ctx context.Context) error {
	cfg := a.Config.Archive
	if cfg.MongoURI != "" {
		sink, err := archive.NewMongoSink(ctx, cfg.MongoURI, cfg.MongoDB, logger.Named(a.Logger, "archive.mongo"))
		if err != nil {
			return err
		}
		a.sinks = append(a.sinks, sink)
		a.closers = append(a.closers, sink.Close)
	}
	if cfg.SpreadsheetID != "" {
		sink, err := archive.NewSheetsSink(ctx, cfg, logger.Named(a.Logger, "archive.sheets"))
		if err != nil {
			return err
		}
		a.sinks = append(a.sinks, sink)
		a.closers = append(a.closers, sink.Close)
	}
	return nil
}

func (a *App) newServices(store cache.Store, renderer *receipt.Renderer) Services {
	cfg := a.Config
	log := a.Logger
	tokens := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	stock := service.NewStockService(service.StockServiceDeps{
		ItemRepo:   a.Repos.Item,
		StockRepo:  a.Repos.Stock,
		ReportRepo: a.Repos.Report,
		DB:         a.DB,
		Store:      store,
		CacheCfg:   cfg.Cache,
		Location:   a.Location,
		Publisher:  a.Hub,
		Logger:     logger.Named(log, "svc.stock"),
	})

	var feed goldprice.Client
	if cfg.GoldFeed.BaseURL != "" {
		feed = goldprice.NewClient(cfg.GoldFeed)
		a.GoldFeedEnabled = true
	}

	return Services{
		Auth:  service.NewAuthService(a.Repos.User, tokens, cfg.JWT.IdleTimeout, a.Hub, logger.Named(log, "svc.auth")),
		User:  service.NewUserService(a.Repos.User, a.Repos.Privilege, a.Repos.Role, logger.Named(log, "svc.users")),
		Item:  service.NewItemService(a.Repos.Item, stock, a.Hub, logger.Named(log, "svc.items")),
		Stock: stock,
		Sale:  service.NewSaleService(a.Repos.Sale, a.Repos.Item, stock, renderer, a.DB, nil, a.Hub, logger.Named(log, "svc.sales")),
		Buyback: service.NewBuybackService(service.BuybackServiceDeps{
			BuybackRepo: a.Repos.Buyback,
			PriceRepo:   a.Repos.GoldPrice,
			Feed:        feed,
			DB:          a.DB,
			Location:    a.Location,
			Publisher:   a.Hub,
			Logger:      logger.Named(log, "svc.buyback"),
		}),
		Maintenance: service.NewMaintenanceService(a.Repos.Maintenance, stock, a.sinks, a.Hub, logger.Named(log, "svc.maintenance")),
		Promo:       service.NewPromoService(a.Repos.Promo, a.Hub, logger.Named(log, "svc.promo")),
		Dashboard:   service.NewDashboardService(a.Repos.Report, a.Location, nil),
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Logger.Warn("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}
