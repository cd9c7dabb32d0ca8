package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-jewelry-pos/internal/cache"
	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/receipt"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/testutil"
	"go-jewelry-pos/internal/ws"

	"gorm.io/gorm"
)

var testActor = Actor{ID: "u-1", Name: "Sari", Email: "sari@example.com"}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(e ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	now       time.Time
	store     *cache.MemoryStore
	publisher *recordingPublisher

	itemRepo  repository.ItemRepository
	stockRepo repository.StockRepository
	saleRepo  repository.SaleRepository

	items    ItemService
	stock    StockService
	sales    SaleService
	buybacks BuybackService
	maint    MaintenanceService
	promos   PromoService
	dash     DashboardService
}

// newFixture wires every service on a fresh database with "now" pinned to
// 2026-10-17 10:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:         t,
		ctx:       context.Background(),
		db:        testutil.OpenDB(t),
		now:       time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC),
		store:     cache.NewMemoryStore(),
		publisher: &recordingPublisher{},
	}
	clock := func() time.Time { return f.now }
	reportRepo := repository.NewReportRepo(testutil.SQLX(t, f.db))

	f.itemRepo = repository.NewItemRepo(f.db)
	f.stockRepo = repository.NewStockRepo(f.db)
	f.saleRepo = repository.NewSaleRepo(f.db)

	f.stock = NewStockService(StockServiceDeps{
		ItemRepo:   f.itemRepo,
		StockRepo:  f.stockRepo,
		ReportRepo: reportRepo,
		DB:         f.db,
		Store:      f.store,
		CacheCfg:   config.CacheConfig{TodayTTL: 5 * time.Minute, HistoryTTL: time.Hour},
		Location:   time.UTC,
		Clock:      clock,
		Publisher:  f.publisher,
	})
	f.items = NewItemService(f.itemRepo, f.stock, f.publisher, nil)

	renderer, err := receipt.NewRenderer(config.ShopConfig{Name: "Toko Emas Sinar"}, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	f.sales = NewSaleService(f.saleRepo, f.itemRepo, f.stock, renderer, f.db, clock, f.publisher, nil)

	buybackRepo := repository.NewBuybackRepo(f.db)
	if err := buybackRepo.SeedRates(f.ctx); err != nil {
		t.Fatal(err)
	}
	f.buybacks = NewBuybackService(BuybackServiceDeps{
		BuybackRepo: buybackRepo,
		PriceRepo:   repository.NewGoldPriceRepo(f.db),
		DB:          f.db,
		Location:    time.UTC,
		Clock:       clock,
		Publisher:   f.publisher,
	})
	f.maint = NewMaintenanceService(repository.NewMaintenanceRepo(f.db), f.stock, nil, f.publisher, nil)
	f.promos = NewPromoService(repository.NewPromoRepo(f.db), f.publisher, nil)
	f.dash = NewDashboardService(reportRepo, time.UTC, clock)
	return f
}

func (f *fixture) day(s string) time.Time {
	f.t.Helper()
	d, err := model.ParseDay(s)
	if err != nil {
		f.t.Fatal(err)
	}
	return d
}

func (f *fixture) createItem(code string, category model.ItemCategory, price int64, stock int) *model.Item {
	f.t.Helper()
	item, err := f.items.CreateItem(f.ctx, &CreateItemRequest{
		Code:         code,
		Name:         "Item " + code,
		Category:     category,
		Price:        price,
		Unit:         "pcs",
		InitialStock: stock,
	}, testActor)
	if err != nil {
		f.t.Fatalf("create item %s: %v", code, err)
	}
	return item
}

func (f *fixture) onHand(code string) int {
	f.t.Helper()
	item, err := f.items.GetItem(f.ctx, code)
	if err != nil {
		f.t.Fatal(err)
	}
	return item.Stock
}

func (f *fixture) line(view *model.StockView, code string) model.StockLine {
	f.t.Helper()
	for _, l := range view.Lines {
		if l.Code == code {
			return l
		}
	}
	f.t.Fatalf("no line for %s in %s view", code, view.Date)
	return model.StockLine{}
}
