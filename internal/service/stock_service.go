package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-jewelry-pos/internal/cache"
	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const stockViewPrefix = "stock:view:"

func stockViewKey(day time.Time) string {
	return stockViewPrefix + day.Format(model.DateLayout)
}

type AddStockRequest struct {
	ItemCode string `json:"item_code" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	Date     string `json:"date"` // YYYY-MM-DD, empty means today
	Note     string `json:"note"`
}

type UsageRequest struct {
	ItemCode string             `json:"item_code" validate:"required"`
	Kind     model.MovementKind `json:"kind" validate:"required,oneof=SALE FREE LOCK_REPLACE"`
	Quantity int                `json:"quantity" validate:"gt=0"`
	Date     string             `json:"date"`
	Note     string             `json:"note"`
}

// StockService owns the movement ledger, on-hand stock and the derived "stock as of date" views.
type StockService interface {
	AddStock(ctx context.Context, req *AddStockRequest, actor Actor) (*model.StockMovement, error)
	RecordUsage(ctx context.Context, req *UsageRequest, actor Actor) (*model.StockMovement, error)
	LockReplacement(ctx context.Context, itemCode string, qty int, note string, actor Actor) (*model.StockMovement, error)
	ListMovements(ctx context.Context, itemCode string, from, to time.Time) ([]model.StockMovement, error)

	StockAsOf(ctx context.Context, day time.Time) (*model.StockView, error)
	GenerateSnapshot(ctx context.Context, day time.Time) ([]model.StockSnapshot, error)
	InvalidateViews(ctx context.Context) error
	Today() time.Time

	// Write runs fn in one transaction and feeds the change it returns to the cached views
	// and realtime clients once committed. Every ledger change goes through Write.
	Write(ctx context.Context, actor Actor, fn LedgerFunc) error
	// Apply records m inside tx and adjusts on-hand stock under a row lock.
	Apply(tx *gorm.DB, m *model.StockMovement, actor Actor) error
	// ReverseSale removes the movements of a sale inside tx and restores stock.
	ReverseSale(tx *gorm.DB, saleID uuid.UUID, actor Actor) ([]model.StockMovement, error)
	// EnsureOpen rejects days the ledger was closed for by a purge.
	EnsureOpen(tx *gorm.DB, day time.Time) error
	// ClosePeriod snapshots the day before `before` as the new stock base, then runs purge in
	// the transaction that closes the ledger for every earlier day.
	ClosePeriod(ctx context.Context, before time.Time, actor Actor, purge func(tx *gorm.DB) error) ([]model.StockSnapshot, error)
}

// LedgerChange is what a ledger write hands back for the cached views.
type LedgerChange struct {
	Movements []model.StockMovement
	Reversed  bool
	// DropViews drops every cached view instead of patching today's.
	DropViews bool
}

type LedgerFunc func(tx *gorm.DB) (*LedgerChange, error)

type stockService struct {
	itemRepo   repository.ItemRepository
	stockRepo  repository.StockRepository
	reportRepo repository.ReportRepository
	db         *gorm.DB
	store      cache.Store
	cacheCfg   config.CacheConfig
	loc        *time.Location
	now        Clock
	publisher  Publisher
	logger     *zap.Logger

	// viewMu is held by ledger writes from before the transaction until the cached views
	// follow it, and by every view rebuild, so a rebuild never sees a change twice
	viewMu sync.Mutex
}

type StockServiceDeps struct {
	ItemRepo   repository.ItemRepository
	StockRepo  repository.StockRepository
	ReportRepo repository.ReportRepository
	DB         *gorm.DB
	Store      cache.Store
	CacheCfg   config.CacheConfig
	Location   *time.Location
	Clock      Clock
	Publisher  Publisher
	Logger     *zap.Logger
}

func NewStockService(deps StockServiceDeps) StockService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	store := deps.Store
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &stockService{
		itemRepo:   deps.ItemRepo,
		stockRepo:  deps.StockRepo,
		reportRepo: deps.ReportRepo,
		db:         deps.DB,
		store:      store,
		cacheCfg:   deps.CacheCfg,
		loc:        loc,
		now:        clockOrNow(deps.Clock),
		publisher:  publisherOrNop(deps.Publisher),
		logger:     logger,
	}
}

func (s *stockService) Today() time.Time {
	return model.Day(s.now(), s.loc)
}

func (s *stockService) AddStock(ctx context.Context, req *AddStockRequest, actor Actor) (*model.StockMovement, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	day, err := resolveDay(req.Date, s.Today())
	if err != nil {
		return nil, err
	}
	m := &model.StockMovement{
		ItemCode: req.ItemCode,
		Kind:     model.MoveAdd,
		Quantity: req.Quantity,
		Date:     day,
		Note:     req.Note,
	}
	return s.record(ctx, m, actor)
}

func (s *stockService) RecordUsage(ctx context.Context, req *UsageRequest, actor Actor) (*model.StockMovement, error) {
	if !req.Kind.Valid() || req.Kind == model.MoveAdd {
		return nil, ErrInvalidMovementKind
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	day, err := resolveDay(req.Date, s.Today())
	if err != nil {
		return nil, err
	}
	m := &model.StockMovement{
		ItemCode: req.ItemCode,
		Kind:     req.Kind,
		Quantity: req.Quantity,
		Date:     day,
		Note:     req.Note,
	}
	return s.record(ctx, m, actor)
}

func (s *stockService) LockReplacement(ctx context.Context, itemCode string, qty int, note string, actor Actor) (*model.StockMovement, error) {
	return s.RecordUsage(ctx, &UsageRequest{
		ItemCode: itemCode,
		Kind:     model.MoveLockReplace,
		Quantity: qty,
		Note:     note,
	}, actor)
}

func (s *stockService) record(ctx context.Context, m *model.StockMovement, actor Actor) (*model.StockMovement, error) {
	err := s.Write(ctx, actor, func(tx *gorm.DB) (*LedgerChange, error) {
		if err := s.Apply(tx, m, actor); err != nil {
			return nil, err
		}
		return &LedgerChange{Movements: []model.StockMovement{*m}}, nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *stockService) Write(ctx context.Context, actor Actor, fn LedgerFunc) error {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()

	var change *LedgerChange
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		change, err = fn(tx)
		return err
	})
	if err != nil {
		return err
	}
	if change != nil {
		s.committed(ctx, change, actor)
	}
	return nil
}

func (s *stockService) Apply(tx *gorm.DB, m *model.StockMovement, actor Actor) error {
	if !m.Kind.Valid() {
		return ErrInvalidMovementKind
	}
	if m.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	m.Date = truncateDay(m.Date)
	if m.Date.After(s.Today()) {
		return ErrFutureDate
	}
	if err := s.EnsureOpen(tx, m.Date); err != nil {
		return err
	}

	item, err := s.itemRepo.LockByCode(tx, m.ItemCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrItemNotFound, m.ItemCode)
		}
		return err
	}

	newStock := item.Stock + m.Delta()
	if newStock < 0 {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientStock, item.Code, item.Stock, m.Quantity)
	}
	if err := s.itemRepo.UpdateStock(tx, item.ID, newStock, actor.ID); err != nil {
		return err
	}

	m.CreatedBy = actor.ID
	m.UpdatedBy = actor.ID
	if err := s.stockRepo.CreateMovement(tx, m); err != nil {
		return err
	}

	_, err = s.stockRepo.DeleteSnapshotsFrom(tx, m.Date)
	return err
}

func (s *stockService) ReverseSale(tx *gorm.DB, saleID uuid.UUID, actor Actor) ([]model.StockMovement, error) {
	movements, err := s.stockRepo.DeleteMovementsBySale(tx, saleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(movements) == 0 {
		return nil, nil
	}

	earliest := movements[0].Date
	for _, m := range movements {
		item, err := s.itemRepo.LockByCode(tx, m.ItemCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrItemNotFound, m.ItemCode)
			}
			return nil, err
		}
		if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock-m.Delta(), actor.ID); err != nil {
			return nil, err
		}
		if m.Date.Before(earliest) {
			earliest = m.Date
		}
	}

	if _, err := s.stockRepo.DeleteSnapshotsFrom(tx, truncateDay(earliest)); err != nil {
		return nil, err
	}
	return movements, nil
}

func (s *stockService) EnsureOpen(tx *gorm.DB, day time.Time) error {
	closedBefore, err := s.stockRepo.ClosedBefore(tx)
	if err != nil {
		return err
	}
	if truncateDay(day).Before(truncateDay(closedBefore)) {
		return fmt.Errorf("%w: %s is before %s", ErrPeriodClosed,
			day.Format(model.DateLayout), closedBefore.Format(model.DateLayout))
	}
	return nil
}

// committed applies a committed change to the cached views. Callers hold viewMu.
func (s *stockService) committed(ctx context.Context, change *LedgerChange, actor Actor) {
	today := s.Today()
	dropAll := change.DropViews

	for _, m := range change.Movements {
		if !truncateDay(m.Date).Equal(today) {
			dropAll = true
		} else if !change.DropViews {
			qty := m.Quantity
			if change.Reversed {
				qty = -qty
			}
			s.patchToday(ctx, today, m.ItemCode, m.Kind, qty)
		}

		action := "movement_recorded"
		if change.Reversed {
			action = "movement_reversed"
		}
		s.publisher.Publish(ws.Event{
			Type:    "stock_update",
			Action:  action,
			Message: fmt.Sprintf("%s %s %d x %s", actor.Name, m.Kind, m.Quantity, m.ItemCode),
			Data: map[string]any{
				"item_code": m.ItemCode,
				"kind":      m.Kind,
				"quantity":  m.Quantity,
				"date":      truncateDay(m.Date).Format(model.DateLayout),
				"user":      actor.wsData(),
			},
		})
	}

	if dropAll {
		if err := s.store.DeletePrefix(ctx, stockViewPrefix); err != nil {
			s.logger.Warn("failed to drop cached stock views", zap.Error(err))
		}
	}
}

// patchToday applies one movement to today's cached view. A view without the item is dropped
// so the next read rebuilds it. Callers hold viewMu.
func (s *stockService) patchToday(ctx context.Context, today time.Time, code string, kind model.MovementKind, qty int) {
	key := stockViewKey(today)
	var view model.StockView
	hit, err := s.store.Get(ctx, key, &view)
	if err != nil {
		s.logger.Warn("failed to read cached stock view", zap.String("key", key), zap.Error(err))
		_ = s.store.Delete(ctx, key)
		return
	}
	if !hit {
		return
	}

	for i := range view.Lines {
		if view.Lines[i].Code == code {
			view.Lines[i].Apply(kind, qty)
			view.ComputedAt = s.now()
			if err := s.store.Set(ctx, key, &view, s.cacheCfg.TodayTTL); err != nil {
				s.logger.Warn("failed to update cached stock view", zap.String("key", key), zap.Error(err))
			}
			return
		}
	}

	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to drop cached stock view", zap.String("key", key), zap.Error(err))
	}
}

func (s *stockService) InvalidateViews(ctx context.Context) error {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	return s.store.DeletePrefix(ctx, stockViewPrefix)
}

func (s *stockService) ListMovements(ctx context.Context, itemCode string, from, to time.Time) ([]model.StockMovement, error) {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	return s.stockRepo.ListMovements(ctx, itemCode, from, to)
}

func (s *stockService) StockAsOf(ctx context.Context, day time.Time) (*model.StockView, error) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	return s.stockAsOf(ctx, day)
}

// stockAsOf reads or rebuilds the view of day. Callers hold viewMu.
func (s *stockService) stockAsOf(ctx context.Context, day time.Time) (*model.StockView, error) {
	day = truncateDay(day)
	today := s.Today()
	if day.After(today) {
		return nil, ErrFutureDate
	}

	ttl := s.cacheCfg.HistoryTTL
	if day.Equal(today) {
		ttl = s.cacheCfg.TodayTTL
	}

	key := stockViewKey(day)
	var cached model.StockView
	hit, err := s.store.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("failed to read cached stock view", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	// closed days lost their ledger rows
	if err := s.EnsureOpen(s.db.WithContext(ctx), day); err != nil {
		return nil, err
	}

	view, err := s.computeView(ctx, day)
	if err != nil {
		return nil, err
	}
	if ttl > 0 {
		if err := s.store.Set(ctx, key, view, ttl); err != nil {
			s.logger.Warn("failed to cache stock view", zap.String("key", key), zap.Error(err))
		}
	}
	return view, nil
}

// computeView rebuilds the view from the newest snapshot before day plus the ledger.
func (s *stockService) computeView(ctx context.Context, day time.Time) (*model.StockView, error) {
	items, err := s.itemRepo.FindAll(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	snapshots, err := s.stockRepo.LatestSnapshotsBefore(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots before %s: %w", day.Format(model.DateLayout), err)
	}

	bases := make(map[string]model.StockSnapshot, len(snapshots))
	for _, snap := range snapshots {
		snap.SnapshotDate = truncateDay(snap.SnapshotDate)
		bases[snap.ItemCode] = snap
	}

	// movements older than every base are never needed
	var from time.Time
	if len(items) > 0 && len(bases) >= len(items) {
		from = day
		for _, item := range items {
			base, ok := bases[item.Code]
			if !ok {
				from = time.Time{}
				break
			}
			if next := base.SnapshotDate.AddDate(0, 0, 1); next.Before(from) {
				from = next
			}
		}
	}

	totals, err := s.reportRepo.MovementTotals(ctx, from, day)
	if err != nil {
		return nil, err
	}

	lines := make(map[string]*model.StockLine, len(items))
	for _, item := range items {
		line := &model.StockLine{Code: item.Code, Name: item.Name, Category: item.Category}
		if base, ok := bases[item.Code]; ok {
			line.Opening = base.Quantity
		}
		lines[item.Code] = line
	}

	for _, t := range totals {
		line, ok := lines[t.ItemCode]
		if !ok {
			continue
		}
		date := truncateDay(t.Date)
		if base, ok := bases[t.ItemCode]; ok && !date.After(base.SnapshotDate) {
			continue
		}
		if date.Equal(day) {
			line.Apply(t.Kind, t.Quantity)
		} else {
			line.Opening += t.Kind.Sign() * t.Quantity
		}
	}

	view := &model.StockView{
		Date:       day.Format(model.DateLayout),
		Lines:      make([]model.StockLine, 0, len(items)),
		ComputedAt: s.now(),
	}
	for _, item := range items {
		line := lines[item.Code]
		line.Recompute()
		view.Lines = append(view.Lines, *line)
	}
	sort.SliceStable(view.Lines, func(i, j int) bool {
		if view.Lines[i].Category != view.Lines[j].Category {
			return view.Lines[i].Category < view.Lines[j].Category
		}
		return view.Lines[i].Code < view.Lines[j].Code
	})
	return view, nil
}

func (s *stockService) GenerateSnapshot(ctx context.Context, day time.Time) ([]model.StockSnapshot, error) {
	s.viewMu.Lock()
	defer s.viewMu.Unlock()
	return s.generateSnapshot(ctx, day)
}

// generateSnapshot persists the endings of day. Callers hold viewMu so no ledger write lands
// between reading the view and saving it.
func (s *stockService) generateSnapshot(ctx context.Context, day time.Time) ([]model.StockSnapshot, error) {
	day = truncateDay(day)
	view, err := s.stockAsOf(ctx, day)
	if err != nil {
		return nil, err
	}

	period := model.SnapshotDaily
	if day.AddDate(0, 0, 1).Day() == 1 {
		period = model.SnapshotMonthly
	}

	now := s.now()
	snapshots := make([]model.StockSnapshot, 0, len(view.Lines))
	for _, line := range view.Lines {
		snapshots = append(snapshots, model.StockSnapshot{
			ItemCode:     line.Code,
			SnapshotDate: day,
			Period:       period,
			Quantity:     line.Ending,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err := s.stockRepo.UpsertSnapshots(ctx, snapshots); err != nil {
		return nil, fmt.Errorf("failed to save snapshots for %s: %w", view.Date, err)
	}

	s.logger.Info("stock snapshot generated",
		zap.String("date", view.Date),
		zap.String("period", string(period)),
		zap.Int("items", len(snapshots)))
	return snapshots, nil
}

func (s *stockService) ClosePeriod(ctx context.Context, before time.Time, actor Actor, purge func(tx *gorm.DB) error) ([]model.StockSnapshot, error) {
	before = truncateDay(before)

	s.viewMu.Lock()
	defer s.viewMu.Unlock()

	baseDay := before.AddDate(0, 0, -1)
	if err := s.EnsureOpen(s.db.WithContext(ctx), baseDay); err != nil {
		return nil, err
	}
	snapshots, err := s.generateSnapshot(ctx, baseDay)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot %s: %w", baseDay.Format(model.DateLayout), err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		closing := &model.StockClosing{ClosedBefore: before, CreatedBy: actor.ID}
		if err := s.stockRepo.CreateClosing(tx, closing); err != nil {
			return err
		}
		return purge(tx)
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.DeletePrefix(ctx, stockViewPrefix); err != nil {
		s.logger.Warn("failed to drop cached stock views", zap.Error(err))
	}
	return snapshots, nil
}
