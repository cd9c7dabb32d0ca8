package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/service"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the nightly stock snapshot and the gold price refresh.
type Scheduler struct {
	cron     *cron.Cron
	stock    service.StockService
	buybacks service.BuybackService
	cfg      config.SchedulerConfig
	logger   *zap.Logger
}

// NewScheduler builds a scheduler whose cron expressions are read in the shop timezone.
// buybacks may be nil when no gold price feed is configured.
func NewScheduler(cfg config.SchedulerConfig, loc *time.Location, stock service.StockService, buybacks service.BuybackService, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		stock:    stock,
		buybacks: buybacks,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron loop. A bad expression is returned
// before anything runs.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("snapshot_cron", s.cfg.SnapshotCron),
		zap.String("gold_price_cron", s.cfg.GoldPriceCron))

	if _, err := s.cron.AddFunc(s.cfg.SnapshotCron, s.snapshotToday); err != nil {
		return err
	}
	if s.buybacks != nil && s.cfg.GoldPriceCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.GoldPriceCron, s.refreshGoldPrices); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs up to ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	s.logger.Info("stopping scheduler")
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler jobs still running at shutdown")
	}
}

func (s *Scheduler) snapshotToday() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	day := s.stock.Today()
	snapshots, err := s.stock.GenerateSnapshot(ctx, day)
	if err != nil {
		s.logger.Error("failed to generate stock snapshot", zap.String("date", day.Format(model.DateLayout)), zap.Error(err))
		return
	}
	s.logger.Info("stock snapshot generated", zap.String("date", day.Format(model.DateLayout)), zap.Int("items", len(snapshots)))
}

func (s *Scheduler) refreshGoldPrices() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.buybacks.RefreshGoldPrices(ctx)
	if errors.Is(err, service.ErrGoldFeedDisabled) {
		return
	}
	if err != nil {
		s.logger.Error("failed to refresh gold prices", zap.Error(err))
		return
	}
	s.logger.Info("gold prices refreshed", zap.Int("quotes", n))
}
