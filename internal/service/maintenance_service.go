package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go-jewelry-pos/internal/archive"
	"go-jewelry-pos/internal/export"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
)

// ContentType is the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ArchiveResult is the per-sink count of archived records.
type ArchiveResult map[string]int

type PurgeResult struct {
	Before           string                 `json:"before"`
	SnapshotDate     string                 `json:"snapshot_date"`
	SnapshotsWritten int                    `json:"snapshots_written"`
	Deleted          repository.PurgeCounts `json:"deleted"`
}

type MaintenanceService interface {
	Export(ctx context.Context, w io.Writer, from, to time.Time, format ExportFormat) error
	Archive(ctx context.Context, from, to time.Time) (ArchiveResult, error)
	Purge(ctx context.Context, before time.Time, actor Actor) (*PurgeResult, error)
}

type maintenanceService struct {
	repo      repository.MaintenanceRepository
	stock     StockService
	sinks     []archive.Sink
	publisher Publisher
	logger    *zap.Logger
}

func NewMaintenanceService(
	repo repository.MaintenanceRepository,
	stock StockService,
	sinks []archive.Sink,
	publisher Publisher,
	logger *zap.Logger,
) MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &maintenanceService{
		repo:      repo,
		stock:     stock,
		sinks:     sinks,
		publisher: publisherOrNop(publisher),
		logger:    logger,
	}
}

func (s *maintenanceService) dataset(ctx context.Context, from, to time.Time) (export.Dataset, error) {
	var data export.Dataset
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return data, ErrInvalidDateRange
	}

	var err error
	if data.Sales, err = s.repo.SalesBetween(ctx, from, to); err != nil {
		return data, fmt.Errorf("failed to load sales: %w", err)
	}
	if data.Movements, err = s.repo.MovementsBetween(ctx, from, to); err != nil {
		return data, fmt.Errorf("failed to load movements: %w", err)
	}
	if data.Buybacks, err = s.repo.BuybacksBetween(ctx, from, to); err != nil {
		return data, fmt.Errorf("failed to load buybacks: %w", err)
	}
	return data, nil
}

func (s *maintenanceService) Export(ctx context.Context, w io.Writer, from, to time.Time, format ExportFormat) error {
	if format != FormatXLSX && format != FormatCSV {
		return ErrUnsupportedFormat
	}
	data, err := s.dataset(ctx, from, to)
	if err != nil {
		return err
	}

	s.logger.Info("exporting archive",
		zap.String("from", from.Format(model.DateLayout)),
		zap.String("to", to.Format(model.DateLayout)),
		zap.String("format", string(format)),
		zap.Int("sales", len(data.Sales)))

	if format == FormatCSV {
		return export.WriteSalesCSV(w, data.Sales)
	}
	return export.WriteWorkbook(w, data)
}

func (s *maintenanceService) Archive(ctx context.Context, from, to time.Time) (ArchiveResult, error) {
	if len(s.sinks) == 0 {
		return nil, ErrNoArchiveSink
	}
	data, err := s.dataset(ctx, from, to)
	if err != nil {
		return nil, err
	}

	result := make(ArchiveResult, len(s.sinks))
	for _, sink := range s.sinks {
		n, err := sink.Archive(ctx, data)
		result[sink.Name()] = n
		if err != nil {
			return result, fmt.Errorf("archive to %s: %w", sink.Name(), err)
		}
	}
	return result, nil
}

// Purge deletes archival rows dated before the cut-off. The ending stock of the
// previous day is persisted first so later stock views keep a base, and the ledger
// is closed for every purged day.
func (s *maintenanceService) Purge(ctx context.Context, before time.Time, actor Actor) (*PurgeResult, error) {
	before = truncateDay(before)
	if !before.Before(s.stock.Today()) {
		return nil, ErrPurgeNotPast
	}

	var counts repository.PurgeCounts
	snapshots, err := s.stock.ClosePeriod(ctx, before, actor, func(tx *gorm.DB) error {
		var err error
		counts, err = s.repo.PurgeBefore(tx, before)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to purge before %s: %w", before.Format(model.DateLayout), err)
	}

	baseDay := before.AddDate(0, 0, -1)
	result := &PurgeResult{
		Before:           before.Format(model.DateLayout),
		SnapshotDate:     baseDay.Format(model.DateLayout),
		SnapshotsWritten: len(snapshots),
		Deleted:          counts,
	}
	s.logger.Warn("archive purged",
		zap.String("before", result.Before),
		zap.String("by", actor.ID),
		zap.Int64("sales", counts.Sales),
		zap.Int64("movements", counts.Movements),
		zap.Int64("buybacks", counts.Buybacks))
	s.publisher.Publish(ws.Event{
		Type:    "maintenance",
		Action:  "purged",
		Message: fmt.Sprintf("%s deleted records before %s", actor.Name, result.Before),
		Data:    map[string]any{"before": result.Before, "user": actor.wsData()},
	})
	return result, nil
}
