package archive

import (
	"context"
	"fmt"

	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/export"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// SheetsSink appends archived rows to tabs of a Google spreadsheet.
// The tabs must exist and are named after the export sheets.
type SheetsSink struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

func NewSheetsSink(ctx context.Context, cfg config.ArchiveConfig, logger *zap.Logger) (*SheetsSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.SheetsCredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return &SheetsSink{service: service, spreadsheetID: cfg.SpreadsheetID, logger: logger}, nil
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Archive(ctx context.Context, data export.Dataset) (int, error) {
	var saleRows, itemRows, buybackRows [][]interface{}
	for _, sale := range data.Sales {
		saleRows = append(saleRows, export.SaleRow(sale))
		itemRows = append(itemRows, export.SaleItemRows(sale)...)
	}
	for _, b := range data.Buybacks {
		buybackRows = append(buybackRows, export.BuybackRow(b))
	}

	written := 0
	for _, batch := range []struct {
		sheet string
		rows  [][]interface{}
	}{
		{export.SheetSales, saleRows},
		{export.SheetSaleItems, itemRows},
		{export.SheetBuybacks, buybackRows},
	} {
		if len(batch.rows) == 0 {
			continue
		}
		if err := s.append(ctx, batch.sheet+"!A1", batch.rows); err != nil {
			return written, err
		}
		written += len(batch.rows)
	}

	s.logger.Info("records archived", zap.String("sink", s.Name()), zap.Int("rows", written))
	return written, nil
}

func (s *SheetsSink) append(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: rows}
	call := s.service.Spreadsheets.Values.Append(s.spreadsheetID, sheetRange, payload).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}
	return nil
}

func (s *SheetsSink) Close(context.Context) error { return nil }
