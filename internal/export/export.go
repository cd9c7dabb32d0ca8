// Package export turns archival records into spreadsheet rows and files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go-jewelry-pos/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSales     = "Sales"
	SheetSaleItems = "SaleItems"
	SheetMovements = "Movements"
	SheetBuybacks  = "Buybacks"
)

// Dataset is everything exported for a date range.
type Dataset struct {
	Sales     []model.Sale
	Movements []model.StockMovement
	Buybacks  []model.Buyback
}

var (
	SaleHeader     = []string{"Number", "Date", "Type", "Customer", "Phone", "Payment", "Total", "Down Payment", "Remaining", "Status", "Sales Person", "Note"}
	SaleItemHeader = []string{"Sale Number", "Item Code", "Name", "Purity", "Weight (g)", "Qty", "Unit Price", "Line Total", "Free"}
	MovementHeader = []string{"Date", "Item Code", "Kind", "Quantity", "Sale Number", "Note", "Recorded By"}
	BuybackHeader  = []string{"Number", "Date", "Customer", "Phone", "Description", "Purity", "Weight (g)", "Grade", "Price/g", "Percentage", "Raw Price", "Offer", "Paid", "Note"}
)

func SaleRow(s model.Sale) []interface{} {
	return []interface{}{
		s.Number,
		s.Date.Format(model.DateLayout),
		string(s.Type),
		s.CustomerName,
		s.CustomerPhone,
		string(s.PaymentMethod),
		s.Total,
		s.DownPayment,
		s.Remaining,
		string(s.Status),
		s.SalesPerson,
		s.Note,
	}
}

func SaleItemRows(s model.Sale) [][]interface{} {
	rows := make([][]interface{}, 0, len(s.Items))
	for _, it := range s.Items {
		rows = append(rows, []interface{}{
			s.Number,
			it.ItemCode,
			it.Name,
			it.Purity,
			it.Weight.String(),
			it.Quantity,
			it.UnitPrice,
			it.LineTotal,
			it.Free,
		})
	}
	return rows
}

// MovementRow resolves the sale number through saleNumbers, keyed by sale ID.
func MovementRow(m model.StockMovement, saleNumbers map[string]string) []interface{} {
	number := ""
	if m.SaleID != nil {
		number = saleNumbers[m.SaleID.String()]
	}
	return []interface{}{
		m.Date.Format(model.DateLayout),
		m.ItemCode,
		string(m.Kind),
		m.Quantity,
		number,
		m.Note,
		m.CreatedBy,
	}
}

func BuybackRow(b model.Buyback) []interface{} {
	return []interface{}{
		b.Number,
		b.Date.Format(model.DateLayout),
		b.CustomerName,
		b.CustomerPhone,
		b.Description,
		b.Purity,
		b.Weight.String(),
		string(b.Grade),
		b.PricePerGram,
		b.Percentage.String(),
		b.RawPrice,
		b.OfferPrice,
		b.PaidPrice,
		b.Note,
	}
}

// WriteWorkbook writes an XLSX file with one sheet per record kind.
func WriteWorkbook(w io.Writer, data Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	saleNumbers := make(map[string]string, len(data.Sales))
	var saleRows, itemRows [][]interface{}
	for _, s := range data.Sales {
		saleNumbers[s.ID.String()] = s.Number
		saleRows = append(saleRows, SaleRow(s))
		itemRows = append(itemRows, SaleItemRows(s)...)
	}
	movementRows := make([][]interface{}, 0, len(data.Movements))
	for _, m := range data.Movements {
		movementRows = append(movementRows, MovementRow(m, saleNumbers))
	}
	buybackRows := make([][]interface{}, 0, len(data.Buybacks))
	for _, b := range data.Buybacks {
		buybackRows = append(buybackRows, BuybackRow(b))
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]interface{}
	}{
		{SheetSales, SaleHeader, saleRows},
		{SheetSaleItems, SaleItemHeader, itemRows},
		{SheetMovements, MovementHeader, movementRows},
		{SheetBuybacks, BuybackHeader, buybackRows},
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return err
		}
		if err := writeSheet(f, sh.name, sh.header, sh.rows); err != nil {
			return fmt.Errorf("sheet %s: %w", sh.name, err)
		}
	}
	f.SetActiveSheet(0)

	_, err := f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// WriteSalesCSV writes the sales as UTF-8 CSV with a BOM so spreadsheet apps detect the encoding.
func WriteSalesCSV(w io.Writer, sales []model.Sale) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(SaleHeader); err != nil {
		return err
	}
	for _, s := range sales {
		row := SaleRow(s)
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = cellString(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
