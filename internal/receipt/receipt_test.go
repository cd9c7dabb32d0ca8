package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"go-jewelry-pos/internal/config"
	"go-jewelry-pos/internal/model"

	"github.com/shopspring/decimal"
)

func sampleSale() *model.Sale {
	return &model.Sale{
		Number:       "MAN-20261017-0001",
		Type:         model.SaleManual,
		Date:         time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		CustomerName: "Rina",
		Total:        4_000_000,
		DownPayment:  1_000_000,
		Remaining:    3_000_000,
		Status:       model.SaleDP,
		Items: []model.SaleItem{{
			Name:      "Gelang",
			Purity:    "24K",
			Weight:    decimal.RequireFromString("3.5"),
			Quantity:  1,
			UnitPrice: 4_000_000,
			LineTotal: 4_000_000,
		}},
		Payments: []model.SalePayment{{Amount: 1_000_000, Method: model.PayDP}},
	}
}

func TestRender_Invoice(t *testing.T) {
	r, err := NewRenderer(config.ShopConfig{Name: "Toko Emas Sinar", Phone: "0812"}, time.UTC)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printed := time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)
	if err := r.Render(&buf, KindInvoice, sampleSale(), printed); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"NOTA MAN-20261017-0001",
		"Toko Emas Sinar",
		"3,50 gr",
		"Rp 4.000.000",
		"Sisa pembayaran",
		"Rp 3.000.000",
		"17/10/2026 14:30",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("invoice is missing %q", want)
		}
	}
}

func TestRender_VoidReceipt(t *testing.T) {
	r, err := NewRenderer(config.ShopConfig{Name: "Toko"}, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	sale := sampleSale()
	sale.Status = model.SaleVoid
	sale.Remaining = 0

	var buf bytes.Buffer
	if err := r.Render(&buf, KindReceipt, sale, time.Now()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), sale.Number) {
		t.Error("receipt is missing the sale number")
	}
	if err := r.Render(&buf, Kind("pdf"), sale, time.Now()); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}

func TestKindValid(t *testing.T) {
	if !KindReceipt.Valid() || !KindInvoice.Valid() || Kind("x").Valid() {
		t.Error("unexpected Kind.Valid result")
	}
}
