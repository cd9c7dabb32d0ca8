package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/pkg/clients/goldprice"

	"github.com/shopspring/decimal"
)

func TestRoundBuybackPrice(t *testing.T) {
	tests := []struct {
		in, want int64
	}{
		{0, 0},
		{1_230_000, 1_230_000},
		{1_230_001, 1_235_000},
		{1_234_999, 1_235_000},
		{1_235_000, 1_235_000},
		{1_235_001, 1_240_000},
		{1_239_999, 1_240_000},
	}
	for _, tt := range tests {
		if got := RoundBuybackPrice(tt.in); got != tt.want {
			t.Errorf("RoundBuybackPrice(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCalculateBuybackPrice(t *testing.T) {
	got := CalculateBuybackPrice(1_000_000, decimal.RequireFromString("2.345"), decimal.NewFromInt(90))
	if got != 2_110_500 {
		t.Errorf("got %d, want 2110500", got)
	}
	// half a rupiah rounds up
	got = CalculateBuybackPrice(1, decimal.RequireFromString("0.5"), decimal.NewFromInt(100))
	if got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestQuote_UsesLatestPriceAndGradeRate(t *testing.T) {
	f := newFixture(t)

	if _, err := f.buybacks.SetGoldPrice(f.ctx, &SetGoldPriceRequest{
		Date:         "2026-10-15",
		Purity:       "24k",
		PricePerGram: 1_300_000,
	}, testActor); err != nil {
		t.Fatalf("SetGoldPrice: %v", err)
	}

	quote, err := f.buybacks.Quote(f.ctx, &QuoteRequest{
		Purity: "24K",
		Weight: decimal.RequireFromString("2.5"),
		Grade:  model.GradeK2,
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.PriceDate != "2026-10-15" || quote.Date != "2026-10-17" {
		t.Errorf("dates = %s / %s", quote.PriceDate, quote.Date)
	}
	// 1,300,000 × 2.5 × 90% = 2,925,000
	if quote.RawPrice != 2_925_000 || quote.OfferPrice != 2_925_000 {
		t.Errorf("raw %d offer %d", quote.RawPrice, quote.OfferPrice)
	}

	if _, err := f.buybacks.UpdateRate(f.ctx, model.GradeK2, &UpdateRateRequest{Percentage: decimal.RequireFromString("87.5")}, testActor); err != nil {
		t.Fatal(err)
	}
	quote, err = f.buybacks.Quote(f.ctx, &QuoteRequest{Purity: "24K", Weight: decimal.RequireFromString("2.5"), Grade: model.GradeK2})
	if err != nil {
		t.Fatal(err)
	}
	// 2,843,750 rounds up to the next 5,000 step
	if quote.RawPrice != 2_843_750 || quote.OfferPrice != 2_845_000 {
		t.Errorf("raw %d offer %d", quote.RawPrice, quote.OfferPrice)
	}
}

func TestQuote_Rejections(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  QuoteRequest
		want error
	}{
		{"no price", QuoteRequest{Purity: "18K", Weight: decimal.NewFromInt(1), Grade: model.GradeK1}, ErrNoGoldPrice},
		{"bad grade", QuoteRequest{Purity: "18K", Weight: decimal.NewFromInt(1), Grade: "K9"}, ErrInvalidGrade},
		{"zero weight", QuoteRequest{Purity: "18K", Weight: decimal.Zero, Grade: model.GradeK1}, ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := f.buybacks.Quote(f.ctx, &req); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := f.buybacks.UpdateRate(f.ctx, model.GradeK1, &UpdateRateRequest{Percentage: decimal.NewFromInt(101)}, testActor); !errors.Is(err, ErrInvalidPercentage) {
		t.Errorf("rate above 100: got %v", err)
	}
}

func TestRecordBuyback(t *testing.T) {
	f := newFixture(t)
	if _, err := f.buybacks.SetGoldPrice(f.ctx, &SetGoldPriceRequest{Purity: "24K", PricePerGram: 1_000_000}, testActor); err != nil {
		t.Fatal(err)
	}

	req := &RecordBuybackRequest{
		QuoteRequest: QuoteRequest{Purity: "24K", Weight: decimal.RequireFromString("1.234"), Grade: model.GradeK4},
		CustomerName: "Dewi",
	}
	b, err := f.buybacks.Record(f.ctx, req, testActor)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	// 1,000,000 × 1.234 × 80% = 987,200 → 990,000
	if b.Number != "BB-20261017-0001" || b.RawPrice != 987_200 || b.PaidPrice != 990_000 {
		t.Errorf("unexpected buyback %+v", b)
	}

	req.PaidPrice = 980_000
	b2, err := f.buybacks.Record(f.ctx, req, testActor)
	if err != nil {
		t.Fatal(err)
	}
	if b2.Number != "BB-20261017-0002" || b2.PaidPrice != 980_000 || b2.OfferPrice != 990_000 {
		t.Errorf("negotiated buyback %+v", b2)
	}

	list, err := f.buybacks.List(f.ctx, f.stock.Today(), f.stock.Today())
	if err != nil || len(list) != 2 {
		t.Errorf("list = %d, err = %v", len(list), err)
	}
}

func TestRates_FallBackToDefaults(t *testing.T) {
	f := newFixture(t)
	rates, err := f.buybacks.Rates(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rates) != len(model.Grades) {
		t.Fatalf("rates = %d", len(rates))
	}
	if !rates[0].Percentage.Equal(decimal.NewFromInt(95)) {
		t.Errorf("K1 = %s", rates[0].Percentage)
	}
}

type stubFeed struct {
	quotes []goldprice.Quote
	err    error
}

func (s stubFeed) FetchPrices(context.Context) ([]goldprice.Quote, error) {
	return s.quotes, s.err
}

func TestRefreshGoldPrices(t *testing.T) {
	f := newFixture(t)

	svc := NewBuybackService(BuybackServiceDeps{
		BuybackRepo: repository.NewBuybackRepo(f.db),
		PriceRepo:   repository.NewGoldPriceRepo(f.db),
		Feed:        stubFeed{quotes: []goldprice.Quote{{Purity: "24k", PricePerGram: 1_310_000}, {Purity: "18K", PricePerGram: 980_000}}},
		DB:          f.db,
		Clock:       func() time.Time { return f.now },
	})
	n, err := svc.RefreshGoldPrices(f.ctx)
	if err != nil || n != 2 {
		t.Fatalf("n = %d, err = %v", n, err)
	}
	prices, err := svc.GoldPrices(f.ctx, f.stock.Today())
	if err != nil {
		t.Fatal(err)
	}
	if len(prices) != 2 || prices[1].Purity != "24K" || prices[1].Source != "FEED" {
		t.Errorf("unexpected prices %+v", prices)
	}

	if _, err := f.buybacks.RefreshGoldPrices(f.ctx); !errors.Is(err, ErrGoldFeedDisabled) {
		t.Errorf("without feed: got %v", err)
	}
}
