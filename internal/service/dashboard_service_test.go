package service

import (
	"testing"

	"go-jewelry-pos/internal/model"
)

func TestDailySummary(t *testing.T) {
	f := newFixture(t)
	f.createItem("ACC-01", model.CategoryAccessory, 20000, 10)
	f.createItem("BOX-01", model.CategoryBox, 5000, 10)

	mustSale := func(record func() (*model.Sale, error)) *model.Sale {
		t.Helper()
		s, err := record()
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	mustSale(func() (*model.Sale, error) {
		return f.sales.RecordAccessorySale(f.ctx, &CreateSaleRequest{
			PaymentMethod: model.PayCash,
			Items:         []SaleLineRequest{{ItemCode: "ACC-01", Quantity: 2}},
		}, testActor)
	})
	mustSale(func() (*model.Sale, error) {
		return f.sales.RecordBoxSale(f.ctx, &CreateSaleRequest{
			PaymentMethod: model.PayDP,
			DownPayment:   10000,
			Items:         []SaleLineRequest{{ItemCode: "BOX-01", Quantity: 4}},
		}, testActor)
	})
	voided := mustSale(func() (*model.Sale, error) {
		return f.sales.RecordBoxSale(f.ctx, &CreateSaleRequest{
			PaymentMethod: model.PayQRIS,
			Items:         []SaleLineRequest{{ItemCode: "BOX-01", Quantity: 1}},
		}, testActor)
	})
	if _, err := f.sales.VoidSale(f.ctx, voided.ID, "", testActor); err != nil {
		t.Fatal(err)
	}

	summary, err := f.dash.GetDailySummary(f.ctx, f.dash.Today())
	if err != nil {
		t.Fatalf("GetDailySummary: %v", err)
	}
	if summary.SalesCount != 2 || summary.SalesTotal != 60000 {
		t.Errorf("count %d total %d", summary.SalesCount, summary.SalesTotal)
	}
	if summary.OutstandingDP.Count != 1 || summary.OutstandingDP.Total != 10000 {
		t.Errorf("outstanding %+v", summary.OutstandingDP)
	}
	if len(summary.ByPaymentMethod) != 2 {
		t.Errorf("by payment method %+v", summary.ByPaymentMethod)
	}

	points, err := f.dash.GetStockMovement(f.ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 || points[0].Incoming != 20 || points[0].Outgoing != 6 {
		t.Errorf("chart %+v", points)
	}
}
