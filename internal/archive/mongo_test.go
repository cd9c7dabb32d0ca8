package archive

import (
	"testing"
	"time"

	"go-jewelry-pos/internal/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNewSaleDoc(t *testing.T) {
	paidAt := time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC)
	sale := model.Sale{
		Number:        "MAN-20261002-0001",
		Type:          model.SaleManual,
		Date:          time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		PaymentMethod: model.PayDP,
		Total:         4_000_000,
		DownPayment:   1_000_000,
		Remaining:     3_000_000,
		Status:        model.SaleDP,
		Items: []model.SaleItem{{
			Name:     "Cincin",
			Purity:   "18K",
			Weight:   decimal.RequireFromString("2.125"),
			Quantity: 1,
		}},
		Payments: []model.SalePayment{{Amount: 1_000_000, Method: model.PayDP, PaidAt: paidAt}},
	}

	doc := newSaleDoc(sale)
	if doc.Date != "2026-10-02" || doc.Status != "DP" || doc.Items[0].Weight != "2.125" {
		t.Errorf("unexpected doc %+v", doc)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var back struct {
		Number    string   `bson:"number"`
		Remaining int64    `bson:"remaining"`
		Items     []bson.M `bson:"items"`
	}
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.Number != "MAN-20261002-0001" || back.Remaining != 3_000_000 || len(back.Items) != 1 {
		t.Fatalf("bson doc = %+v", back)
	}
	if _, has := back.Items[0]["item_code"]; has {
		t.Error("empty item code should be omitted")
	}
}

func TestNewBuybackDoc(t *testing.T) {
	doc := newBuybackDoc(model.Buyback{
		Number:     "BB-20261002-0001",
		Date:       time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		Weight:     decimal.RequireFromString("1.5"),
		Grade:      model.GradeK3,
		Percentage: decimal.RequireFromString("85.5"),
	})
	if doc.Grade != "K3" || doc.Percentage != "85.5" || doc.Weight != "1.5" {
		t.Errorf("unexpected doc %+v", doc)
	}
}
