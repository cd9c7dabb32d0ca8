package service

import (
	"errors"
	"testing"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/pkg/validator"
)

func TestCreateItem(t *testing.T) {
	f := newFixture(t)
	item := f.createItem("BOX-01", model.CategoryBox, 25000, 6)

	if item.Stock != 6 {
		t.Errorf("stock = %d, want 6", item.Stock)
	}
	movements, err := f.stock.ListMovements(f.ctx, "BOX-01", f.stock.Today(), f.stock.Today())
	if err != nil {
		t.Fatal(err)
	}
	if len(movements) != 1 || movements[0].Kind != model.MoveAdd || movements[0].Quantity != 6 {
		t.Errorf("expected one opening ADD movement, got %+v", movements)
	}

	_, err = f.items.CreateItem(f.ctx, &CreateItemRequest{Code: "BOX-01", Name: "Again", Category: model.CategoryBox}, testActor)
	if !errors.Is(err, ErrDuplicateItemCode) {
		t.Errorf("duplicate code: got %v", err)
	}

	_, err = f.items.CreateItem(f.ctx, &CreateItemRequest{Code: "X-01", Name: "Bad", Category: "RING"}, testActor)
	if !errors.Is(err, validator.ErrValidation) {
		t.Errorf("unknown category: got %v", err)
	}
}

func TestCreateItem_WithoutInitialStock(t *testing.T) {
	f := newFixture(t)
	f.createItem("JWL-01", model.CategoryJewelry, 0, 0)

	movements, err := f.stock.ListMovements(f.ctx, "JWL-01", f.stock.Today(), f.stock.Today())
	if err != nil {
		t.Fatal(err)
	}
	if len(movements) != 0 {
		t.Errorf("no movement expected, got %d", len(movements))
	}
}

func TestUpdateItem_DropsCachedViews(t *testing.T) {
	f := newFixture(t)
	f.createItem("ACC-01", model.CategoryAccessory, 15000, 2)

	if _, err := f.stock.StockAsOf(f.ctx, f.stock.Today()); err != nil {
		t.Fatal(err)
	}

	updated, err := f.items.UpdateItem(f.ctx, "ACC-01", &UpdateItemRequest{
		Name:     "Gelang Anak",
		Category: model.CategoryAccessory,
		Price:    17500,
		Unit:     "pcs",
	}, testActor)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Price != 17500 || updated.Stock != 2 {
		t.Errorf("unexpected item after update: %+v", updated)
	}

	var cached model.StockView
	hit, err := f.store.Get(f.ctx, stockViewKey(f.stock.Today()), &cached)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("cached view should be dropped after an item update")
	}

	view, err := f.stock.StockAsOf(f.ctx, f.stock.Today())
	if err != nil {
		t.Fatal(err)
	}
	if l := f.line(view, "ACC-01"); l.Name != "Gelang Anak" || l.Ending != 2 {
		t.Errorf("view line not refreshed: %+v", l)
	}
}

func TestGetAndListItems(t *testing.T) {
	f := newFixture(t)
	f.createItem("ACC-01", model.CategoryAccessory, 15000, 1)
	f.createItem("ACC-02", model.CategoryAccessory, 20000, 1)
	f.createItem("LCK-01", model.CategoryLock, 5000, 1)

	if _, err := f.items.GetItem(f.ctx, "NOPE"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("GetItem unknown: got %v", err)
	}
	if _, err := f.items.UpdateItem(f.ctx, "NOPE", &UpdateItemRequest{Name: "x", Category: model.CategoryLock}, testActor); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("UpdateItem unknown: got %v", err)
	}

	all, err := f.items.ListItems(f.ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("ListItems all = %d, want 3", len(all))
	}

	acc, err := f.items.ListItems(f.ctx, model.CategoryAccessory)
	if err != nil {
		t.Fatal(err)
	}
	if len(acc) != 2 || acc[0].Code != "ACC-01" || acc[1].Code != "ACC-02" {
		t.Errorf("ListItems accessory = %+v", acc)
	}
}
