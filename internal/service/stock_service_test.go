package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go-jewelry-pos/internal/model"

	"gorm.io/gorm"
)

func TestStockAsOf_OpeningAddedEnding(t *testing.T) {
	f := newFixture(t)
	f.createItem("ACC-01", model.CategoryAccessory, 15000, 10)

	yesterday := f.now.AddDate(0, 0, -1).Format(model.DateLayout)
	if _, err := f.stock.AddStock(f.ctx, &AddStockRequest{ItemCode: "ACC-01", Quantity: 5, Date: yesterday}, testActor); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if _, err := f.stock.RecordUsage(f.ctx, &UsageRequest{ItemCode: "ACC-01", Kind: model.MoveFree, Quantity: 2}, testActor); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	view, err := f.stock.StockAsOf(f.ctx, f.stock.Today())
	if err != nil {
		t.Fatalf("StockAsOf: %v", err)
	}
	// initial stock is booked today, the backdated add yesterday
	line := f.line(view, "ACC-01")
	if line.Opening != 5 || line.Added != 10 || line.Free != 2 || line.Ending != 13 {
		t.Errorf("unexpected line %+v", line)
	}
	if got := f.onHand("ACC-01"); got != 13 {
		t.Errorf("on hand = %d, want 13", got)
	}

	past, err := f.stock.StockAsOf(f.ctx, f.day(yesterday))
	if err != nil {
		t.Fatalf("StockAsOf yesterday: %v", err)
	}
	if l := f.line(past, "ACC-01"); l.Opening != 0 || l.Added != 5 || l.Ending != 5 {
		t.Errorf("unexpected past line %+v", l)
	}
}

func TestStockAsOf_TodayViewIsPatched(t *testing.T) {
	f := newFixture(t)
	f.createItem("LCK-01", model.CategoryLock, 5000, 4)

	if _, err := f.stock.StockAsOf(f.ctx, f.stock.Today()); err != nil {
		t.Fatal(err)
	}
	if _, err := f.stock.LockReplacement(f.ctx, "LCK-01", 1, "clasp broke", testActor); err != nil {
		t.Fatalf("LockReplacement: %v", err)
	}

	var cached model.StockView
	hit, err := f.store.Get(f.ctx, stockViewKey(f.stock.Today()), &cached)
	if err != nil || !hit {
		t.Fatalf("today's view should stay cached, hit=%v err=%v", hit, err)
	}
	if l := f.line(&cached, "LCK-01"); l.LockReplaced != 1 || l.Ending != 3 {
		t.Errorf("cached line not patched: %+v", l)
	}
	if f.publisher.count("stock_update") == 0 {
		t.Error("expected stock_update events")
	}
}

func TestStockAsOf_BackdatedMovementDropsViews(t *testing.T) {
	f := newFixture(t)
	f.createItem("ACC-02", model.CategoryAccessory, 10000, 3)

	lastWeek := f.now.AddDate(0, 0, -7)
	if _, err := f.stock.StockAsOf(f.ctx, f.stock.Today()); err != nil {
		t.Fatal(err)
	}
	if _, err := f.stock.StockAsOf(f.ctx, model.Day(lastWeek, nil)); err != nil {
		t.Fatal(err)
	}

	if _, err := f.stock.AddStock(f.ctx, &AddStockRequest{
		ItemCode: "ACC-02",
		Quantity: 2,
		Date:     lastWeek.Format(model.DateLayout),
	}, testActor); err != nil {
		t.Fatal(err)
	}

	var cached model.StockView
	if hit, _ := f.store.Get(f.ctx, stockViewKey(f.stock.Today()), &cached); hit {
		t.Error("today's view should be dropped after a backdated movement")
	}

	view, err := f.stock.StockAsOf(f.ctx, f.stock.Today())
	if err != nil {
		t.Fatal(err)
	}
	if l := f.line(view, "ACC-02"); l.Opening != 2 || l.Ending != 5 {
		t.Errorf("unexpected line after backdate %+v", l)
	}
}

func TestRecordUsage_Rejections(t *testing.T) {
	f := newFixture(t)
	f.createItem("ACC-03", model.CategoryAccessory, 10000, 1)

	tests := []struct {
		name string
		req  UsageRequest
		want error
	}{
		{"insufficient", UsageRequest{ItemCode: "ACC-03", Kind: model.MoveSale, Quantity: 2}, ErrInsufficientStock},
		{"add is not usage", UsageRequest{ItemCode: "ACC-03", Kind: model.MoveAdd, Quantity: 1}, ErrInvalidMovementKind},
		{"zero quantity", UsageRequest{ItemCode: "ACC-03", Kind: model.MoveFree, Quantity: 0}, ErrInvalidQuantity},
		{"unknown item", UsageRequest{ItemCode: "NOPE", Kind: model.MoveFree, Quantity: 1}, ErrItemNotFound},
		{"future date", UsageRequest{ItemCode: "ACC-03", Kind: model.MoveFree, Quantity: 1, Date: "2026-10-18"}, ErrFutureDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.stock.RecordUsage(f.ctx, &req, testActor)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
	if got := f.onHand("ACC-03"); got != 1 {
		t.Errorf("rejected usage changed stock to %d", got)
	}
}

func TestStockAsOf_FutureDate(t *testing.T) {
	f := newFixture(t)
	if _, err := f.stock.StockAsOf(f.ctx, f.stock.Today().AddDate(0, 0, 1)); !errors.Is(err, ErrFutureDate) {
		t.Errorf("got %v, want ErrFutureDate", err)
	}
}

func TestGenerateSnapshot(t *testing.T) {
	f := newFixture(t)
	f.createItem("BOX-01", model.CategoryBox, 5000, 0)

	endOfSeptember := f.day("2026-09-30")
	if _, err := f.stock.AddStock(f.ctx, &AddStockRequest{ItemCode: "BOX-01", Quantity: 8, Date: "2026-09-29"}, testActor); err != nil {
		t.Fatal(err)
	}

	snaps, err := f.stock.GenerateSnapshot(f.ctx, endOfSeptember)
	if err != nil {
		t.Fatalf("GenerateSnapshot: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Quantity != 8 || snaps[0].Period != model.SnapshotMonthly {
		t.Fatalf("unexpected snapshots %+v", snaps)
	}

	daily, err := f.stock.GenerateSnapshot(f.ctx, f.day("2026-10-05"))
	if err != nil {
		t.Fatal(err)
	}
	if daily[0].Period != model.SnapshotDaily {
		t.Errorf("period = %s, want DAILY", daily[0].Period)
	}

	// a movement before the snapshot date invalidates it
	if _, err := f.stock.AddStock(f.ctx, &AddStockRequest{ItemCode: "BOX-01", Quantity: 1, Date: "2026-09-15"}, testActor); err != nil {
		t.Fatal(err)
	}
	var n int64
	f.db.Model(&model.StockSnapshot{}).Count(&n)
	if n != 0 {
		t.Errorf("%d snapshots survived a backdated movement", n)
	}

	view, err := f.stock.StockAsOf(f.ctx, f.stock.Today())
	if err != nil {
		t.Fatal(err)
	}
	if l := f.line(view, "BOX-01"); l.Ending != 9 {
		t.Errorf("ending = %d, want 9", l.Ending)
	}
}

func TestListMovements_InvalidRange(t *testing.T) {
	f := newFixture(t)
	_, err := f.stock.ListMovements(f.ctx, "", f.day("2026-10-10"), f.day("2026-10-01"))
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("got %v, want ErrInvalidDateRange", err)
	}
}

func TestWrite_RebuildDuringCommitCountsOnce(t *testing.T) {
	f := newFixture(t)
	f.createItem("ACC-01", model.CategoryAccessory, 15000, 10)
	today := f.stock.Today()

	started := make(chan struct{})
	type result struct {
		view *model.StockView
		err  error
	}
	rebuilt := make(chan result, 1)

	err := f.stock.Write(f.ctx, testActor, func(tx *gorm.DB) (*LedgerChange, error) {
		m := &model.StockMovement{ItemCode: "ACC-01", Kind: model.MoveSale, Quantity: 3, Date: today}
		if err := f.stock.Apply(tx, m, testActor); err != nil {
			return nil, err
		}
		// a reader arriving mid-write has to wait for the cached view to follow the commit
		go func() {
			close(started)
			view, err := f.stock.StockAsOf(f.ctx, today)
			rebuilt <- result{view, err}
		}()
		<-started
		time.Sleep(20 * time.Millisecond)
		return &LedgerChange{Movements: []model.StockMovement{*m}}, nil
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	got := <-rebuilt
	if got.err != nil {
		t.Fatal(got.err)
	}
	if l := f.line(got.view, "ACC-01"); l.Sold != 3 || l.Ending != 7 {
		t.Errorf("rebuilt line %+v, want sold 3 ending 7", l)
	}

	var cached model.StockView
	if hit, err := f.store.Get(f.ctx, stockViewKey(today), &cached); err != nil || !hit {
		t.Fatalf("expected cached view, hit=%v err=%v", hit, err)
	}
	if l := f.line(&cached, "ACC-01"); l.Ending != f.onHand("ACC-01") {
		t.Errorf("cached ending %d, on hand %d", l.Ending, f.onHand("ACC-01"))
	}

	snapshots, err := f.stock.GenerateSnapshot(f.ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != 1 || snapshots[0].Quantity != 7 {
		t.Errorf("snapshot %+v, want quantity 7", snapshots)
	}
}

func TestStockAsOf_ConcurrentSalesMatchOnHand(t *testing.T) {
	f := newFixture(t)
	f.createItem("ACC-01", model.CategoryAccessory, 15000, 20)
	today := f.stock.Today()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.sales.RecordAccessorySale(f.ctx, &CreateSaleRequest{
				PaymentMethod: model.PayCash,
				Items:         []SaleLineRequest{{ItemCode: "ACC-01", Quantity: 2}},
			}, testActor)
			if err != nil {
				t.Errorf("sale: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := f.stock.StockAsOf(f.ctx, today); err != nil {
				t.Errorf("StockAsOf: %v", err)
			}
		}()
	}
	wg.Wait()

	view, err := f.stock.StockAsOf(f.ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	l := f.line(view, "ACC-01")
	if l.Sold != 12 || l.Ending != 8 || f.onHand("ACC-01") != 8 {
		t.Errorf("line %+v, on hand %d, want sold 12 ending 8", l, f.onHand("ACC-01"))
	}
}
