package service

import (
	"errors"
	"testing"
	"time"

	"go-jewelry-pos/pkg/validator"

	"github.com/google/uuid"
)

func TestPromoSlides_ScreenAndReorder(t *testing.T) {
	f := newFixture(t)
	inactive := false
	ended := f.now.Add(-time.Hour)
	started := f.now.Add(-48 * time.Hour)

	a, err := f.promos.CreateSlide(f.ctx, &PromoSlideRequest{Title: "Emas 24K", ImageURL: "https://cdn.example.com/a.jpg"}, testActor)
	if err != nil {
		t.Fatalf("CreateSlide: %v", err)
	}
	b, err := f.promos.CreateSlide(f.ctx, &PromoSlideRequest{Title: "Diskon", ImageURL: "https://cdn.example.com/b.jpg", Active: &inactive}, testActor)
	if err != nil {
		t.Fatal(err)
	}
	c, err := f.promos.CreateSlide(f.ctx, &PromoSlideRequest{
		Title:           "Lebaran",
		ImageURL:        "https://cdn.example.com/c.jpg",
		DurationSeconds: 15,
		StartsAt:        &started,
		EndsAt:          &ended,
	}, testActor)
	if err != nil {
		t.Fatal(err)
	}
	if a.Position != 0 || b.Position != 1 || c.Position != 2 || a.DurationSeconds != defaultSlideSeconds {
		t.Errorf("positions %d %d %d, duration %d", a.Position, b.Position, c.Position, a.DurationSeconds)
	}

	screen, err := f.promos.Screen(f.ctx, f.now)
	if err != nil {
		t.Fatal(err)
	}
	if len(screen) != 1 || screen[0].ID != a.ID {
		t.Errorf("screen shows %d slides", len(screen))
	}

	slides, err := f.promos.Reorder(f.ctx, []uuid.UUID{c.ID, a.ID, b.ID}, testActor)
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if slides[0].ID != c.ID || slides[2].ID != b.ID {
		t.Errorf("order after reorder: %s %s %s", slides[0].Title, slides[1].Title, slides[2].Title)
	}

	if _, err := f.promos.Reorder(f.ctx, []uuid.UUID{a.ID, a.ID}, testActor); !errors.Is(err, validator.ErrValidation) {
		t.Errorf("duplicate ids: got %v", err)
	}
	if _, err := f.promos.Reorder(f.ctx, []uuid.UUID{uuid.New()}, testActor); !errors.Is(err, ErrSlideNotFound) {
		t.Errorf("unknown id: got %v", err)
	}

	if err := f.promos.DeleteSlide(f.ctx, b.ID, testActor); err != nil {
		t.Fatal(err)
	}
	if err := f.promos.DeleteSlide(f.ctx, b.ID, testActor); !errors.Is(err, ErrSlideNotFound) {
		t.Errorf("second delete: got %v", err)
	}
	if f.publisher.count("promo_update") == 0 {
		t.Error("expected promo_update events")
	}
}

func TestPromoSlides_Validation(t *testing.T) {
	f := newFixture(t)
	start := f.now
	end := f.now.Add(-time.Minute)

	if _, err := f.promos.CreateSlide(f.ctx, &PromoSlideRequest{Title: "x", ImageURL: "not a url"}, testActor); !errors.Is(err, validator.ErrValidation) {
		t.Errorf("bad url: got %v", err)
	}
	if _, err := f.promos.CreateSlide(f.ctx, &PromoSlideRequest{Title: "x", ImageURL: "https://a.b/c.png", StartsAt: &start, EndsAt: &end}, testActor); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("reversed window: got %v", err)
	}
}
