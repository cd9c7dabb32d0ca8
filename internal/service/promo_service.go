package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"
	"go-jewelry-pos/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlideSeconds = 8

type PromoSlideRequest struct {
	Title           string     `json:"title" validate:"required,max=255"`
	ImageURL        string     `json:"image_url" validate:"required,url"`
	Caption         string     `json:"caption"`
	DurationSeconds int        `json:"duration_seconds" validate:"gte=0,lte=600"`
	Active          *bool      `json:"active"`
	StartsAt        *time.Time `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
}

type PromoService interface {
	CreateSlide(ctx context.Context, req *PromoSlideRequest, actor Actor) (*model.PromoSlide, error)
	UpdateSlide(ctx context.Context, id uuid.UUID, req *PromoSlideRequest, actor Actor) (*model.PromoSlide, error)
	DeleteSlide(ctx context.Context, id uuid.UUID, actor Actor) error
	ListSlides(ctx context.Context) ([]model.PromoSlide, error)
	Reorder(ctx context.Context, ids []uuid.UUID, actor Actor) ([]model.PromoSlide, error)
	// Screen returns the slides a promo screen should cycle through at now.
	Screen(ctx context.Context, now time.Time) ([]model.PromoSlide, error)
}

type promoService struct {
	repo      repository.PromoRepository
	publisher Publisher
	logger    *zap.Logger
}

func NewPromoService(repo repository.PromoRepository, publisher Publisher, logger *zap.Logger) PromoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &promoService{repo: repo, publisher: publisherOrNop(publisher), logger: logger}
}

func checkSlideWindow(req *PromoSlideRequest) error {
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", ErrInvalidDateRange)
	}
	return nil
}

func (s *promoService) CreateSlide(ctx context.Context, req *PromoSlideRequest, actor Actor) (*model.PromoSlide, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if err := checkSlideWindow(req); err != nil {
		return nil, err
	}

	last, err := s.repo.MaxPosition(ctx)
	if err != nil {
		return nil, err
	}

	slide := &model.PromoSlide{
		Title:           req.Title,
		ImageURL:        req.ImageURL,
		Caption:         req.Caption,
		Position:        last + 1,
		DurationSeconds: req.DurationSeconds,
		Active:          req.Active == nil || *req.Active,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	}
	if slide.DurationSeconds == 0 {
		slide.DurationSeconds = defaultSlideSeconds
	}
	slide.CreatedBy = actor.ID
	slide.UpdatedBy = actor.ID

	if err := s.repo.Create(ctx, slide); err != nil {
		return nil, err
	}
	s.broadcast("slide_created", actor)
	return slide, nil
}

func (s *promoService) UpdateSlide(ctx context.Context, id uuid.UUID, req *PromoSlideRequest, actor Actor) (*model.PromoSlide, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if err := checkSlideWindow(req); err != nil {
		return nil, err
	}

	slide, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	slide.Title = req.Title
	slide.ImageURL = req.ImageURL
	slide.Caption = req.Caption
	if req.DurationSeconds > 0 {
		slide.DurationSeconds = req.DurationSeconds
	}
	if req.Active != nil {
		slide.Active = *req.Active
	}
	slide.StartsAt = req.StartsAt
	slide.EndsAt = req.EndsAt
	slide.UpdatedBy = actor.ID

	if err := s.repo.Update(ctx, slide); err != nil {
		return nil, err
	}
	s.broadcast("slide_updated", actor)
	return slide, nil
}

func (s *promoService) DeleteSlide(ctx context.Context, id uuid.UUID, actor Actor) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, actor.ID); err != nil {
		return err
	}
	s.broadcast("slide_deleted", actor)
	return nil
}

func (s *promoService) ListSlides(ctx context.Context) ([]model.PromoSlide, error) {
	return s.repo.FindAll(ctx)
}

func (s *promoService) Reorder(ctx context.Context, ids []uuid.UUID, actor Actor) ([]model.PromoSlide, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: slide %s listed twice", validator.ErrValidation, id)
		}
		seen[id] = true
	}
	if err := s.repo.Reorder(ctx, ids, actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlideNotFound
		}
		return nil, err
	}
	s.broadcast("slides_reordered", actor)
	return s.repo.FindAll(ctx)
}

func (s *promoService) Screen(ctx context.Context, now time.Time) ([]model.PromoSlide, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]model.PromoSlide, 0, len(all))
	for i := range all {
		if all[i].VisibleAt(now) {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

func (s *promoService) find(ctx context.Context, id uuid.UUID) (*model.PromoSlide, error) {
	slide, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlideNotFound
		}
		return nil, err
	}
	return slide, nil
}

func (s *promoService) broadcast(action string, actor Actor) {
	s.publisher.Publish(ws.Event{
		Type:    "promo_update",
		Action:  action,
		Message: fmt.Sprintf("%s changed the promo screen", actor.Name),
	})
}
