package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"
	"go-jewelry-pos/pkg/clients/goldprice"
	"go-jewelry-pos/pkg/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	roundingStep = 10000
	roundingMid  = 5000
)

var hundred = decimal.NewFromInt(100)

// CalculateBuybackPrice returns pricePerGram × weight × percentage / 100 rounded half up to a rupiah.
func CalculateBuybackPrice(pricePerGram int64, weight, percentage decimal.Decimal) int64 {
	return decimal.NewFromInt(pricePerGram).
		Mul(weight).
		Mul(percentage).
		Div(hundred).
		Round(0).
		IntPart()
}

// RoundBuybackPrice rounds p up to the next 5,000 or 10,000 step.
// A remainder up to 5,000 lands on the midpoint, anything above on the next 10,000.
func RoundBuybackPrice(p int64) int64 {
	r := p % roundingStep
	switch {
	case r == 0:
		return p
	case r <= roundingMid:
		return p - r + roundingMid
	default:
		return p - r + roundingStep
	}
}

type QuoteRequest struct {
	Purity string          `json:"purity" validate:"required,max=10"`
	Weight decimal.Decimal `json:"weight"`
	Grade  model.Grade     `json:"grade" validate:"required,grade"`
	Date   string          `json:"date"`
}

type BuybackQuote struct {
	Date         string          `json:"date"`
	Purity       string          `json:"purity"`
	Weight       decimal.Decimal `json:"weight"`
	Grade        model.Grade     `json:"grade"`
	PricePerGram int64           `json:"price_per_gram"`
	PriceDate    string          `json:"price_date"`
	Percentage   decimal.Decimal `json:"percentage"`
	RawPrice     int64           `json:"raw_price"`
	OfferPrice   int64           `json:"offer_price"`
}

type RecordBuybackRequest struct {
	QuoteRequest
	CustomerName  string `json:"customer_name" validate:"max=255"`
	CustomerPhone string `json:"customer_phone" validate:"max=30"`
	Description   string `json:"description"`
	// PaidPrice overrides the offer when the customer negotiated, zero pays the offer.
	PaidPrice int64  `json:"paid_price" validate:"gte=0"`
	Note      string `json:"note"`
}

type SetGoldPriceRequest struct {
	Date         string `json:"date"`
	Purity       string `json:"purity" validate:"required,max=10"`
	PricePerGram int64  `json:"price_per_gram" validate:"gt=0"`
}

type UpdateRateRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
}

type BuybackService interface {
	Quote(ctx context.Context, req *QuoteRequest) (*BuybackQuote, error)
	Record(ctx context.Context, req *RecordBuybackRequest, actor Actor) (*model.Buyback, error)
	List(ctx context.Context, from, to time.Time) ([]model.Buyback, error)

	Rates(ctx context.Context) ([]model.BuybackRate, error)
	UpdateRate(ctx context.Context, grade model.Grade, req *UpdateRateRequest, actor Actor) (*model.BuybackRate, error)

	SetGoldPrice(ctx context.Context, req *SetGoldPriceRequest, actor Actor) (*model.GoldPrice, error)
	GoldPrices(ctx context.Context, day time.Time) ([]model.GoldPrice, error)
	GoldPriceHistory(ctx context.Context, purity string, from, to time.Time) ([]model.GoldPrice, error)
	// RefreshGoldPrices pulls today's prices from the feed and stores them.
	RefreshGoldPrices(ctx context.Context) (int, error)
	Today() time.Time
}

type buybackService struct {
	buybackRepo repository.BuybackRepository
	priceRepo   repository.GoldPriceRepository
	feed        goldprice.Client
	db          *gorm.DB
	loc         *time.Location
	now         Clock
	publisher   Publisher
	logger      *zap.Logger
}

type BuybackServiceDeps struct {
	BuybackRepo repository.BuybackRepository
	PriceRepo   repository.GoldPriceRepository
	// Feed is optional.
	Feed      goldprice.Client
	DB        *gorm.DB
	Location  *time.Location
	Clock     Clock
	Publisher Publisher
	Logger    *zap.Logger
}

func NewBuybackService(deps BuybackServiceDeps) BuybackService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &buybackService{
		buybackRepo: deps.BuybackRepo,
		priceRepo:   deps.PriceRepo,
		feed:        deps.Feed,
		db:          deps.DB,
		loc:         loc,
		now:         clockOrNow(deps.Clock),
		publisher:   publisherOrNop(deps.Publisher),
		logger:      logger,
	}
}

func (s *buybackService) Today() time.Time {
	return model.Day(s.now(), s.loc)
}

func (s *buybackService) Quote(ctx context.Context, req *QuoteRequest) (*BuybackQuote, error) {
	if !req.Grade.Valid() {
		return nil, ErrInvalidGrade
	}
	if !req.Weight.IsPositive() {
		return nil, ErrInvalidWeight
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	day, err := resolveDay(req.Date, s.Today())
	if err != nil {
		return nil, err
	}
	purity := strings.ToUpper(strings.TrimSpace(req.Purity))

	price, err := s.priceRepo.Latest(ctx, purity, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w %s on %s", ErrNoGoldPrice, purity, day.Format(model.DateLayout))
		}
		return nil, err
	}

	rate, err := s.rate(ctx, req.Grade)
	if err != nil {
		return nil, err
	}

	raw := CalculateBuybackPrice(price.PricePerGram, req.Weight, rate.Percentage)
	return &BuybackQuote{
		Date:         day.Format(model.DateLayout),
		Purity:       purity,
		Weight:       req.Weight,
		Grade:        req.Grade,
		PricePerGram: price.PricePerGram,
		PriceDate:    truncateDay(price.Date).Format(model.DateLayout),
		Percentage:   rate.Percentage,
		RawPrice:     raw,
		OfferPrice:   RoundBuybackPrice(raw),
	}, nil
}

func (s *buybackService) rate(ctx context.Context, grade model.Grade) (*model.BuybackRate, error) {
	rate, err := s.buybackRepo.FindRate(ctx, grade)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	for _, def := range model.DefaultBuybackRates {
		if def.Grade == grade {
			d := def
			return &d, nil
		}
	}
	return nil, ErrInvalidGrade
}

func (s *buybackService) Record(ctx context.Context, req *RecordBuybackRequest, actor Actor) (*model.Buyback, error) {
	quote, err := s.Quote(ctx, &req.QuoteRequest)
	if err != nil {
		return nil, err
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	day, _ := model.ParseDay(quote.Date)

	b := &model.Buyback{
		Date:          day,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Description:   req.Description,
		Purity:        quote.Purity,
		Weight:        quote.Weight,
		Grade:         quote.Grade,
		PricePerGram:  quote.PricePerGram,
		Percentage:    quote.Percentage,
		RawPrice:      quote.RawPrice,
		OfferPrice:    quote.OfferPrice,
		PaidPrice:     quote.OfferPrice,
		Note:          req.Note,
	}
	if req.PaidPrice > 0 {
		b.PaidPrice = req.PaidPrice
	}
	b.CreatedBy = actor.ID
	b.UpdatedBy = actor.ID

	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			count, err := s.buybackRepo.CountForDay(tx, day)
			if err != nil {
				return err
			}
			b.Number = fmt.Sprintf("BB-%s-%04d", day.Format("20060102"), count+1)
			return s.buybackRepo.Create(tx, b)
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == numberAttempts {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ws.Event{
		Type:    "buyback_update",
		Action:  "buyback_recorded",
		Message: fmt.Sprintf("%s bought back %s %s", actor.Name, b.Weight.String()+"g", b.Purity),
		Data:    map[string]any{"number": b.Number, "paid_price": b.PaidPrice, "user": actor.wsData()},
	})
	s.logger.Info("buyback recorded",
		zap.String("number", b.Number),
		zap.String("grade", string(b.Grade)),
		zap.Int64("offer", b.OfferPrice),
		zap.Int64("paid", b.PaidPrice))
	return b, nil
}

func (s *buybackService) List(ctx context.Context, from, to time.Time) ([]model.Buyback, error) {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	return s.buybackRepo.List(ctx, from, to)
}

// Rates returns every grade, falling back to the defaults for grades never saved.
func (s *buybackService) Rates(ctx context.Context) ([]model.BuybackRate, error) {
	stored, err := s.buybackRepo.FindRates(ctx)
	if err != nil {
		return nil, err
	}
	byGrade := make(map[model.Grade]model.BuybackRate, len(stored))
	for _, r := range stored {
		byGrade[r.Grade] = r
	}
	rates := make([]model.BuybackRate, 0, len(model.Grades))
	for _, def := range model.DefaultBuybackRates {
		if r, ok := byGrade[def.Grade]; ok {
			rates = append(rates, r)
			continue
		}
		rates = append(rates, def)
	}
	return rates, nil
}

func (s *buybackService) UpdateRate(ctx context.Context, grade model.Grade, req *UpdateRateRequest, actor Actor) (*model.BuybackRate, error) {
	if !grade.Valid() {
		return nil, ErrInvalidGrade
	}
	if !req.Percentage.IsPositive() || req.Percentage.GreaterThan(hundred) {
		return nil, ErrInvalidPercentage
	}

	rate := &model.BuybackRate{
		Grade:      grade,
		Percentage: req.Percentage.Round(2),
		UpdatedAt:  s.now(),
		UpdatedBy:  actor.ID,
	}
	if err := s.buybackRepo.SaveRate(ctx, rate); err != nil {
		return nil, err
	}

	s.publisher.Publish(ws.Event{
		Type:    "buyback_update",
		Action:  "rate_updated",
		Message: fmt.Sprintf("%s set %s to %s%%", actor.Name, grade, rate.Percentage.String()),
		Data:    map[string]any{"grade": grade, "percentage": rate.Percentage, "user": actor.wsData()},
	})
	return rate, nil
}

func (s *buybackService) SetGoldPrice(ctx context.Context, req *SetGoldPriceRequest, actor Actor) (*model.GoldPrice, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	day, err := resolveDay(req.Date, s.Today())
	if err != nil {
		return nil, err
	}
	price := &model.GoldPrice{
		Date:         day,
		Purity:       strings.ToUpper(strings.TrimSpace(req.Purity)),
		PricePerGram: req.PricePerGram,
		Source:       "MANUAL",
	}
	if err := s.priceRepo.Upsert(ctx, price); err != nil {
		return nil, err
	}
	s.publishPrice(price, actor.Name)
	return price, nil
}

func (s *buybackService) GoldPrices(ctx context.Context, day time.Time) ([]model.GoldPrice, error) {
	return s.priceRepo.ListForDay(ctx, truncateDay(day))
}

func (s *buybackService) GoldPriceHistory(ctx context.Context, purity string, from, to time.Time) ([]model.GoldPrice, error) {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	return s.priceRepo.History(ctx, strings.ToUpper(purity), from, to)
}

func (s *buybackService) RefreshGoldPrices(ctx context.Context) (int, error) {
	if s.feed == nil {
		return 0, ErrGoldFeedDisabled
	}
	quotes, err := s.feed.FetchPrices(ctx)
	if err != nil {
		return 0, err
	}

	day := s.Today()
	saved := 0
	for _, q := range quotes {
		price := &model.GoldPrice{
			Date:         day,
			Purity:       strings.ToUpper(strings.TrimSpace(q.Purity)),
			PricePerGram: q.PricePerGram,
			Source:       "FEED",
		}
		if err := s.priceRepo.Upsert(ctx, price); err != nil {
			return saved, fmt.Errorf("failed to save %s price: %w", price.Purity, err)
		}
		saved++
		s.publishPrice(price, "feed")
	}
	s.logger.Info("gold prices refreshed", zap.Int("count", saved), zap.String("date", day.Format(model.DateLayout)))
	return saved, nil
}

func (s *buybackService) publishPrice(price *model.GoldPrice, by string) {
	s.publisher.Publish(ws.Event{
		Type:    "gold_price_update",
		Action:  "price_set",
		Message: fmt.Sprintf("%s set %s to %d/g", by, price.Purity, price.PricePerGram),
		Data: map[string]any{
			"date":           price.Date.Format(model.DateLayout),
			"purity":         price.Purity,
			"price_per_gram": price.PricePerGram,
		},
	})
}
