package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/receipt"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"
	"go-jewelry-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// numberAttempts bounds retries when two counters take the same receipt number.
const numberAttempts = 3

type SaleLineRequest struct {
	ItemCode  string          `json:"item_code"`
	Name      string          `json:"name"`
	Purity    string          `json:"purity"`
	Weight    decimal.Decimal `json:"weight"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice int64           `json:"unit_price" validate:"gte=0"`
	Free      bool            `json:"free"`
}

type CreateSaleRequest struct {
	Date          string              `json:"date"`
	CustomerName  string              `json:"customer_name" validate:"max=255"`
	CustomerPhone string              `json:"customer_phone" validate:"max=30"`
	PaymentMethod model.PaymentMethod `json:"payment_method" validate:"required,oneof=CASH TRANSFER QRIS DP"`
	DownPayment   int64               `json:"down_payment" validate:"gte=0"`
	SalesPerson   string              `json:"sales_person"`
	Note          string              `json:"note"`
	Items         []SaleLineRequest   `json:"items" validate:"required,min=1,dive"`
}

type SettlePaymentRequest struct {
	Amount int64               `json:"amount" validate:"gt=0"`
	Method model.PaymentMethod `json:"method" validate:"required,oneof=CASH TRANSFER QRIS"`
}

type SaleService interface {
	RecordAccessorySale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error)
	RecordBoxSale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error)
	RecordManualSale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error)
	SettleDownPayment(ctx context.Context, saleID uuid.UUID, req *SettlePaymentRequest, actor Actor) (*model.Sale, error)
	VoidSale(ctx context.Context, saleID uuid.UUID, reason string, actor Actor) (*model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, error)
	OutstandingDownPayments(ctx context.Context) ([]model.Sale, error)
	RenderDocument(ctx context.Context, id uuid.UUID, kind receipt.Kind) ([]byte, error)
}

type saleService struct {
	saleRepo  repository.SaleRepository
	itemRepo  repository.ItemRepository
	stock     StockService
	renderer  *receipt.Renderer
	db        *gorm.DB
	now       Clock
	publisher Publisher
	logger    *zap.Logger
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	itemRepo repository.ItemRepository,
	stock StockService,
	renderer *receipt.Renderer,
	db *gorm.DB,
	clock Clock,
	publisher Publisher,
	logger *zap.Logger,
) SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &saleService{
		saleRepo:  saleRepo,
		itemRepo:  itemRepo,
		stock:     stock,
		renderer:  renderer,
		db:        db,
		now:       clockOrNow(clock),
		publisher: publisherOrNop(publisher),
		logger:    logger,
	}
}

func (s *saleService) RecordAccessorySale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error) {
	return s.record(ctx, model.SaleAccessory, req, actor)
}

func (s *saleService) RecordBoxSale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error) {
	return s.record(ctx, model.SaleBox, req, actor)
}

func (s *saleService) RecordManualSale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error) {
	return s.record(ctx, model.SaleManual, req, actor)
}

// categoryAllowed reports whether a catalog item may appear on a sale of saleType.
func categoryAllowed(saleType model.SaleType, category model.ItemCategory) bool {
	switch saleType {
	case model.SaleAccessory:
		return category == model.CategoryAccessory || category == model.CategoryLock
	case model.SaleBox:
		return category == model.CategoryBox
	default:
		return true
	}
}

func (s *saleService) record(ctx context.Context, saleType model.SaleType, req *CreateSaleRequest, actor Actor) (*model.Sale, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptySale
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	day, err := resolveDay(req.Date, s.stock.Today())
	if err != nil {
		return nil, err
	}

	var sale *model.Sale
	for attempt := 1; ; attempt++ {
		sale, err = s.createSale(ctx, saleType, day, req, actor)
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == numberAttempts {
			break
		}
		s.logger.Debug("sale number taken, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	s.publishSale("sale_created", sale, actor)
	s.logger.Info("sale recorded",
		zap.String("number", sale.Number),
		zap.String("type", string(sale.Type)),
		zap.Int64("total", sale.Total),
		zap.String("status", string(sale.Status)))
	return sale, nil
}

func (s *saleService) createSale(ctx context.Context, saleType model.SaleType, day time.Time, req *CreateSaleRequest, actor Actor) (*model.Sale, error) {
	sale := &model.Sale{
		Type:          saleType,
		Date:          day,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		PaymentMethod: req.PaymentMethod,
		SalesPerson:   req.SalesPerson,
		Note:          req.Note,
	}
	sale.ID = uuid.New()
	sale.CreatedBy = actor.ID
	sale.UpdatedBy = actor.ID

	err := s.stock.Write(ctx, actor, func(tx *gorm.DB) (*LedgerChange, error) {
		if err := s.stock.EnsureOpen(tx, day); err != nil {
			return nil, err
		}

		var movements []model.StockMovement
		sale.Items = sale.Items[:0]
		sale.Total = 0

		for i, line := range req.Items {
			item, err := s.buildLine(tx, saleType, line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			sale.Items = append(sale.Items, *item)
			sale.Total += item.LineTotal

			if item.ItemCode != "" {
				kind := model.MoveSale
				if item.Free {
					kind = model.MoveFree
				}
				movements = append(movements, model.StockMovement{
					ItemCode: item.ItemCode,
					Kind:     kind,
					Quantity: item.Quantity,
					Date:     day,
				})
			}
		}

		if err := applyPaymentTerms(sale, req.DownPayment, s.now()); err != nil {
			return nil, err
		}

		count, err := s.saleRepo.CountForDay(tx, saleType, day)
		if err != nil {
			return nil, err
		}
		sale.Number = fmt.Sprintf("%s-%s-%04d", saleType.NumberPrefix(), day.Format("20060102"), count+1)

		if sale.DownPayment > 0 {
			sale.Payments = []model.SalePayment{{
				Amount:     sale.DownPayment,
				Method:     sale.PaymentMethod,
				PaidAt:     s.now(),
				ReceivedBy: actor.Name,
			}}
		}
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return nil, err
		}

		for i := range movements {
			movements[i].SaleID = &sale.ID
			movements[i].Note = sale.Number
			if err := s.stock.Apply(tx, &movements[i], actor); err != nil {
				return nil, err
			}
		}
		return &LedgerChange{Movements: movements}, nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// buildLine resolves a request line against the catalog and prices it.
func (s *saleService) buildLine(tx *gorm.DB, saleType model.SaleType, line SaleLineRequest) (*model.SaleItem, error) {
	out := &model.SaleItem{
		ItemCode:  strings.TrimSpace(line.ItemCode),
		Name:      strings.TrimSpace(line.Name),
		Purity:    line.Purity,
		Weight:    line.Weight,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		Free:      line.Free,
	}
	if out.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if out.Weight.IsNegative() {
		return nil, ErrInvalidWeight
	}

	if saleType != model.SaleManual && out.ItemCode == "" {
		return nil, fmt.Errorf("%w: item code is required", ErrItemNotFound)
	}

	if out.ItemCode != "" {
		item, err := s.itemRepo.LockByCode(tx, out.ItemCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrItemNotFound, out.ItemCode)
			}
			return nil, err
		}
		if !categoryAllowed(saleType, item.Category) {
			return nil, fmt.Errorf("%w: %s is %s", ErrCategoryMismatch, item.Code, item.Category)
		}
		if out.Name == "" {
			out.Name = item.Name
		}
		if out.UnitPrice == 0 && !out.Free {
			out.UnitPrice = item.Price
		}
	}

	if out.Name == "" {
		return nil, fmt.Errorf("%w: Field 'Name' failed on tag 'required'", validator.ErrValidation)
	}

	if out.Free {
		out.UnitPrice = 0
	}
	out.LineTotal = int64(out.Quantity) * out.UnitPrice
	return out, nil
}

// applyPaymentTerms fills DownPayment, Remaining and Status from the payment method.
func applyPaymentTerms(sale *model.Sale, downPayment int64, now time.Time) error {
	if sale.PaymentMethod == model.PayDP {
		if downPayment <= 0 || downPayment >= sale.Total {
			return ErrInvalidDownPayment
		}
		sale.DownPayment = downPayment
		sale.Remaining = sale.Total - downPayment
		sale.Status = model.SaleDP
		sale.PaidAt = nil
		return nil
	}
	sale.DownPayment = sale.Total
	sale.Remaining = 0
	sale.Status = model.SalePaid
	sale.PaidAt = &now
	return nil
}

func (s *saleService) SettleDownPayment(ctx context.Context, saleID uuid.UUID, req *SettlePaymentRequest, actor Actor) (*model.Sale, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidPayment
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.lockSale(tx, saleID)
		if err != nil {
			return err
		}
		switch sale.Status {
		case model.SaleVoid:
			return ErrSaleVoided
		case model.SalePaid:
			return ErrSaleAlreadyPaid
		}
		if req.Amount > sale.Remaining {
			return fmt.Errorf("%w: remaining %d", ErrOverpayment, sale.Remaining)
		}

		now := s.now()
		sale.Remaining -= req.Amount
		if sale.Remaining == 0 {
			sale.Status = model.SalePaid
			sale.PaidAt = &now
		}
		sale.UpdatedBy = actor.ID
		if err := s.saleRepo.UpdateStatus(tx, sale); err != nil {
			return err
		}
		return s.saleRepo.AddPayment(tx, &model.SalePayment{
			SaleID:     sale.ID,
			Amount:     req.Amount,
			Method:     req.Method,
			PaidAt:     now,
			ReceivedBy: actor.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.publishSale("sale_settled", sale, actor)
	return sale, nil
}

func (s *saleService) VoidSale(ctx context.Context, saleID uuid.UUID, reason string, actor Actor) (*model.Sale, error) {
	err := s.stock.Write(ctx, actor, func(tx *gorm.DB) (*LedgerChange, error) {
		sale, err := s.lockSale(tx, saleID)
		if err != nil {
			return nil, err
		}
		if sale.Status == model.SaleVoid {
			return nil, ErrSaleVoided
		}

		reversed, err := s.stock.ReverseSale(tx, sale.ID, actor)
		if err != nil {
			return nil, err
		}

		sale.Status = model.SaleVoid
		sale.Remaining = 0
		if reason = strings.TrimSpace(reason); reason != "" {
			sale.Note = strings.TrimSpace(sale.Note + "\nVOID: " + reason)
		}
		sale.UpdatedBy = actor.ID
		if err := s.saleRepo.UpdateStatus(tx, sale); err != nil {
			return nil, err
		}
		// a void can reach into any day, so no cached view survives it
		return &LedgerChange{Movements: reversed, Reversed: true, DropViews: len(reversed) > 0}, nil
	})
	if err != nil {
		return nil, err
	}

	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.publishSale("sale_voided", sale, actor)
	s.logger.Info("sale voided", zap.String("number", sale.Number), zap.String("by", actor.ID))
	return sale, nil
}

func (s *saleService) lockSale(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.LockByID(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, ErrInvalidDateRange
	}
	return s.saleRepo.List(ctx, filter)
}

func (s *saleService) OutstandingDownPayments(ctx context.Context) ([]model.Sale, error) {
	return s.saleRepo.List(ctx, repository.SaleFilter{Status: model.SaleDP})
}

func (s *saleService) RenderDocument(ctx context.Context, id uuid.UUID, kind receipt.Kind) ([]byte, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, kind, sale, s.now()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *saleService) publishSale(action string, sale *model.Sale, actor Actor) {
	s.publisher.Publish(ws.Event{
		Type:    "sale_update",
		Action:  action,
		Message: fmt.Sprintf("%s %s %s", actor.Name, strings.TrimPrefix(action, "sale_"), sale.Number),
		Data: map[string]any{
			"id":        sale.ID,
			"number":    sale.Number,
			"type":      sale.Type,
			"total":     sale.Total,
			"remaining": sale.Remaining,
			"status":    sale.Status,
			"user":      actor.wsData(),
		},
	})
}
