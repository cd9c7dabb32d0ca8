package service

import (
	"context"
	"errors"
	"fmt"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
	"go-jewelry-pos/internal/ws"
	"go-jewelry-pos/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateItemRequest struct {
	Code         string             `json:"code" validate:"required,max=50"`
	Name         string             `json:"name" validate:"required"`
	Category     model.ItemCategory `json:"category" validate:"required,oneof=ACCESSORY BOX LOCK JEWELRY"`
	Price        int64              `json:"price" validate:"gte=0"`
	Unit         string             `json:"unit"`
	InitialStock int                `json:"initial_stock" validate:"gte=0"`
}

type UpdateItemRequest struct {
	Name     string             `json:"name" validate:"required"`
	Category model.ItemCategory `json:"category" validate:"required,oneof=ACCESSORY BOX LOCK JEWELRY"`
	Price    int64              `json:"price" validate:"gte=0"`
	Unit     string             `json:"unit"`
}

type ItemService interface {
	CreateItem(ctx context.Context, req *CreateItemRequest, actor Actor) (*model.Item, error)
	UpdateItem(ctx context.Context, code string, req *UpdateItemRequest, actor Actor) (*model.Item, error)
	GetItem(ctx context.Context, code string) (*model.Item, error)
	ListItems(ctx context.Context, category model.ItemCategory) ([]model.Item, error)
}

type itemService struct {
	itemRepo  repository.ItemRepository
	stock     StockService
	publisher Publisher
	logger    *zap.Logger
}

func NewItemService(itemRepo repository.ItemRepository, stock StockService, publisher Publisher, logger *zap.Logger) ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &itemService{
		itemRepo:  itemRepo,
		stock:     stock,
		publisher: publisherOrNop(publisher),
		logger:    logger,
	}
}

func (s *itemService) CreateItem(ctx context.Context, req *CreateItemRequest, actor Actor) (*model.Item, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	existing, err := s.itemRepo.FindByCode(ctx, req.Code)
	if err == nil && existing != nil {
		return nil, ErrDuplicateItemCode
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.Item{
		Code:     req.Code,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Unit:     req.Unit,
	}
	item.CreatedBy = actor.ID
	item.UpdatedBy = actor.ID

	err = s.stock.Write(ctx, actor, func(tx *gorm.DB) (*LedgerChange, error) {
		if err := tx.Create(item).Error; err != nil {
			return nil, err
		}
		// a new line appears in every view
		change := &LedgerChange{DropViews: true}
		if req.InitialStock > 0 {
			opening := model.StockMovement{
				ItemCode: item.Code,
				Kind:     model.MoveAdd,
				Quantity: req.InitialStock,
				Date:     s.stock.Today(),
				Note:     "initial stock",
			}
			if err := s.stock.Apply(tx, &opening, actor); err != nil {
				return nil, err
			}
			item.Stock = req.InitialStock
			change.Movements = append(change.Movements, opening)
		}
		return change, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create item %s: %w", req.Code, err)
	}

	s.publisher.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "item_created",
		Message: fmt.Sprintf("%s created item '%s'", actor.Name, item.Name),
		Data:    map[string]any{"code": item.Code, "name": item.Name, "stock": item.Stock, "user": actor.wsData()},
	})
	return item, nil
}

func (s *itemService) UpdateItem(ctx context.Context, code string, req *UpdateItemRequest, actor Actor) (*model.Item, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	item, err := s.GetItem(ctx, code)
	if err != nil {
		return nil, err
	}

	item.Name = req.Name
	item.Category = req.Category
	item.Price = req.Price
	item.Unit = req.Unit
	item.UpdatedBy = actor.ID
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	// names and categories are copied into cached lines
	if err := s.stock.InvalidateViews(ctx); err != nil {
		s.logger.Warn("failed to drop cached stock views", zap.Error(err))
	}

	s.publisher.Publish(ws.Event{
		Type:    "stock_update",
		Action:  "item_updated",
		Message: fmt.Sprintf("%s updated item '%s'", actor.Name, item.Name),
		Data:    map[string]any{"code": item.Code, "name": item.Name, "price": item.Price, "user": actor.wsData()},
	})
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, code string) (*model.Item, error) {
	item, err := s.itemRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context, category model.ItemCategory) ([]model.Item, error) {
	return s.itemRepo.FindAll(ctx, category)
}
