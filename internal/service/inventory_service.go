package service

import (
	"context"
	"errors"
	"fmt"

	"stocktrack/internal/model"
	"stocktrack/internal/repository"
	ws "stocktrack/internal/websocket"

	"gorm.io/gorm"
)

// DTOs
type CreateItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity int     `json:"quantity" binding:"gte=0"`
	Category string  `json:"category" binding:"required"`
	Location *string `json:"location"`
}

type UpdateItemRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity int     `json:"quantity" binding:"gte=0"`
	Category string  `json:"category" binding:"required"`
	Location *string `json:"location"`
}

type ItemResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Category  string  `json:"category"`
	Location  *string `json:"location"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// InventoryService defines the stock item operations available to any
// authenticated user.
type InventoryService interface {
	ListItems(ctx context.Context, page, limit int, search string) ([]ItemResponse, int64, error)
	GetItemByID(ctx context.Context, id uint) (*ItemResponse, error)
	CreateItem(ctx context.Context, actor *model.User, req CreateItemRequest) (*ItemResponse, error)
	UpdateItem(ctx context.Context, actor *model.User, id uint, req UpdateItemRequest) (*ItemResponse, error)
	DeleteItem(ctx context.Context, actor *model.User, id uint) error
}

type inventoryService struct {
	repo     repository.InventoryRepository
	activity ActivityService
	hub      *ws.Hub
}

// NewInventoryService returns a new instance of InventoryService
func NewInventoryService(repo repository.InventoryRepository, activity ActivityService, hub *ws.Hub) InventoryService {
	return &inventoryService{repo: repo, activity: activity, hub: hub}
}

func mapItemToResponse(item *model.InventoryItem) *ItemResponse {
	return &ItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Category:  item.Category,
		Location:  item.Location,
		CreatedAt: item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: item.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *inventoryService) notifyStockChanged(item *model.InventoryItem) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ws.Event{
		Event: ws.EventStockChanged,
		Data: map[string]interface{}{
			"item_id":  item.ID,
			"name":     item.Name,
			"quantity": item.Quantity,
		},
	})
}

func (s *inventoryService) ListItems(ctx context.Context, page, limit int, search string) ([]ItemResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	items, total, err := s.repo.List(ctx, page, limit, search)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, *mapItemToResponse(&item))
	}

	return res, total, nil
}

func (s *inventoryService) GetItemByID(ctx context.Context, id uint) (*ItemResponse, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return mapItemToResponse(item), nil
}

func (s *inventoryService) CreateItem(ctx context.Context, actor *model.User, req CreateItemRequest) (*ItemResponse, error) {
	if req.Name == "" || req.Category == "" {
		return nil, errors.New("name and category are required")
	}
	if req.Quantity < 0 {
		return nil, errors.New("quantity cannot be negative")
	}

	item := &model.InventoryItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Category: req.Category,
		Location: req.Location,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.activity.Record(ctx, actor, model.ActionCreateItem,
		fmt.Sprintf("Created item %q (quantity %d, category %s)", item.Name, item.Quantity, item.Category))
	s.notifyStockChanged(item)

	return mapItemToResponse(item), nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, actor *model.User, id uint, req UpdateItemRequest) (*ItemResponse, error) {
	if req.Name == "" || req.Category == "" {
		return nil, errors.New("name and category are required")
	}
	if req.Quantity < 0 {
		return nil, errors.New("quantity cannot be negative")
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldQuantity := item.Quantity
	item.Name = req.Name
	item.Quantity = req.Quantity
	item.Category = req.Category
	item.Location = req.Location

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	details := fmt.Sprintf("Updated item %q", item.Name)
	if oldQuantity != item.Quantity {
		details = fmt.Sprintf("Updated item %q (quantity %d -> %d)", item.Name, oldQuantity, item.Quantity)
	}
	s.activity.Record(ctx, actor, model.ActionUpdateItem, details)
	s.notifyStockChanged(item)

	return mapItemToResponse(item), nil
}

// DeleteItem removes an item. The defect-log foreign key restricts deletion of
// referenced items; that violation surfaces as a domain conflict and nothing
// is removed.
func (s *inventoryService) DeleteItem(ctx context.Context, actor *model.User, id uint) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return ErrItemReferenced
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.activity.Record(ctx, actor, model.ActionDeleteItem,
		fmt.Sprintf("Deleted item %q (quantity was %d)", item.Name, item.Quantity))
	s.notifyStockChanged(item)

	return nil
}
