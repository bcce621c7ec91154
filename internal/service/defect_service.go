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
type CreateDefectRequest struct {
	InventoryItemID   uint    `json:"inventory_item_id" binding:"required"`
	QuantityDefective int     `json:"quantity_defective" binding:"required,gt=0"`
	Reason            string  `json:"reason" binding:"required"`
	Notes             *string `json:"notes"`
}

type UpdateDefectRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

type DefectResponse struct {
	ID                uint    `json:"id"`
	InventoryItemID   *uint   `json:"inventory_item_id"`
	ItemName          string  `json:"item_name"`
	QuantityDefective int     `json:"quantity_defective"`
	Reason            string  `json:"reason"`
	Status            string  `json:"status"`
	Notes             *string `json:"notes"`
	LoggedAt          string  `json:"logged_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// DefectService defines the defective-item log operations available to any
// authenticated user.
type DefectService interface {
	ListDefects(ctx context.Context, page, limit int) ([]DefectResponse, int64, error)
	GetDefectByID(ctx context.Context, id uint) (*DefectResponse, error)
	CreateDefect(ctx context.Context, actor *model.User, req CreateDefectRequest) (*DefectResponse, error)
	UpdateDefect(ctx context.Context, actor *model.User, id uint, req UpdateDefectRequest) (*DefectResponse, error)
	DeleteDefect(ctx context.Context, actor *model.User, id uint) error
}

type defectService struct {
	repo      repository.DefectRepository
	items     repository.InventoryRepository
	activity  ActivityService
	txManager repository.TransactionManager
	hub       *ws.Hub
}

// NewDefectService returns a new instance of DefectService
func NewDefectService(
	repo repository.DefectRepository,
	items repository.InventoryRepository,
	activity ActivityService,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) DefectService {
	return &defectService{repo: repo, items: items, activity: activity, txManager: txManager, hub: hub}
}

func mapDefectToResponse(entry *model.DefectiveItemLog) *DefectResponse {
	return &DefectResponse{
		ID:                entry.ID,
		InventoryItemID:   entry.InventoryItemID,
		ItemName:          entry.ItemName,
		QuantityDefective: entry.QuantityDefective,
		Reason:            entry.Reason,
		Status:            entry.Status,
		Notes:             entry.Notes,
		LoggedAt:          entry.LoggedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:         entry.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *defectService) notify(event string, entry *model.DefectiveItemLog) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(ws.Event{
		Event: event,
		Data: map[string]interface{}{
			"defect_id": entry.ID,
			"item_name": entry.ItemName,
			"status":    entry.Status,
		},
	})
}

func (s *defectService) ListDefects(ctx context.Context, page, limit int) ([]DefectResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	entries, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]DefectResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, *mapDefectToResponse(&e))
	}

	return res, total, nil
}

func (s *defectService) GetDefectByID(ctx context.Context, id uint) (*DefectResponse, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return mapDefectToResponse(entry), nil
}

// CreateDefect logs defective units against an inventory item, capturing the
// item's current name as a snapshot. The quantity is validated before any
// database round trip.
func (s *defectService) CreateDefect(ctx context.Context, actor *model.User, req CreateDefectRequest) (*DefectResponse, error) {
	if req.QuantityDefective < 1 {
		return nil, errors.New("defective quantity must be at least 1")
	}
	if req.Reason == "" {
		return nil, errors.New("reason is required")
	}

	entry := &model.DefectiveItemLog{
		QuantityDefective: req.QuantityDefective,
		Reason:            req.Reason,
		Status:            model.DefectStatusPendingReview,
		Notes:             req.Notes,
	}

	// Snapshot the item name and insert in one transaction so a concurrent
	// rename cannot slip between the read and the write.
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.items.GetByID(txCtx, req.InventoryItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		itemID := item.ID
		entry.InventoryItemID = &itemID
		entry.ItemName = item.Name
		return s.repo.Create(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor, model.ActionCreateDefect,
		fmt.Sprintf("Logged %d defective unit(s) of %q: %s", entry.QuantityDefective, entry.ItemName, entry.Reason))
	s.notify(ws.EventDefectLogged, entry)

	return mapDefectToResponse(entry), nil
}

// UpdateDefect changes status and notes. Any status may move to any other;
// the enum has no enforced ordering.
func (s *defectService) UpdateDefect(ctx context.Context, actor *model.User, id uint, req UpdateDefectRequest) (*DefectResponse, error) {
	if !model.ValidDefectStatus(req.Status) {
		return nil, errors.New("unknown defect status")
	}

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldStatus := entry.Status
	entry.Status = req.Status
	if req.Notes != nil {
		entry.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update defect log: %w", err)
	}

	details := fmt.Sprintf("Updated defect log for %q", entry.ItemName)
	if oldStatus != entry.Status {
		details = fmt.Sprintf("Updated defect log for %q (status %s -> %s)", entry.ItemName, oldStatus, entry.Status)
	}
	s.activity.Record(ctx, actor, model.ActionUpdateDefect, details)
	s.notify(ws.EventDefectUpdated, entry)

	return mapDefectToResponse(entry), nil
}

func (s *defectService) DeleteDefect(ctx context.Context, actor *model.User, id uint) error {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete defect log: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.activity.Record(ctx, actor, model.ActionDeleteDefect,
		fmt.Sprintf("Deleted defect log for %q (%d unit(s))", entry.ItemName, entry.QuantityDefective))

	return nil
}
