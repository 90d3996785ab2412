package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type RecordUsageRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Detail   string `json:"detail" binding:"required"`
}

type InventoryResponse struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
	LeftQuantity  int    `json:"left_quantity"`
	UpdatedAt     string `json:"updated_at"`
}

type InventoryEntryResponse struct {
	Quantity int    `json:"quantity"`
	Detail   string `json:"detail"`
	Kind     string `json:"kind"`
	Date     string `json:"date"`
}

// InventoryService exposes a supervisor's stock ledgers. Credits happen only
// through order completion; this service records usage debits and reads.
type InventoryService interface {
	ListBySupervisor(ctx context.Context, supervisorID uuid.UUID) ([]InventoryResponse, error)
	RecordUsage(ctx context.Context, inventoryID, supervisorID uuid.UUID, req RecordUsageRequest) (InventoryResponse, error)
	History(ctx context.Context, inventoryID, supervisorID uuid.UUID) ([]InventoryEntryResponse, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
}

func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
	}
}

func (s *inventoryService) ListBySupervisor(ctx context.Context, supervisorID uuid.UUID) ([]InventoryResponse, error) {
	items, err := s.inventoryRepo.ListBySupervisor(ctx, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	res := make([]InventoryResponse, 0, len(items))
	for _, item := range items {
		res = append(res, toInventoryResponse(item))
	}
	return res, nil
}

func (s *inventoryService) RecordUsage(ctx context.Context, inventoryID, supervisorID uuid.UUID, req RecordUsageRequest) (InventoryResponse, error) {
	if req.Quantity <= 0 {
		return InventoryResponse{}, ErrInvalidQuantity
	}
	if strings.TrimSpace(req.Detail) == "" {
		return InventoryResponse{}, ErrMissingDetail
	}

	now := time.Now()
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		inventory, findErr := s.inventoryRepo.FindByID(txCtx, inventoryID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrInventoryNotFound
			}
			return fmt.Errorf("failed to find inventory: %w", findErr)
		}
		if inventory.SupervisorID != supervisorID {
			return ErrInventoryNotFound
		}

		// Guarded decrement; fails cleanly when available stock is short
		debited, debitErr := s.inventoryRepo.Debit(txCtx, inventoryID, req.Quantity)
		if debitErr != nil {
			return fmt.Errorf("failed to debit inventory: %w", debitErr)
		}
		if !debited {
			return ErrInsufficientStock
		}

		entry := &model.InventoryEntry{
			InventoryID: inventoryID,
			Quantity:    req.Quantity,
			Detail:      req.Detail,
			Kind:        model.EntryKindUsed,
			Date:        now,
		}
		if appendErr := s.inventoryRepo.AppendEntry(txCtx, entry); appendErr != nil {
			return fmt.Errorf("failed to append inventory entry: %w", appendErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"quantity": req.Quantity,
			"detail":   req.Detail,
		})
		audit := &model.AuditLog{
			UserID:     &supervisorID,
			Action:     model.ActionRecordUsage,
			EntityID:   inventoryID.String(),
			EntityName: inventory.Product.Name,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})

	if err != nil {
		return InventoryResponse{}, err
	}

	inventory, err := s.inventoryRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return InventoryResponse{}, fmt.Errorf("failed to reload inventory: %w", err)
	}
	return toInventoryResponse(*inventory), nil
}

func (s *inventoryService) History(ctx context.Context, inventoryID, supervisorID uuid.UUID) ([]InventoryEntryResponse, error) {
	inventory, err := s.inventoryRepo.FindByID(ctx, inventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to find inventory: %w", err)
	}
	if inventory.SupervisorID != supervisorID {
		return nil, ErrInventoryNotFound
	}

	entries, err := s.inventoryRepo.History(ctx, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory history: %w", err)
	}

	res := make([]InventoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		res = append(res, InventoryEntryResponse{
			Quantity: entry.Quantity,
			Detail:   entry.Detail,
			Kind:     entry.Kind,
			Date:     entry.Date.Format(time.RFC3339),
		})
	}
	return res, nil
}

func toInventoryResponse(inventory model.Inventory) InventoryResponse {
	return InventoryResponse{
		ID:            inventory.ID.String(),
		ProductID:     inventory.ProductID.String(),
		ProductName:   inventory.Product.Name,
		TotalQuantity: inventory.TotalQuantity,
		LeftQuantity:  inventory.LeftQuantity,
		UpdatedAt:     inventory.UpdatedAt.Format(time.RFC3339),
	}
}
