package repository

import (
	"context"

	"medstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryRepository interface {
	Create(ctx context.Context, inventory *model.Inventory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error)
	FindByOwner(ctx context.Context, productID, supervisorID uuid.UUID) (*model.Inventory, error)
	ListBySupervisor(ctx context.Context, supervisorID uuid.UUID) ([]model.Inventory, error)
	Credit(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	Debit(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	AppendEntry(ctx context.Context, entry *model.InventoryEntry) error
	History(ctx context.Context, id uuid.UUID) ([]model.InventoryEntry, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, inventory *model.Inventory) error {
	return GetDB(ctx, r.db).Create(inventory).Error
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	var inventory model.Inventory
	if err := GetDB(ctx, r.db).Preload("Product").First(&inventory, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inventory, nil
}

func (r *inventoryRepository) FindByOwner(ctx context.Context, productID, supervisorID uuid.UUID) (*model.Inventory, error) {
	var inventory model.Inventory
	if err := GetDB(ctx, r.db).
		First(&inventory, "product_id = ? AND supervisor_id = ?", productID, supervisorID).Error; err != nil {
		return nil, err
	}
	return &inventory, nil
}

func (r *inventoryRepository) ListBySupervisor(ctx context.Context, supervisorID uuid.UUID) ([]model.Inventory, error) {
	var items []model.Inventory
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Where("supervisor_id = ?", supervisorID).
		Order("updated_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Credit adds quantity to both total and left counters in one statement.
func (r *inventoryRepository) Credit(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Inventory{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_quantity": gorm.Expr("total_quantity + ?", quantity),
			"left_quantity":  gorm.Expr("left_quantity + ?", quantity),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Debit subtracts quantity from the available stock. The left_quantity guard
// in the WHERE clause keeps the counter from going negative under concurrent
// usage recordings.
func (r *inventoryRepository) Debit(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Inventory{}).
		Where("id = ? AND left_quantity >= ?", id, quantity).
		Update("left_quantity", gorm.Expr("left_quantity - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *inventoryRepository) AppendEntry(ctx context.Context, entry *model.InventoryEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *inventoryRepository) History(ctx context.Context, id uuid.UUID) ([]model.InventoryEntry, error) {
	var entries []model.InventoryEntry
	if err := GetDB(ctx, r.db).
		Where("inventory_id = ?", id).
		Order("date ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
