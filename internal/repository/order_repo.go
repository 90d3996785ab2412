package repository

import (
	"context"
	"time"

	"medstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderListFilter narrows order listings. Zero times mean no window bound;
// nil actor IDs mean no actor scoping.
type OrderListFilter struct {
	SupervisorID *uuid.UUID
	VendorID     *uuid.UUID
	From         time.Time
	To           time.Time
	Page         int
	Limit        int
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]model.Order, int64, error)
	MarkStageDone(ctx context.Context, orderID uuid.UUID, stage model.Stage, at time.Time) (bool, error)
	AssignVendor(ctx context.Context, orderID, vendorID uuid.UUID) (bool, error)
	AttachInvoice(ctx context.Context, orderID uuid.UUID, image []byte) (bool, error)
	InvoiceImage(ctx context.Context, orderID uuid.UUID) ([]byte, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	// Stage rows ride along via the association
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Stages").
		Preload("Product").
		Preload("Supervisor").
		Preload("Vendor").
		Preload("Vendor.Location").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderListFilter) ([]model.Order, int64, error) {
	db := GetDB(ctx, r.db).Model(&model.Order{})

	if filter.SupervisorID != nil {
		db = db.Where("supervisor_id = ?", *filter.SupervisorID)
	}
	if filter.VendorID != nil {
		db = db.Where("vendor_id = ?", *filter.VendorID)
	}
	if !filter.From.IsZero() {
		db = db.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("created_at < ?", filter.To)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	offset := (filter.Page - 1) * filter.Limit
	if err := db.
		Preload("Stages").
		Preload("Product").
		Preload("Supervisor").
		Preload("Vendor").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// MarkStageDone flips one stage row from pending to done. The status guard in
// the WHERE clause makes the flip atomic: of two concurrent calls for the
// same stage only one sees RowsAffected == 1.
func (r *orderRepository) MarkStageDone(ctx context.Context, orderID uuid.UUID, stage model.Stage, at time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.OrderStage{}).
		Where("order_id = ? AND stage = ? AND status = ?", orderID, stage, false).
		Updates(map[string]interface{}{"status": true, "date": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AssignVendor sets the order's vendor exactly once; the IS NULL guard
// rejects a second assignment.
func (r *orderRepository) AssignVendor(ctx context.Context, orderID, vendorID uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("id = ? AND vendor_id IS NULL", orderID).
		Update("vendor_id", vendorID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AttachInvoice stores the invoice blob exactly once.
func (r *orderRepository) AttachInvoice(ctx context.Context, orderID uuid.UUID, image []byte) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("id = ? AND invoice_image IS NULL", orderID).
		Update("invoice_image", image)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *orderRepository) InvoiceImage(ctx context.Context, orderID uuid.UUID) ([]byte, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).Select("invoice_image").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return order.InvoiceImage, nil
}
