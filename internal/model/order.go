package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a supervisor's purchase request moving through the nine-stage
// fulfillment track. Vendor is assigned exactly once when the admin approves;
// the invoice image is attached exactly once by the supervisor.
type Order struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product      Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SupervisorID uuid.UUID       `gorm:"type:uuid;not null;index" json:"supervisor_id"`
	Supervisor   User            `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
	VendorID     *uuid.UUID      `gorm:"type:uuid;index" json:"vendor_id"`
	Vendor       *User           `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Quantity     int             `gorm:"type:int;not null" json:"quantity"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	InvoiceImage []byte          `gorm:"type:bytea" json:"-"`
	Stages       []OrderStage    `gorm:"foreignKey:OrderID" json:"stages,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderStage is one row per stage per order. All nine rows are created with
// the order; only Status and Date ever change, and Status never regresses.
type OrderStage struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_order_stage,unique" json:"order_id"`
	Stage    Stage      `gorm:"type:varchar(30);not null;index:idx_order_stage,unique" json:"stage"`
	Sequence int        `gorm:"type:int;not null" json:"sequence"`
	Status   bool       `gorm:"not null;default:false" json:"status"`
	Date     *time.Time `json:"date"`
}

func (s *OrderStage) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SortedStages returns the order's stage rows in track order.
func (o *Order) SortedStages() []OrderStage {
	sorted := make([]OrderStage, len(o.Stages))
	copy(sorted, o.Stages)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].Sequence > sorted[j].Sequence; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted
}

// PendingStage returns the first stage in track order that is not yet done,
// or nil when the order has completed every stage.
func (o *Order) PendingStage() *Stage {
	for _, row := range o.SortedStages() {
		if !row.Status {
			stage := row.Stage
			return &stage
		}
	}
	return nil
}
