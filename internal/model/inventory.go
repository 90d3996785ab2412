package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntryKind constants for inventory history entries
const (
	EntryKindAdded = "ADDED"
	EntryKindUsed  = "USED"
)

// Inventory is the stock ledger for one (product, supervisor) pair. It is
// created lazily on the first completed order for the pair and credited by
// every later completion. LeftQuantity never exceeds TotalQuantity and never
// goes negative.
type Inventory struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_inventory_owner,unique" json:"product_id"`
	Product       Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SupervisorID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_inventory_owner,unique" json:"supervisor_id"`
	Supervisor    User             `gorm:"foreignKey:SupervisorID" json:"-"`
	TotalQuantity int              `gorm:"type:int;not null;default:0" json:"total_quantity"`
	LeftQuantity  int              `gorm:"type:int;not null;default:0" json:"left_quantity"`
	History       []InventoryEntry `gorm:"foreignKey:InventoryID" json:"history,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (i *Inventory) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InventoryEntry is one append-only history record: a credit from a completed
// order (ADDED) or a usage debit recorded by the supervisor (USED). Entries
// are never updated or deleted.
type InventoryEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InventoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"inventory_id"`
	Quantity    int       `gorm:"type:int;not null" json:"quantity"`
	Detail      string    `gorm:"type:text;not null" json:"detail"`
	Kind        string    `gorm:"type:varchar(10);not null" json:"kind"` // ADDED, USED
	Date        time.Time `gorm:"not null" json:"date"`
}

func (e *InventoryEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
