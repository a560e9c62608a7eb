// internal/models/inventory.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type InventoryItem struct {
	BaseModel
	Name              string `json:"name" gorm:"size:255;not null"`
	SKU               string `json:"sku" gorm:"size:100;uniqueIndex;not null"`
	Category          string `json:"category" gorm:"size:100;index"`
	Unit              string `json:"unit" gorm:"size:20;not null;default:'pcs'"`
	Quantity          int    `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
	LowStockThreshold int    `json:"low_stock_threshold" gorm:"not null;default:0"`
}

// InventoryTransaction is an immutable ledger entry. Rows are only ever inserted.
type InventoryTransaction struct {
	ID           uuid.UUID                `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ItemID       uuid.UUID                `json:"item_id" gorm:"type:uuid;not null;index"`
	ChangeAmount int                      `json:"change_amount" gorm:"not null"`
	Type         InventoryTransactionType `json:"type" gorm:"type:varchar(10);not null"`
	Reason       string                   `json:"reason" gorm:"type:text;not null"`
	CreatedBy    uuid.UUID                `json:"created_by" gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time                `json:"created_at" gorm:"index"`

	// Relationships
	Item *InventoryItem `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}
