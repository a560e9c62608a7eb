// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Client struct {
	BaseModel
	Name      string    `json:"name" gorm:"size:255;not null"`
	Company   string    `json:"company" gorm:"size:255"`
	Email     string    `json:"email" gorm:"size:255;index"`
	Phone     string    `json:"phone" gorm:"size:50"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
}

type Order struct {
	BaseModel
	OrderNumber string         `json:"order_number" gorm:"size:32;uniqueIndex;not null"`
	ClientID    uuid.UUID      `json:"client_id" gorm:"type:uuid;not null;index"`
	Status      OrderStatus    `json:"status" gorm:"type:varchar(20);not null;default:'new';index"`
	Priority    OrderPriority  `json:"priority" gorm:"type:varchar(20);not null;default:'normal';index"`
	Deadline    *time.Time     `json:"deadline"`
	Notes       string         `json:"notes" gorm:"type:text"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	CreatedBy   uuid.UUID      `json:"created_by" gorm:"type:uuid;not null"`

	// Relationships
	Client      *Client      `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Items       []OrderItem  `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Attachments []Attachment `json:"attachments,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	BaseModel
	OrderID                uuid.UUID   `json:"order_id" gorm:"type:uuid;not null;index"`
	Description            string      `json:"description" gorm:"type:text;not null"`
	Quantity               int         `json:"quantity" gorm:"not null;check:quantity > 0"`
	InventoryID            *uuid.UUID  `json:"inventory_id" gorm:"type:uuid;index"`
	StagePrepStatus        StageStatus `json:"stage_prep_status" gorm:"type:varchar(20);not null;default:'pending'"`
	StagePrintStatus       StageStatus `json:"stage_print_status" gorm:"type:varchar(20);not null;default:'pending'"`
	StageApplicationStatus StageStatus `json:"stage_application_status" gorm:"type:varchar(20);not null;default:'pending'"`
	StagePackagingStatus   StageStatus `json:"stage_packaging_status" gorm:"type:varchar(20);not null;default:'pending'"`

	// Relationships
	Order     *Order         `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Inventory *InventoryItem `json:"inventory,omitempty" gorm:"foreignKey:InventoryID"`
}

// StageStatus returns the status currently recorded for stage.
func (i *OrderItem) StageStatus(stage ProductionStage) StageStatus {
	switch stage {
	case StagePrep:
		return i.StagePrepStatus
	case StagePrint:
		return i.StagePrintStatus
	case StageApplication:
		return i.StageApplicationStatus
	case StagePackaging:
		return i.StagePackagingStatus
	}
	return ""
}

// SetStageStatus sets the status field for stage; other fields are untouched.
func (i *OrderItem) SetStageStatus(stage ProductionStage, status StageStatus) {
	switch stage {
	case StagePrep:
		i.StagePrepStatus = status
	case StagePrint:
		i.StagePrintStatus = status
	case StageApplication:
		i.StageApplicationStatus = status
	case StagePackaging:
		i.StagePackagingStatus = status
	}
}

// Attachment is a file stored alongside an order, usually a mockup image.
type Attachment struct {
	BaseModel
	OrderID    uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	FileName   string    `json:"file_name" gorm:"size:255;not null"`
	URL        string    `json:"url" gorm:"type:text;not null"`
	StorageKey string    `json:"storage_key" gorm:"size:512;not null"`
	MimeType   string    `json:"mime_type" gorm:"size:100"`
	Size       int64     `json:"size"`
	UploadedBy uuid.UUID `json:"uploaded_by" gorm:"type:uuid;not null"`
}
