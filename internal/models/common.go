// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleProduction Role = "production"
	RoleWarehouse  Role = "warehouse"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleProduction, RoleWarehouse:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusBlocked
}

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusDesign     OrderStatus = "design"
	OrderStatusProduction OrderStatus = "production"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusDesign, OrderStatusProduction,
		OrderStatusDone, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

type OrderPriority string

const (
	OrderPriorityNormal OrderPriority = "normal"
	OrderPriorityHigh   OrderPriority = "high"
	OrderPriorityUrgent OrderPriority = "urgent"
)

func (p OrderPriority) IsValid() bool {
	return p == OrderPriorityNormal || p == OrderPriorityHigh || p == OrderPriorityUrgent
}

// IsUrgent reports whether the priority counts towards the "urgent" production stat.
func (p OrderPriority) IsUrgent() bool {
	return p == OrderPriorityHigh || p == OrderPriorityUrgent
}

type InventoryTransactionType string

const (
	InventoryTransactionIn  InventoryTransactionType = "in"
	InventoryTransactionOut InventoryTransactionType = "out"
)
