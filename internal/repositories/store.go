// internal/repositories/store.go
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type OrderFilter struct {
	utils.PaginationParams
	Status   *models.OrderStatus
	Priority *models.OrderPriority
	ClientID *uuid.UUID
	Tag      string
}

type InventoryFilter struct {
	utils.PaginationParams
	LowStock bool
}

type AuditFilter struct {
	utils.PaginationParams
	Action     string
	EntityType string
	EntityID   string
	UserID     *uuid.UUID
}

// ProductionCounts is the result of one bounded scan over orders in production.
type ProductionCounts struct {
	Active int64
	Urgent int64
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	UpdatePriority(ctx context.Context, id uuid.UUID, priority models.OrderPriority) error
	AddAttachment(ctx context.Context, attachment *models.Attachment) error
	// CountProduction inspects at most scanLimit orders in production.
	CountProduction(ctx context.Context, scanLimit int) (ProductionCounts, error)
	// ListProductionItems returns at most limit items of orders in production,
	// with Order, Order.Client and Order.Attachments loaded.
	ListProductionItems(ctx context.Context, limit int) ([]models.OrderItem, error)
}

type OrderItemRepository interface {
	// FindWithOrder loads the item together with its parent order.
	FindWithOrder(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	// UpdateStageStatus sets one stage column, leaving updated_at untouched,
	// and reports rows affected.
	UpdateStageStatus(ctx context.Context, id uuid.UUID, stage models.ProductionStage, status models.StageStatus) (int64, error)
}

type InventoryRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
	List(ctx context.Context, filter InventoryFilter) ([]models.InventoryItem, int64, error)
	// Decrement lowers quantity by amount, floored at zero, and returns the new quantity.
	Decrement(ctx context.Context, id uuid.UUID, amount int) (int, error)
	Increment(ctx context.Context, id uuid.UUID, amount int) (int, error)
	CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error
	ListTransactions(ctx context.Context, itemID uuid.UUID, params utils.PaginationParams) ([]models.InventoryTransaction, int64, error)
}

type AuditRepository interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
	ListAuditLogs(ctx context.Context, filter AuditFilter) ([]models.AuditLog, int64, error)
	CreateErrorLog(ctx context.Context, entry *models.ErrorLog) error
	CreateSecurityEvent(ctx context.Context, event *models.SecurityEvent) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.UserStatus) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	List(ctx context.Context, params utils.PaginationParams) ([]models.Client, int64, error)
}

// Repositories groups every repository bound to one connection or transaction.
type Repositories interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Inventory() InventoryRepository
	Audit() AuditRepository
	Users() UserRepository
	Clients() ClientRepository
}

// Store is the persistence entry point. Transaction runs fn atomically: every
// write made through tx commits together or not at all.
type Store interface {
	Repositories
	Transaction(ctx context.Context, fn func(tx Repositories) error) error
	Ping(ctx context.Context) error
}
