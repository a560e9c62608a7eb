// internal/repositories/inventory.go
package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type inventoryRepository struct {
	db *gorm.DB
}

func (r *inventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *inventoryRepository) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check inventory items: %w", err)
	}
	return count == int64(len(unique)), nil
}

func (r *inventoryRepository) List(ctx context.Context, filter InventoryFilter) ([]models.InventoryItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", searchTerm, searchTerm)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		query = query.Where("quantity <= low_stock_threshold")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory items: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "sku", "quantity"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch inventory items: %w", err)
	}
	return items, total, nil
}

// Decrement computes the new quantity server side so concurrent write-offs
// against the same row cannot lose updates.
func (r *inventoryRepository) Decrement(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	return r.adjust(ctx, id, gorm.Expr("GREATEST(0, quantity - ?)", amount))
}

func (r *inventoryRepository) Increment(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	return r.adjust(ctx, id, gorm.Expr("quantity + ?", amount))
}

func (r *inventoryRepository) adjust(ctx context.Context, id uuid.UUID, expr clause.Expr) (int, error) {
	var item models.InventoryItem
	result := r.db.WithContext(ctx).Model(&item).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "quantity"}}}).
		Where("id = ?", id).
		Update("quantity", expr)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update inventory quantity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return item.Quantity, nil
}

func (r *inventoryRepository) CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create inventory transaction: %w", err)
	}
	return nil
}

func (r *inventoryRepository) ListTransactions(ctx context.Context, itemID uuid.UUID, params utils.PaginationParams) ([]models.InventoryTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryTransaction{}).Where("item_id = ?", itemID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory transactions: %w", err)
	}

	var txns []models.InventoryTransaction
	err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&txns).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch inventory transactions: %w", err)
	}
	return txns, total, nil
}
