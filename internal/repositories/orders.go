// internal/repositories/orders.go
package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type orderRepository struct {
	db *gorm.DB
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Attachments").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})

	// Apply filters
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Tag != "" {
		query = query.Where("tags && ?", pq.StringArray{filter.Tag})
	}
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "order_number", "priority", "deadline", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var orders []models.Order
	if err := query.Preload("Client").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	return r.updateColumn(ctx, id, "status", status)
}

func (r *orderRepository) UpdatePriority(ctx context.Context, id uuid.UUID, priority models.OrderPriority) error {
	return r.updateColumn(ctx, id, "priority", priority)
}

func (r *orderRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) AddAttachment(ctx context.Context, attachment *models.Attachment) error {
	return translateError(r.db.WithContext(ctx).Create(attachment).Error)
}

func (r *orderRepository) CountProduction(ctx context.Context, scanLimit int) (ProductionCounts, error) {
	var counts ProductionCounts
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS active,
		       COUNT(*) FILTER (WHERE priority IN (?, ?)) AS urgent
		FROM (
			SELECT priority FROM orders
			WHERE status = ? AND deleted_at IS NULL
			LIMIT ?
		) AS scanned`,
		models.OrderPriorityHigh, models.OrderPriorityUrgent, models.OrderStatusProduction, scanLimit,
	).Scan(&counts).Error
	if err != nil {
		return ProductionCounts{}, fmt.Errorf("failed to count production orders: %w", err)
	}
	return counts, nil
}

func (r *orderRepository) ListProductionItems(ctx context.Context, limit int) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("orders.status = ?", models.OrderStatusProduction).
		Order("orders.created_at DESC, order_items.created_at ASC").
		Limit(limit).
		Preload("Order").
		Preload("Order.Client").
		Preload("Order.Attachments").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch production items: %w", err)
	}
	return items, nil
}

type orderItemRepository struct {
	db *gorm.DB
}

func (r *orderItemRepository) FindWithOrder(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).Preload("Order").First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

func (r *orderItemRepository) UpdateStageStatus(ctx context.Context, id uuid.UUID, stage models.ProductionStage, status models.StageStatus) (int64, error) {
	if !stage.IsValid() {
		return 0, fmt.Errorf("unknown production stage %q", stage)
	}
	result := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("id = ?", id).
		UpdateColumn(stage.Column(), status)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update %s: %w", stage.Column(), result.Error)
	}
	return result.RowsAffected, nil
}
