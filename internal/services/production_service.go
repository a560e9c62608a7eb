// internal/services/production_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/config"
	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

// Stats that have no data source yet. They are reported as null.
const (
	StatEfficiency     = "efficiency"
	StatCompletedToday = "completed_today"
)

type ProductionService struct {
	store repositories.Store
	audit *AuditService
	cache StatsCache
	cfg   config.ProductionConfig
	now   func() time.Time
}

type UpdateStageRequest struct {
	OrderItemID string `json:"-" validate:"required,uuid"`
	Stage       string `json:"-" validate:"required,production_stage"`
	Status      string `json:"status" validate:"required,stage_status"`
}

type UpdateStageResult struct {
	Updated     bool                   `json:"updated"`
	OrderItemID uuid.UUID              `json:"order_item_id"`
	Stage       models.ProductionStage `json:"stage"`
	Status      models.StageStatus     `json:"status"`
}

type ReportDefectRequest struct {
	OrderItemID string `json:"-" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	Reason      string `json:"reason" validate:"required,notblank,max=500"`
}

type DefectReport struct {
	TransactionID     uuid.UUID `json:"transaction_id"`
	OrderItemID       uuid.UUID `json:"order_item_id"`
	InventoryID       uuid.UUID `json:"inventory_id"`
	OrderNumber       string    `json:"order_number"`
	Quantity          int       `json:"quantity"`
	RemainingQuantity int       `json:"remaining_quantity"`
}

type ProductionStats struct {
	Active         int64     `json:"active"`
	Urgent         int64     `json:"urgent"`
	ActiveCapped   bool      `json:"active_capped"`
	ScanLimit      int       `json:"scan_limit"`
	Efficiency     *float64  `json:"efficiency"`
	CompletedToday *int64    `json:"completed_today"`
	NotImplemented []string  `json:"not_implemented"`
	GeneratedAt    time.Time `json:"generated_at"`
}

type ProductionItems struct {
	Items  []models.OrderItem `json:"items"`
	Limit  int                `json:"limit"`
	Capped bool               `json:"capped"`
}

func NewProductionService(store repositories.Store, audit *AuditService, cache StatsCache, cfg config.ProductionConfig) *ProductionService {
	if cache == nil {
		cache = noopStatsCache{}
	}
	return &ProductionService{
		store: store,
		audit: audit,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

var stageFieldKeys = map[string]string{
	"orderitemid": i18n.KeyOrderItemIDInvalid,
	"stage":       i18n.KeyStageInvalid,
	"status":      i18n.KeyStageStatusInvalid,
}

var defectFieldKeys = map[string]string{
	"orderitemid": i18n.KeyOrderItemIDInvalid,
	"quantity":    i18n.KeyDefectInvalidQuantity,
	"reason":      i18n.KeyDefectInvalidReason,
}

// UpdateStage sets one stage status of an order item and audits the change in
// the same transaction. A missing item is not an error: nothing is written
// and Updated is false.
func (s *ProductionService) UpdateStage(ctx context.Context, actor *models.Actor, req *UpdateStageRequest) (*UpdateStageResult, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	req.OrderItemID = normalizeID(req.OrderItemID)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(validationKey(err, stageFieldKeys), err)
	}

	itemID := uuid.MustParse(req.OrderItemID)
	result := &UpdateStageResult{
		OrderItemID: itemID,
		Stage:       models.ProductionStage(req.Stage),
		Status:      models.StageStatus(req.Status),
	}

	err := s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		rows, err := tx.OrderItems().UpdateStageStatus(ctx, itemID, result.Stage, result.Status)
		if err != nil {
			return fmt.Errorf("failed to update stage: %w", err)
		}
		if rows == 0 {
			return nil
		}
		result.Updated = true

		item, err := tx.OrderItems().FindWithOrder(ctx, itemID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load order item: %w", err)
		}

		return s.audit.LogAction(ctx, tx.Audit(), actor, ActionStageUpdated, EntityOrderItem, itemID.String(), models.JSONB{
			"order_number": orderNumberOf(item),
			"stage":        string(result.Stage),
			"status":       string(result.Status),
			"timestamp":    s.now().UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		s.audit.LogError(ctx, ErrorEntry{
			Err:    err,
			UserID: actor.IDPtr(),
			Details: models.JSONB{
				"operation":     "update_stage",
				"order_item_id": itemID.String(),
				"stage":         req.Stage,
				"status":        req.Status,
			},
		})
		return nil, newPersistenceError(err)
	}

	return result, nil
}

// ReportDefect writes off quantity units of the item's linked stock. The
// decrement, its ledger entry and the audit entry commit together.
func (s *ProductionService) ReportDefect(ctx context.Context, actor *models.Actor, req *ReportDefectRequest) (*DefectReport, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	req.OrderItemID = normalizeID(req.OrderItemID)
	req.Reason = strings.TrimSpace(req.Reason)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(validationKey(err, defectFieldKeys), err)
	}

	itemID := uuid.MustParse(req.OrderItemID)
	report := &DefectReport{OrderItemID: itemID, Quantity: req.Quantity}

	err := s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		item, err := tx.OrderItems().FindWithOrder(ctx, itemID)
		if errors.Is(err, repositories.ErrNotFound) {
			return newNotFoundError(i18n.KeyOrderItemNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load order item: %w", err)
		}
		if item.InventoryID == nil {
			return &Error{Kind: KindValidation, Key: i18n.KeyDefectNoInventoryLink}
		}

		report.InventoryID = *item.InventoryID
		report.OrderNumber = orderNumberOf(item)

		remaining, err := tx.Inventory().Decrement(ctx, report.InventoryID, req.Quantity)
		if errors.Is(err, repositories.ErrNotFound) {
			return newNotFoundError(i18n.KeyInventoryNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to decrement inventory: %w", err)
		}
		report.RemainingQuantity = remaining

		entry := &models.InventoryTransaction{
			ItemID:       report.InventoryID,
			ChangeAmount: -req.Quantity,
			Type:         models.InventoryTransactionOut,
			Reason:       DefectReason(report.OrderNumber, req.Reason),
			CreatedBy:    actor.ID,
		}
		if err := tx.Inventory().CreateTransaction(ctx, entry); err != nil {
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}
		report.TransactionID = entry.ID

		return s.audit.LogAction(ctx, tx.Audit(), actor, ActionDefectReported, EntityOrderItem, itemID.String(), models.JSONB{
			"order_number":   report.OrderNumber,
			"quantity":       req.Quantity,
			"reason":         req.Reason,
			"inventory_id":   report.InventoryID.String(),
			"transaction_id": entry.ID.String(),
			"timestamp":      s.now().UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		return nil, s.audit.failure(ctx, actor, err, models.JSONB{
			"operation":     "report_defect",
			"order_item_id": itemID.String(),
			"quantity":      req.Quantity,
		})
	}

	return report, nil
}

// DefectReason is the ledger reason recorded for a production defect write-off.
func DefectReason(orderNumber, reason string) string {
	return fmt.Sprintf("Брак (Производство): Заказ #%s. Причина: %s", orderNumber, reason)
}

// GetProductionStats counts orders in production, inspecting at most the
// configured scan limit. ActiveCapped reports that the limit was reached.
func (s *ProductionService) GetProductionStats(ctx context.Context, actor *models.Actor) (*ProductionStats, error) {
	if actor == nil {
		if !s.cfg.AllowAnonymousRead {
			return nil, &Error{Kind: KindUnauthenticated, Key: i18n.KeyProductionReadDenied}
		}
		return s.newStats(), nil
	}

	if cached, ok, err := s.cache.GetStats(ctx); err != nil {
		s.audit.logger.WithError(err).Warn("production stats cache read failed")
	} else if ok {
		return cached, nil
	}

	counts, err := s.store.Orders().CountProduction(ctx, s.cfg.StatsScanLimit)
	if err != nil {
		s.audit.LogError(ctx, ErrorEntry{
			Err:     err,
			UserID:  actor.IDPtr(),
			Details: models.JSONB{"operation": "production_stats"},
		})
		return nil, newPersistenceError(err)
	}

	stats := s.newStats()
	stats.Active = counts.Active
	stats.Urgent = counts.Urgent
	stats.ActiveCapped = counts.Active >= int64(s.cfg.StatsScanLimit)

	if err := s.cache.SetStats(ctx, stats); err != nil {
		s.audit.logger.WithError(err).Warn("production stats cache write failed")
	}
	return stats, nil
}

func (s *ProductionService) newStats() *ProductionStats {
	return &ProductionStats{
		ScanLimit:      s.cfg.StatsScanLimit,
		NotImplemented: []string{StatEfficiency, StatCompletedToday},
		GeneratedAt:    s.now().UTC(),
	}
}

// GetProductionItems lists items of orders in production with their order,
// client and attachments, capped at the configured page size.
func (s *ProductionService) GetProductionItems(ctx context.Context, actor *models.Actor) (*ProductionItems, error) {
	result := &ProductionItems{Items: []models.OrderItem{}, Limit: s.cfg.ItemsPageSize}
	if actor == nil {
		if !s.cfg.AllowAnonymousRead {
			return nil, &Error{Kind: KindUnauthenticated, Key: i18n.KeyProductionReadDenied}
		}
		return result, nil
	}

	items, err := s.store.Orders().ListProductionItems(ctx, s.cfg.ItemsPageSize)
	if err != nil {
		s.audit.LogError(ctx, ErrorEntry{
			Err:     err,
			UserID:  actor.IDPtr(),
			Details: models.JSONB{"operation": "production_items"},
		})
		return nil, newPersistenceError(err)
	}

	if items != nil {
		result.Items = items
	}
	result.Capped = len(items) >= s.cfg.ItemsPageSize
	return result, nil
}

// InvalidateStats drops the cached stats snapshot after an order changes.
func (s *ProductionService) InvalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.audit.logger.WithError(err).Warn("production stats cache invalidation failed")
	}
}

// normalizeID lowercases an item id so upper and mixed case UUIDs pass the
// uuid tag, which only accepts lowercase hex.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func orderNumberOf(item *models.OrderItem) string {
	if item.Order == nil {
		return ""
	}
	return item.Order.OrderNumber
}
