// internal/services/inventory_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

const openingBalanceReason = "Начальный остаток"

type InventoryService struct {
	store repositories.Store
	audit *AuditService
}

type CreateInventoryItemRequest struct {
	Name              string `json:"name" validate:"required,notblank,max=255"`
	SKU               string `json:"sku" validate:"required,notblank,max=100"`
	Category          string `json:"category" validate:"max=100"`
	Unit              string `json:"unit" validate:"max=20"`
	Quantity          int    `json:"quantity" validate:"min=0"`
	LowStockThreshold int    `json:"low_stock_threshold" validate:"min=0"`
}

type ReceiveStockRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Reason   string `json:"reason" validate:"required,notblank,max=500"`
}

type StockReceipt struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	InventoryID   uuid.UUID `json:"inventory_id"`
	Quantity      int       `json:"quantity"`
	NewQuantity   int       `json:"new_quantity"`
}

func NewInventoryService(store repositories.Store, audit *AuditService) *InventoryService {
	return &InventoryService{store: store, audit: audit}
}

// CreateItem registers a stock-tracked item. A non-zero opening quantity is
// recorded as an "in" ledger entry in the same transaction.
func (s *InventoryService) CreateItem(ctx context.Context, actor *models.Actor, req *CreateInventoryItemRequest) (*models.InventoryItem, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(i18n.KeyValidationInvalid, err)
	}

	item := &models.InventoryItem{
		Name:              strings.TrimSpace(req.Name),
		SKU:               strings.TrimSpace(req.SKU),
		Category:          req.Category,
		Unit:              req.Unit,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}

	err := s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		if err := tx.Inventory().Create(ctx, item); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return newConflictError(i18n.KeyInventorySKUExists, err)
			}
			return fmt.Errorf("failed to create inventory item: %w", err)
		}

		if item.Quantity > 0 {
			entry := &models.InventoryTransaction{
				ItemID:       item.ID,
				ChangeAmount: item.Quantity,
				Type:         models.InventoryTransactionIn,
				Reason:       openingBalanceReason,
				CreatedBy:    actor.ID,
			}
			if err := tx.Inventory().CreateTransaction(ctx, entry); err != nil {
				return fmt.Errorf("failed to write opening balance: %w", err)
			}
		}

		return s.audit.LogAction(ctx, tx.Audit(), actor, ActionInventoryCreated, EntityInventory, item.ID.String(), models.JSONB{
			"sku":      item.SKU,
			"quantity": item.Quantity,
		})
	})
	if err != nil {
		return nil, s.audit.failure(ctx, actor, err, models.JSONB{"operation": "create_inventory_item"})
	}
	return item, nil
}

func (s *InventoryService) GetItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.store.Inventory().FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newNotFoundError(i18n.KeyInventoryNotFound)
	}
	if err != nil {
		return nil, newPersistenceError(err)
	}
	return item, nil
}

func (s *InventoryService) ListItems(ctx context.Context, filter repositories.InventoryFilter) ([]models.InventoryItem, int64, error) {
	items, total, err := s.store.Inventory().List(ctx, filter)
	if err != nil {
		return nil, 0, newPersistenceError(err)
	}
	return items, total, nil
}

// ReceiveStock books a supply receipt: increment, "in" ledger entry and audit
// entry commit together.
func (s *InventoryService) ReceiveStock(ctx context.Context, actor *models.Actor, id uuid.UUID, req *ReceiveStockRequest) (*StockReceipt, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(i18n.KeyValidationInvalid, err)
	}

	receipt := &StockReceipt{InventoryID: id, Quantity: req.Quantity}
	err := s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		newQuantity, err := tx.Inventory().Increment(ctx, id, req.Quantity)
		if errors.Is(err, repositories.ErrNotFound) {
			return newNotFoundError(i18n.KeyInventoryNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to increment inventory: %w", err)
		}
		receipt.NewQuantity = newQuantity

		entry := &models.InventoryTransaction{
			ItemID:       id,
			ChangeAmount: req.Quantity,
			Type:         models.InventoryTransactionIn,
			Reason:       req.Reason,
			CreatedBy:    actor.ID,
		}
		if err := tx.Inventory().CreateTransaction(ctx, entry); err != nil {
			return fmt.Errorf("failed to write ledger entry: %w", err)
		}
		receipt.TransactionID = entry.ID

		return s.audit.LogAction(ctx, tx.Audit(), actor, ActionInventoryReceived, EntityInventory, id.String(), models.JSONB{
			"quantity":       req.Quantity,
			"reason":         req.Reason,
			"transaction_id": entry.ID.String(),
		})
	})
	if err != nil {
		return nil, s.audit.failure(ctx, actor, err, models.JSONB{"operation": "receive_stock"})
	}
	return receipt, nil
}

func (s *InventoryService) ListTransactions(ctx context.Context, id uuid.UUID, params utils.PaginationParams) ([]models.InventoryTransaction, int64, error) {
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, 0, err
	}
	entries, total, err := s.store.Inventory().ListTransactions(ctx, id, params)
	if err != nil {
		return nil, 0, newPersistenceError(err)
	}
	return entries, total, nil
}
