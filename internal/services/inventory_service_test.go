package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/repositories/memstore"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

func newInventoryService() (*InventoryService, *memstore.Store) {
	store := memstore.New()
	return NewInventoryService(store, NewAuditService(store.Audit(), quietLogger())), store
}

func TestInventoryService_CreateItem(t *testing.T) {
	ctx := context.Background()
	actor := newActor(models.RoleWarehouse)

	t.Run("opening quantity is booked as an in entry", func(t *testing.T) {
		svc, store := newInventoryService()

		item, err := svc.CreateItem(ctx, actor, &CreateInventoryItemRequest{Name: "Blank tee", SKU: "TEE-M", Quantity: 40})
		require.NoError(t, err)
		assert.Equal(t, "pcs", item.Unit)
		assert.Equal(t, 40, item.Quantity)

		ledger := store.Ledger()
		require.Len(t, ledger, 1)
		assert.Equal(t, 40, ledger[0].ChangeAmount)
		assert.Equal(t, models.InventoryTransactionIn, ledger[0].Type)
		assert.Equal(t, actor.ID, ledger[0].CreatedBy)
		assert.Len(t, store.AuditLogs(), 1)
	})

	t.Run("zero opening quantity writes no ledger entry", func(t *testing.T) {
		svc, store := newInventoryService()

		_, err := svc.CreateItem(ctx, actor, &CreateInventoryItemRequest{Name: "Blank tee", SKU: "TEE-L"})
		require.NoError(t, err)
		assert.Empty(t, store.Ledger())
	})

	t.Run("duplicate sku conflicts", func(t *testing.T) {
		svc, store := newInventoryService()

		_, err := svc.CreateItem(ctx, actor, &CreateInventoryItemRequest{Name: "Blank tee", SKU: "TEE-S", Quantity: 1})
		require.NoError(t, err)
		_, err = svc.CreateItem(ctx, actor, &CreateInventoryItemRequest{Name: "Other", SKU: "TEE-S", Quantity: 5})
		assert.True(t, IsConflict(err))
		assert.Len(t, store.Ledger(), 1)
		assert.Empty(t, store.ErrorLogs())
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		svc, _ := newInventoryService()

		_, err := svc.CreateItem(ctx, actor, &CreateInventoryItemRequest{Name: "Blank tee", SKU: "TEE-XL", Quantity: -1})
		assert.True(t, IsValidation(err))
	})
}

func TestInventoryService_ReceiveStock(t *testing.T) {
	ctx := context.Background()
	actor := newActor(models.RoleWarehouse)
	svc, store := newInventoryService()
	item := seedInventory(t, store, "CAP-RED", 2)

	receipt, err := svc.ReceiveStock(ctx, actor, item.ID, &ReceiveStockRequest{Quantity: 8, Reason: "Поставка №17"})
	require.NoError(t, err)
	assert.Equal(t, 10, receipt.NewQuantity)

	ledger := store.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, receipt.TransactionID, ledger[0].ID)
	assert.Equal(t, 8, ledger[0].ChangeAmount)
	assert.Equal(t, "Поставка №17", ledger[0].Reason)

	_, err = svc.ReceiveStock(ctx, actor, uuid.New(), &ReceiveStockRequest{Quantity: 1, Reason: "x"})
	assert.True(t, IsNotFound(err))

	_, err = svc.ReceiveStock(ctx, actor, item.ID, &ReceiveStockRequest{Quantity: 0, Reason: "x"})
	assert.True(t, IsValidation(err))

	_, err = svc.ReceiveStock(ctx, nil, item.ID, &ReceiveStockRequest{Quantity: 1, Reason: "x"})
	assert.True(t, IsUnauthenticated(err))
}

func TestInventoryService_ListTransactions(t *testing.T) {
	ctx := context.Background()
	actor := newActor(models.RoleWarehouse)
	svc, store := newInventoryService()
	item := seedInventory(t, store, "BAG-01", 0)

	for i := 0; i < 3; i++ {
		_, err := svc.ReceiveStock(ctx, actor, item.ID, &ReceiveStockRequest{Quantity: i + 1, Reason: "restock"})
		require.NoError(t, err)
	}

	entries, total, err := svc.ListTransactions(ctx, item.ID, utils.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].ChangeAmount)

	_, _, err = svc.ListTransactions(ctx, uuid.New(), utils.PaginationParams{Page: 1, Limit: 2})
	assert.True(t, IsNotFound(err))
}

func TestInventoryService_ListItemsLowStock(t *testing.T) {
	ctx := context.Background()
	svc, store := newInventoryService()
	low := &models.InventoryItem{Name: "Ink", SKU: "INK-1", Quantity: 2, LowStockThreshold: 5}
	ok := &models.InventoryItem{Name: "Paper", SKU: "PAP-1", Quantity: 50, LowStockThreshold: 5}
	require.NoError(t, store.Inventory().Create(ctx, low))
	require.NoError(t, store.Inventory().Create(ctx, ok))

	items, total, err := svc.ListItems(ctx, repositories.InventoryFilter{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "INK-1", items[0].SKU)
}
