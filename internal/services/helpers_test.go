package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories/memstore"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newActor(role models.Role) *models.Actor {
	return &models.Actor{ID: uuid.New(), Username: string(role) + "-user", Role: role}
}

func seedClient(t *testing.T, store *memstore.Store) *models.Client {
	t.Helper()
	client := &models.Client{Name: "Acme", CreatedBy: uuid.New()}
	require.NoError(t, store.Clients().Create(context.Background(), client))
	return client
}

func seedInventory(t *testing.T, store *memstore.Store, sku string, quantity int) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{Name: "Blank mug", SKU: sku, Quantity: quantity}
	require.NoError(t, store.Inventory().Create(context.Background(), item))
	return item
}

// seedOrder creates an order with one item, optionally linked to stock.
func seedOrder(t *testing.T, store *memstore.Store, number string, status models.OrderStatus, priority models.OrderPriority, inventoryID *uuid.UUID) *models.Order {
	t.Helper()
	client := seedClient(t, store)
	order := &models.Order{
		OrderNumber: number,
		ClientID:    client.ID,
		Status:      status,
		Priority:    priority,
		CreatedBy:   uuid.New(),
		Items: []models.OrderItem{
			{Description: "Printed mug", Quantity: 10, InventoryID: inventoryID},
		},
	}
	require.NoError(t, store.Orders().Create(context.Background(), order))
	return order
}

type fakeStatsCache struct {
	stats       *ProductionStats
	gets        int
	sets        int
	invalidated int
}

func (c *fakeStatsCache) GetStats(context.Context) (*ProductionStats, bool, error) {
	c.gets++
	return c.stats, c.stats != nil, nil
}

func (c *fakeStatsCache) SetStats(_ context.Context, stats *ProductionStats) error {
	c.sets++
	c.stats = stats
	return nil
}

func (c *fakeStatsCache) Invalidate(context.Context) error {
	c.invalidated++
	c.stats = nil
	return nil
}

type fakeStorage struct {
	uploads []string
	deleted []string
	err     error
}

func (f *fakeStorage) Upload(_ context.Context, body []byte, fileName, contentType string) (*UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	key := "order-attachments/" + fileName
	f.uploads = append(f.uploads, key)
	return &UploadResult{URL: "https://cdn.example/" + key, Key: key, Size: int64(len(body)), MimeType: contentType}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}
