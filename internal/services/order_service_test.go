package services

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/prodcrm-backend/internal/config"
	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories/memstore"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

type orderFixture struct {
	svc     *OrderService
	store   *memstore.Store
	cache   *fakeStatsCache
	storage *fakeStorage
	actor   *models.Actor
}

func newOrderFixture() *orderFixture {
	store := memstore.New()
	audit := NewAuditService(store.Audit(), quietLogger())
	cache := &fakeStatsCache{}
	production := NewProductionService(store, audit, cache, config.ProductionConfig{StatsScanLimit: 10, ItemsPageSize: 10})
	storage := &fakeStorage{}
	svc := NewOrderService(store, audit, storage, production)
	svc.now = func() time.Time { return fixedNow }
	return &orderFixture{svc: svc, store: store, cache: cache, storage: storage, actor: newActor(models.RoleManager)}
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	client := seedClient(t, f.store)
	stock := seedInventory(t, f.store, "MUG-1", 10)

	order, err := f.svc.CreateOrder(ctx, f.actor, &CreateOrderRequest{
		ClientID: client.ID,
		Priority: "urgent",
		Tags:     []string{"mugs", "corporate"},
		Items: []CreateOrderItemRequest{
			{Description: "Logo mug", Quantity: 5, InventoryID: &stock.ID},
			{Description: "Gift box", Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ORD-20260314-\d{4}$`), order.OrderNumber)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Equal(t, models.OrderPriorityUrgent, order.Priority)
	assert.Equal(t, f.actor.ID, order.CreatedBy)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	for _, item := range stored.Items {
		for _, stage := range models.ProductionStages {
			assert.Equal(t, models.StageStatusPending, item.StageStatus(stage))
		}
	}

	logs := f.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, ActionOrderCreated, logs[0].Action)
}

func TestOrderService_CreateOrderRejects(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	client := seedClient(t, f.store)
	missing := uuid.New()

	tests := []struct {
		name  string
		req   CreateOrderRequest
		check func(error) bool
	}{
		{"no items", CreateOrderRequest{ClientID: client.ID}, IsValidation},
		{"zero quantity", CreateOrderRequest{ClientID: client.ID, Items: []CreateOrderItemRequest{{Description: "x", Quantity: 0}}}, IsValidation},
		{"bad priority", CreateOrderRequest{ClientID: client.ID, Priority: "asap", Items: []CreateOrderItemRequest{{Description: "x", Quantity: 1}}}, IsValidation},
		{"unknown client", CreateOrderRequest{ClientID: uuid.New(), Items: []CreateOrderItemRequest{{Description: "x", Quantity: 1}}}, IsNotFound},
		{"unknown stock", CreateOrderRequest{ClientID: client.ID, Items: []CreateOrderItemRequest{{Description: "x", Quantity: 1, InventoryID: &missing}}}, IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.CreateOrder(ctx, f.actor, &req)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
	assert.Empty(t, f.store.AuditLogs())
}

func TestOrderService_StatusAndPriorityInvalidateStats(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	order := seedOrder(t, f.store, "ORD-20260314-0900", models.OrderStatusNew, models.OrderPriorityNormal, nil)

	require.NoError(t, f.svc.UpdateStatus(ctx, f.actor, order.ID, &UpdateOrderStatusRequest{Status: "production"}))
	require.NoError(t, f.svc.UpdatePriority(ctx, f.actor, order.ID, &UpdateOrderPriorityRequest{Priority: "high"}))
	assert.Equal(t, 2, f.cache.invalidated)

	stored, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProduction, stored.Status)
	assert.Equal(t, models.OrderPriorityHigh, stored.Priority)

	logs := f.store.AuditLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, ActionOrderStatus, logs[0].Action)
	assert.Equal(t, ActionOrderPriority, logs[1].Action)

	err = f.svc.UpdateStatus(ctx, f.actor, order.ID, &UpdateOrderStatusRequest{Status: "archived"})
	assert.True(t, IsValidation(err))

	err = f.svc.UpdateStatus(ctx, f.actor, uuid.New(), &UpdateOrderStatusRequest{Status: "done"})
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 2, f.cache.invalidated)
}

func TestOrderService_AddAttachment(t *testing.T) {
	ctx := context.Background()

	t.Run("stores an image mockup", func(t *testing.T) {
		f := newOrderFixture()
		order := seedOrder(t, f.store, "ORD-20260314-0901", models.OrderStatusDesign, models.OrderPriorityNormal, nil)

		attachment, err := f.svc.AddAttachment(ctx, f.actor, order.ID, "mockup.png", bytes.NewReader(pngHeader))
		require.NoError(t, err)
		assert.Equal(t, "image/png", attachment.MimeType)
		assert.Equal(t, "https://cdn.example/order-attachments/mockup.png", attachment.URL)

		stored, err := f.svc.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Attachments, 1)
	})

	t.Run("rejects non-images", func(t *testing.T) {
		f := newOrderFixture()
		order := seedOrder(t, f.store, "ORD-20260314-0902", models.OrderStatusDesign, models.OrderPriorityNormal, nil)

		_, err := f.svc.AddAttachment(ctx, f.actor, order.ID, "mockup.png", bytes.NewReader([]byte("plain text")))
		var svcErr *Error
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, i18n.KeyAttachmentBadFormat, svcErr.Key)

		_, err = f.svc.AddAttachment(ctx, f.actor, order.ID, "mockup.exe", bytes.NewReader(pngHeader))
		assert.True(t, IsValidation(err))
		assert.Empty(t, f.storage.uploads)
	})

	t.Run("removes the upload when the row cannot be saved", func(t *testing.T) {
		f := newOrderFixture()
		order := seedOrder(t, f.store, "ORD-20260314-0903", models.OrderStatusDesign, models.OrderPriorityNormal, nil)
		f.store.FailOn = func(op string) error {
			if op == "orders.add_attachment" {
				return errors.New("timeout")
			}
			return nil
		}

		_, err := f.svc.AddAttachment(ctx, f.actor, order.ID, "mockup.png", bytes.NewReader(pngHeader))
		assert.Equal(t, KindPersistence, KindOf(err))
		assert.Equal(t, f.storage.uploads, f.storage.deleted)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.svc.AddAttachment(ctx, f.actor, uuid.New(), "mockup.png", bytes.NewReader(pngHeader))
		assert.True(t, IsNotFound(err))
	})
}

func TestOrderService_Clients(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	client, err := f.svc.CreateClient(ctx, f.actor, &CreateClientRequest{Name: "Bakery", Email: "orders@bakery.example"})
	require.NoError(t, err)
	assert.Equal(t, f.actor.ID, client.CreatedBy)

	_, err = f.svc.CreateClient(ctx, f.actor, &CreateClientRequest{Name: "Bad", Email: "not-an-email"})
	assert.True(t, IsValidation(err))

	_, err = f.svc.GetClient(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}
