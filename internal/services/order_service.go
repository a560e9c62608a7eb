// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

const orderNumberAttempts = 5

type OrderService struct {
	store      repositories.Store
	audit      *AuditService
	storage    FileStorage
	production *ProductionService
	now        func() time.Time
}

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=255"`
	Company string `json:"company" validate:"max=255"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Notes   string `json:"notes"`
}

type CreateOrderItemRequest struct {
	Description string     `json:"description" validate:"required,notblank"`
	Quantity    int        `json:"quantity" validate:"required,gt=0"`
	InventoryID *uuid.UUID `json:"inventory_id"`
}

type CreateOrderRequest struct {
	ClientID uuid.UUID                `json:"client_id" validate:"required"`
	Priority string                   `json:"priority" validate:"omitempty,order_priority"`
	Deadline *time.Time               `json:"deadline"`
	Notes    string                   `json:"notes"`
	Tags     []string                 `json:"tags" validate:"max=20,dive,notblank,max=50"`
	Items    []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

type UpdateOrderPriorityRequest struct {
	Priority string `json:"priority" validate:"required,order_priority"`
}

func NewOrderService(store repositories.Store, audit *AuditService, storage FileStorage, production *ProductionService) *OrderService {
	return &OrderService{
		store:      store,
		audit:      audit,
		storage:    storage,
		production: production,
		now:        time.Now,
	}
}

// Clients

func (s *OrderService) CreateClient(ctx context.Context, actor *models.Actor, req *CreateClientRequest) (*models.Client, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(i18n.KeyValidationInvalid, err)
	}

	client := &models.Client{
		Name:      strings.TrimSpace(req.Name),
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
		CreatedBy: actor.ID,
	}
	err := s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		if err := tx.Clients().Create(ctx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		return s.audit.LogAction(ctx, tx.Audit(), actor, ActionClientCreated, EntityClient, client.ID.String(), models.JSONB{
			"name": client.Name,
		})
	})
	if err != nil {
		return nil, s.audit.failure(ctx, actor, err, models.JSONB{"operation": "create_client"})
	}
	return client, nil
}

func (s *OrderService) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.store.Clients().FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newNotFoundError(i18n.KeyClientNotFound)
	}
	if err != nil {
		return nil, newPersistenceError(err)
	}
	return client, nil
}

func (s *OrderService) ListClients(ctx context.Context, params utils.PaginationParams) ([]models.Client, int64, error) {
	clients, total, err := s.store.Clients().List(ctx, params)
	if err != nil {
		return nil, 0, newPersistenceError(err)
	}
	return clients, total, nil
}

// Orders

// CreateOrder places an order with its items. Every stage of every item
// starts as pending. Referenced client and inventory items must exist.
func (s *OrderService) CreateOrder(ctx context.Context, actor *models.Actor, req *CreateOrderRequest) (*models.Order, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(i18n.KeyValidationInvalid, err)
	}

	priority := models.OrderPriority(req.Priority)
	if priority == "" {
		priority = models.OrderPriorityNormal
	}

	var inventoryIDs []uuid.UUID
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		item := models.OrderItem{
			Description: strings.TrimSpace(itemReq.Description),
			Quantity:    itemReq.Quantity,
			InventoryID: itemReq.InventoryID,
		}
		for _, stage := range models.ProductionStages {
			item.SetStageStatus(stage, models.StageStatusPending)
		}
		if itemReq.InventoryID != nil {
			inventoryIDs = append(inventoryIDs, *itemReq.InventoryID)
		}
		items = append(items, item)
	}

	var order *models.Order
	create := func(tx repositories.Repositories) error {
		if _, err := tx.Clients().FindByID(ctx, req.ClientID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newNotFoundError(i18n.KeyClientNotFound)
			}
			return fmt.Errorf("failed to load client: %w", err)
		}

		ok, err := tx.Inventory().ExistAll(ctx, inventoryIDs)
		if err != nil {
			return err
		}
		if !ok {
			return newNotFoundError(i18n.KeyInventoryNotFound)
		}

		number, err := utils.GenerateOrderNumber(s.now())
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}
		order = &models.Order{
			OrderNumber: number,
			ClientID:    req.ClientID,
			Status:      models.OrderStatusNew,
			Priority:    priority,
			Deadline:    req.Deadline,
			Notes:       req.Notes,
			Tags:        pq.StringArray(req.Tags),
			CreatedBy:   actor.ID,
			Items:       append([]models.OrderItem(nil), items...),
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return s.audit.LogAction(ctx, tx.Audit(), actor, ActionOrderCreated, EntityOrder, order.ID.String(), models.JSONB{
			"order_number": order.OrderNumber,
			"items":        len(order.Items),
			"priority":     string(order.Priority),
		})
	}

	// A colliding order number aborts the transaction, so retry it whole.
	var err error
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		err = s.store.Transaction(ctx, create)
		if !errors.Is(err, repositories.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, s.audit.failure(ctx, actor, err, models.JSONB{"operation": "create_order"})
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newNotFoundError(i18n.KeyOrderNotFound)
	}
	if err != nil {
		return nil, newPersistenceError(err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, int64, error) {
	orders, total, err := s.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, 0, newPersistenceError(err)
	}
	return orders, total, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, actor *models.Actor, id uuid.UUID, req *UpdateOrderStatusRequest) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return newValidationError(i18n.KeyValidationInvalid, err)
	}

	status := models.OrderStatus(req.Status)
	return s.updateOrder(ctx, actor, id, ActionOrderStatus, models.JSONB{"status": req.Status}, func(tx repositories.Repositories) error {
		return tx.Orders().UpdateStatus(ctx, id, status)
	})
}

func (s *OrderService) UpdatePriority(ctx context.Context, actor *models.Actor, id uuid.UUID, req *UpdateOrderPriorityRequest) error {
	if err := RequireActor(actor); err != nil {
		return err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return newValidationError(i18n.KeyValidationInvalid, err)
	}

	priority := models.OrderPriority(req.Priority)
	return s.updateOrder(ctx, actor, id, ActionOrderPriority, models.JSONB{"priority": req.Priority}, func(tx repositories.Repositories) error {
		return tx.Orders().UpdatePriority(ctx, id, priority)
	})
}

// updateOrder runs one audited order mutation and drops cached production stats.
func (s *OrderService) updateOrder(ctx context.Context, actor *models.Actor, id uuid.UUID, action string, details models.JSONB, mutate func(tx repositories.Repositories) error) error {
	err := s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		if err := mutate(tx); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newNotFoundError(i18n.KeyOrderNotFound)
			}
			return err
		}
		return s.audit.LogAction(ctx, tx.Audit(), actor, action, EntityOrder, id.String(), details)
	})
	if err != nil {
		return s.audit.failure(ctx, actor, err, models.JSONB{"operation": action, "order_id": id.String()})
	}

	if s.production != nil {
		s.production.InvalidateStats(ctx)
	}
	return nil
}

// AddAttachment stores a mockup image and links it to the order.
func (s *OrderService) AddAttachment(ctx context.Context, actor *models.Actor, orderID uuid.UUID, fileName string, r io.Reader) (*models.Attachment, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}

	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}

	body, contentType, err := readAttachment(r, fileName)
	switch {
	case errors.Is(err, errAttachmentTooLarge):
		return nil, &Error{Kind: KindValidation, Key: i18n.KeyAttachmentTooLarge, Err: err}
	case errors.Is(err, errAttachmentBadFormat):
		return nil, &Error{Kind: KindValidation, Key: i18n.KeyAttachmentBadFormat, Err: err}
	case err != nil:
		return nil, &Error{Kind: KindValidation, Key: i18n.KeyAttachmentInvalid, Err: err}
	}

	upload, err := s.storage.Upload(ctx, body, fileName, contentType)
	if err != nil {
		return nil, s.audit.failure(ctx, actor, err, models.JSONB{"operation": "upload_attachment", "order_id": orderID.String()})
	}

	attachment := &models.Attachment{
		OrderID:    orderID,
		FileName:   fileName,
		URL:        upload.URL,
		StorageKey: upload.Key,
		MimeType:   upload.MimeType,
		Size:       upload.Size,
		UploadedBy: actor.ID,
	}
	err = s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		if err := tx.Orders().AddAttachment(ctx, attachment); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newNotFoundError(i18n.KeyOrderNotFound)
			}
			return fmt.Errorf("failed to save attachment: %w", err)
		}
		return s.audit.LogAction(ctx, tx.Audit(), actor, ActionAttachmentAdded, EntityOrder, orderID.String(), models.JSONB{
			"attachment_id": attachment.ID.String(),
			"file_name":     fileName,
		})
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, upload.Key); delErr != nil {
			s.audit.logger.WithError(delErr).Warn("failed to remove orphaned attachment")
		}
		return nil, s.audit.failure(ctx, actor, err, models.JSONB{"operation": "add_attachment", "order_id": orderID.String()})
	}
	return attachment, nil
}
