// internal/handlers/orders.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /clients
func (h *OrderHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, err := h.orderService.CreateClient(c.Request.Context(), utils.GetActorFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyClientCreated),
		"client":  client,
	})
}

// GET /clients
func (h *OrderHandler) ListClients(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	clients, total, err := h.orderService.ListClients(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(clients, total, params))
}

// GET /clients/:id
func (h *OrderHandler) GetClient(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyClientNotFound)
	if !ok {
		return
	}

	client, err := h.orderService.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, client)
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), utils.GetActorFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCreated),
		"order":   order,
	})
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := repositories.OrderFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Tag:              c.Query("tag"),
	}

	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		filter.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.OrderPriority(priority)
		filter.Priority = &p
	}
	if clientID := c.Query("client_id"); clientID != "" {
		if id, err := uuid.Parse(clientID); err == nil {
			filter.ClientID = &id
		}
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, filter.PaginationParams))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// PUT /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}
	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.orderService.UpdateStatus(c.Request.Context(), utils.GetActorFromContext(c), id, &req); err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyOrderUpdated)})
}

// PUT /orders/:id/priority
func (h *OrderHandler) UpdatePriority(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}
	var req services.UpdateOrderPriorityRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.orderService.UpdatePriority(c.Request.Context(), utils.GetActorFromContext(c), id, &req); err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyOrderUpdated)})
}

// POST /orders/:id/attachments
func (h *OrderHandler) UploadAttachment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := paramUUID(c, "id", i18n.KeyOrderNotFound)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyAttachmentInvalid), nil)
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyAttachmentInvalid), nil)
		return
	}
	defer file.Close()

	attachment, err := h.orderService.AddAttachment(c.Request.Context(), utils.GetActorFromContext(c), id, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAttachmentUploaded),
		"attachment": attachment,
	})
}
