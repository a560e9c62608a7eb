// internal/handlers/inventory.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type InventoryHandler struct {
	inventoryService *services.InventoryService
}

func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// POST /inventory
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req services.CreateInventoryItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), utils.GetActorFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInventoryCreated),
		"item":    item,
	})
}

// GET /inventory
func (h *InventoryHandler) ListItems(c *gin.Context) {
	lowStock, _ := strconv.ParseBool(c.Query("low_stock"))
	filter := repositories.InventoryFilter{
		PaginationParams: utils.GetPaginationParams(c),
		LowStock:         lowStock,
	}

	items, total, err := h.inventoryService.ListItems(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, filter.PaginationParams))
}

// GET /inventory/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyInventoryNotFound)
	if !ok {
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, item)
}

// POST /inventory/:id/receipts
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyInventoryNotFound)
	if !ok {
		return
	}
	var req services.ReceiveStockRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.inventoryService.ReceiveStock(c.Request.Context(), utils.GetActorFromContext(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyInventoryReceived),
		"receipt": receipt,
	})
}

// GET /inventory/:id/transactions
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyInventoryNotFound)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	entries, total, err := h.inventoryService.ListTransactions(c.Request.Context(), id, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(entries, total, params))
}
