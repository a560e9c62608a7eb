// internal/handlers/production.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type ProductionHandler struct {
	productionService *services.ProductionService
}

func NewProductionHandler(productionService *services.ProductionService) *ProductionHandler {
	return &ProductionHandler{
		productionService: productionService,
	}
}

// GET /production/items
func (h *ProductionHandler) GetItems(c *gin.Context) {
	result, err := h.productionService.GetProductionItems(c.Request.Context(), utils.GetActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, result.Items, gin.H{
		"limit":  result.Limit,
		"capped": result.Capped,
	})
}

// GET /production/stats
func (h *ProductionHandler) GetStats(c *gin.Context) {
	stats, err := h.productionService.GetProductionStats(c.Request.Context(), utils.GetActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// PUT /production/items/:id/stages/:stage
func (h *ProductionHandler) UpdateStage(c *gin.Context) {
	var req services.UpdateStageRequest
	if !bindJSON(c, &req) {
		return
	}
	req.OrderItemID = c.Param("id")
	req.Stage = c.Param("stage")

	result, err := h.productionService.UpdateStage(c.Request.Context(), utils.GetActorFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyStageUpdated),
		"updated": result.Updated,
		"result":  result,
	})
}

// POST /production/items/:id/defects
func (h *ProductionHandler) ReportDefect(c *gin.Context) {
	var req services.ReportDefectRequest
	if !bindJSON(c, &req) {
		return
	}
	req.OrderItemID = c.Param("id")

	report, err := h.productionService.ReportDefect(c.Request.Context(), utils.GetActorFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyDefectReported),
		"defect":  report,
	})
}
