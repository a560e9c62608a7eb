// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.CreateUser(c.Request.Context(), utils.GetActorFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAdminUserCreated),
		"user":    user,
	})
}

// GET /admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.adminService.ListUsers(c.Request.Context(), utils.GetActorFromContext(c), params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// PUT /admin/users/:id/role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyUserNotFound)
	if !ok {
		return
	}
	var req services.UpdateUserRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.adminService.UpdateUserRole(c.Request.Context(), utils.GetActorFromContext(c), id, &req); err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyAdminUserUpdated)})
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id", i18n.KeyUserNotFound)
	if !ok {
		return
	}
	var req services.UpdateUserStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.adminService.UpdateUserStatus(c.Request.Context(), utils.GetActorFromContext(c), id, &req); err != nil {
		respondError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyAdminUserUpdated)})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	filter := repositories.AuditFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Action:           c.Query("action"),
		EntityType:       c.Query("entity_type"),
		EntityID:         c.Query("entity_id"),
	}
	if userID := c.Query("user_id"); userID != "" {
		if id, err := uuid.Parse(userID); err == nil {
			filter.UserID = &id
		}
	}

	logs, total, err := h.adminService.ListAuditLogs(c.Request.Context(), utils.GetActorFromContext(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(logs, total, filter.PaginationParams))
}
