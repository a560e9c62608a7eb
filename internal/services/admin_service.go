// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/config"
	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type AdminService struct {
	store repositories.Store
	audit *AuditService
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"max=255"`
	Role     string `json:"role" validate:"required,user_role"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,user_status"`
}

func NewAdminService(store repositories.Store, audit *AuditService) *AdminService {
	return &AdminService{store: store, audit: audit}
}

// requireAdmin rejects non-admin actors and records the attempt.
func (s *AdminService) requireAdmin(ctx context.Context, actor *models.Actor) error {
	err := RequireAdmin(actor)
	if IsForbidden(err) {
		s.audit.LogSecurityEvent(ctx, SecurityEntry{
			Type:     SecurityAccessDenied,
			Severity: SeverityWarning,
			UserID:   actor.IDPtr(),
			Details:  models.JSONB{"role": string(actor.Role)},
		})
	}
	return err
}

func (s *AdminService) CreateUser(ctx context.Context, actor *models.Actor, req *CreateUserRequest) (*models.User, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(i18n.KeyValidationInvalid, err)
	}

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		FullName: req.FullName,
		Role:     models.Role(req.Role),
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, newPersistenceError(fmt.Errorf("failed to hash password: %w", err))
	}

	err := s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		exists, err := tx.Users().ExistsByEmailOrUsername(ctx, user.Email, user.Username)
		if err != nil {
			return err
		}
		if exists {
			return newConflictError(i18n.KeyUserExists, nil)
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return newConflictError(i18n.KeyUserExists, err)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.audit.LogAction(ctx, tx.Audit(), actor, ActionUserCreated, EntityUser, user.ID.String(), models.JSONB{
			"username": user.Username,
			"role":     string(user.Role),
		})
	})
	if err != nil {
		return nil, s.audit.failure(ctx, actor, err, models.JSONB{"operation": "create_user"})
	}
	return user, nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor *models.Actor, params utils.PaginationParams) ([]models.User, int64, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, 0, err
	}
	users, total, err := s.store.Users().List(ctx, params)
	if err != nil {
		return nil, 0, newPersistenceError(err)
	}
	return users, total, nil
}

func (s *AdminService) UpdateUserRole(ctx context.Context, actor *models.Actor, id uuid.UUID, req *UpdateUserRoleRequest) error {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return newValidationError(i18n.KeyValidationInvalid, err)
	}

	role := models.Role(req.Role)
	return s.updateUser(ctx, actor, id, ActionUserRoleChanged, models.JSONB{"role": req.Role}, func(tx repositories.Repositories) error {
		return tx.Users().UpdateRole(ctx, id, role)
	})
}

func (s *AdminService) UpdateUserStatus(ctx context.Context, actor *models.Actor, id uuid.UUID, req *UpdateUserStatusRequest) error {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return newValidationError(i18n.KeyValidationInvalid, err)
	}
	if id == actor.ID && models.UserStatus(req.Status) == models.UserStatusBlocked {
		return &Error{Kind: KindValidation, Key: i18n.KeyValidationInvalid}
	}

	status := models.UserStatus(req.Status)
	return s.updateUser(ctx, actor, id, ActionUserStatusChanged, models.JSONB{"status": req.Status}, func(tx repositories.Repositories) error {
		return tx.Users().UpdateStatus(ctx, id, status)
	})
}

func (s *AdminService) updateUser(ctx context.Context, actor *models.Actor, id uuid.UUID, action string, details models.JSONB, mutate func(tx repositories.Repositories) error) error {
	err := s.store.Transaction(ctx, func(tx repositories.Repositories) error {
		if err := mutate(tx); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newNotFoundError(i18n.KeyUserNotFound)
			}
			return err
		}
		return s.audit.LogAction(ctx, tx.Audit(), actor, action, EntityUser, id.String(), details)
	})
	if err != nil {
		return s.audit.failure(ctx, actor, err, models.JSONB{"operation": action, "user_id": id.String()})
	}
	return nil
}

func (s *AdminService) ListAuditLogs(ctx context.Context, actor *models.Actor, filter repositories.AuditFilter) ([]models.AuditLog, int64, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, 0, err
	}
	logs, total, err := s.store.Audit().ListAuditLogs(ctx, filter)
	if err != nil {
		return nil, 0, newPersistenceError(err)
	}
	return logs, total, nil
}

// EnsureAdmin creates the seed administrator when no admin account exists.
// It reports whether a user was created.
func (s *AdminService) EnsureAdmin(ctx context.Context, seed config.AdminSeedConfig) (bool, error) {
	count, err := s.store.Users().CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if seed.Password == "" {
		return false, errors.New("no admin user exists and ADMIN_PASSWORD is not set")
	}

	user := &models.User{
		Username: seed.Username,
		Email:    strings.ToLower(seed.Email),
		Role:     models.RoleAdmin,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(seed.Password); err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}
	return true, nil
}
