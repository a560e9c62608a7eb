// internal/repositories/audit.go
package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type auditRepository struct {
	db *gorm.DB
}

func (r *auditRepository) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	err := utils.ApplyPagination(query.Order("created_at DESC"), filter.PaginationParams).
		Preload("User").
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}

func (r *auditRepository) CreateErrorLog(ctx context.Context, entry *models.ErrorLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) CreateSecurityEvent(ctx context.Context, event *models.SecurityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
