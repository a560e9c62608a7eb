// internal/services/audit_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
)

// Audit actions.
const (
	ActionStageUpdated      = "production.stage_updated"
	ActionDefectReported    = "production.defect_reported"
	ActionOrderCreated      = "order.created"
	ActionOrderStatus       = "order.status_changed"
	ActionOrderPriority     = "order.priority_changed"
	ActionAttachmentAdded   = "order.attachment_added"
	ActionClientCreated     = "client.created"
	ActionInventoryCreated  = "inventory.created"
	ActionInventoryReceived = "inventory.received"
	ActionUserCreated       = "user.created"
	ActionUserRoleChanged   = "user.role_changed"
	ActionUserStatusChanged = "user.status_changed"
)

// Audited entity types.
const (
	EntityOrderItem = "order_item"
	EntityOrder     = "order"
	EntityClient    = "client"
	EntityInventory = "inventory_item"
	EntityUser      = "user"
)

// Security event types.
const (
	SecurityLoginFailed  = "login_failed"
	SecurityLoginBlocked = "login_blocked"
	SecurityAccessDenied = "access_denied"
	SecurityInvalidToken = "invalid_token"
	SecurityRateLimited  = "rate_limited"

	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

const (
	defaultSinkTimeout    = 5 * time.Second
	requestInfoContextKey = requestInfoKey("request_info")
)

type requestInfoKey string

type requestInfo struct {
	Method string
	Path   string
}

// ContextWithRequest records the HTTP method and path so the error sink can
// attribute failures without handlers passing them down explicitly.
func ContextWithRequest(ctx context.Context, method, path string) context.Context {
	return context.WithValue(ctx, requestInfoContextKey, requestInfo{Method: method, Path: path})
}

func requestFromContext(ctx context.Context) requestInfo {
	if info, ok := ctx.Value(requestInfoContextKey).(requestInfo); ok {
		return info
	}
	return requestInfo{}
}

type ErrorEntry struct {
	Err     error
	Path    string
	Method  string
	UserID  *uuid.UUID
	Details models.JSONB
}

type SecurityEntry struct {
	Type      string
	Severity  string
	UserID    *uuid.UUID
	IP        string
	UserAgent string
	Details   models.JSONB
}

type AuditService struct {
	repo   repositories.AuditRepository
	logger *logrus.Logger
}

func NewAuditService(repo repositories.AuditRepository, logger *logrus.Logger) *AuditService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuditService{repo: repo, logger: logger}
}

// LogAction appends an audit entry through repo, which is normally the
// transaction-scoped repository of the operation being audited. A nil repo
// writes outside any transaction.
func (s *AuditService) LogAction(ctx context.Context, repo repositories.AuditRepository, actor *models.Actor, action, entityType, entityID string, details models.JSONB) error {
	if repo == nil {
		repo = s.repo
	}

	entry := &models.AuditLog{
		UserID:     actor.IDPtr(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := repo.CreateAuditLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log %s: %w", action, err)
	}
	return nil
}

// LogError records a persistence failure. It never fails: if the error row
// cannot be written the failure only reaches the process log.
func (s *AuditService) LogError(ctx context.Context, entry ErrorEntry) {
	info := requestFromContext(ctx)
	if entry.Path == "" {
		entry.Path = info.Path
	}
	if entry.Method == "" {
		entry.Method = info.Method
	}

	message := "unknown error"
	if entry.Err != nil {
		message = entry.Err.Error()
	}

	fields := logrus.Fields{"path": entry.Path, "method": entry.Method}
	if entry.UserID != nil {
		fields["user_id"] = entry.UserID.String()
	}
	for k, v := range entry.Details {
		fields[k] = v
	}
	s.logger.WithFields(fields).Error(message)

	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultSinkTimeout)
	defer cancel()

	row := &models.ErrorLog{
		Message:   message,
		Path:      entry.Path,
		Method:    entry.Method,
		UserID:    entry.UserID,
		Details:   entry.Details,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateErrorLog(sinkCtx, row); err != nil {
		s.logger.WithError(err).Warn("failed to persist error log")
	}
}

// LogSecurityEvent records a security-relevant event. It never fails.
func (s *AuditService) LogSecurityEvent(ctx context.Context, entry SecurityEntry) {
	if entry.Severity == "" {
		entry.Severity = SeverityInfo
	}

	s.logger.WithFields(logrus.Fields{
		"event":    entry.Type,
		"severity": entry.Severity,
		"ip":       entry.IP,
	}).Warn("security event")

	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultSinkTimeout)
	defer cancel()

	event := &models.SecurityEvent{
		EventType: entry.Type,
		Severity:  entry.Severity,
		UserID:    entry.UserID,
		IPAddress: entry.IP,
		UserAgent: entry.UserAgent,
		Details:   entry.Details,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateSecurityEvent(sinkCtx, event); err != nil {
		s.logger.WithError(err).Warn("failed to persist security event")
	}
}

// failure passes service errors through unchanged and records anything else
// in the error sink, returning a generic persistence error.
func (s *AuditService) failure(ctx context.Context, actor *models.Actor, err error, details models.JSONB) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	s.LogError(ctx, ErrorEntry{Err: err, UserID: actor.IDPtr(), Details: details})
	return newPersistenceError(err)
}
