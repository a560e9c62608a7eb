package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories/memstore"
)

func TestAuditService_LogErrorUsesRequestContext(t *testing.T) {
	store := memstore.New()
	svc := NewAuditService(store.Audit(), quietLogger())
	userID := uuid.New()

	ctx := ContextWithRequest(context.Background(), "POST", "/v1/production/items/x/defects")
	svc.LogError(ctx, ErrorEntry{Err: errors.New("boom"), UserID: &userID, Details: models.JSONB{"operation": "report_defect"}})

	logs := store.ErrorLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "boom", logs[0].Message)
	assert.Equal(t, "POST", logs[0].Method)
	assert.Equal(t, "/v1/production/items/x/defects", logs[0].Path)
	assert.Equal(t, userID, *logs[0].UserID)
}

func TestAuditService_SinksNeverFail(t *testing.T) {
	store := memstore.New()
	store.FailOn = func(string) error { return errors.New("database is down") }
	svc := NewAuditService(store.Audit(), quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotPanics(t, func() {
		svc.LogError(ctx, ErrorEntry{Err: errors.New("boom")})
		svc.LogSecurityEvent(ctx, SecurityEntry{Type: SecurityInvalidToken})
	})
	assert.Empty(t, store.ErrorLogs())
	assert.Empty(t, store.SecurityEvents())
}

func TestAuditService_LogActionDefaultsToOwnRepository(t *testing.T) {
	store := memstore.New()
	svc := NewAuditService(store.Audit(), quietLogger())
	actor := newActor(models.RoleAdmin)

	require.NoError(t, svc.LogAction(context.Background(), nil, actor, ActionClientCreated, EntityClient, "c-1", nil))
	require.NoError(t, svc.LogAction(context.Background(), nil, nil, ActionClientCreated, EntityClient, "c-2", nil))

	logs := store.AuditLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, actor.ID, *logs[0].UserID)
	assert.Nil(t, logs[1].UserID)
}

func TestErrorKinds(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), newNotFoundError(i18n.KeyOrderNotFound))
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, KindPersistence, KindOf(errors.New("plain")))
	assert.False(t, IsValidation(nil))

	assert.True(t, IsUnauthenticated(RequireActor(nil)))
	assert.True(t, IsForbidden(RequireAdmin(newActor(models.RoleProduction))))
	assert.NoError(t, RequireAdmin(newActor(models.RoleAdmin)))

	err := newPersistenceError(errors.New("pq: deadlock detected"))
	assert.Equal(t, i18n.KeyInternalError, err.Key)
	assert.ErrorContains(t, err, "deadlock")
	assert.Equal(t, "persistence", err.Kind.String())
}
