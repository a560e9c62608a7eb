package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionStage(t *testing.T) {
	for _, stage := range ProductionStages {
		assert.True(t, stage.IsValid(), stage)
		assert.NotEmpty(t, stage.Column())
	}
	assert.False(t, ProductionStage("painting").IsValid())
	assert.Empty(t, ProductionStage("painting").Column())
}

func TestOrderItemStageStatus(t *testing.T) {
	item := &OrderItem{
		StagePrepStatus:        StageStatusPending,
		StagePrintStatus:       StageStatusPending,
		StageApplicationStatus: StageStatusPending,
		StagePackagingStatus:   StageStatusPending,
	}

	item.SetStageStatus(StageApplication, StageStatusFailed)

	assert.Equal(t, StageStatusFailed, item.StageStatus(StageApplication))
	assert.Equal(t, StageStatusPending, item.StageStatus(StagePrep))
	assert.Equal(t, StageStatusPending, item.StageStatus(StagePrint))
	assert.Equal(t, StageStatusPending, item.StageStatus(StagePackaging))
}

func TestOrderPriorityIsUrgent(t *testing.T) {
	assert.False(t, OrderPriorityNormal.IsUrgent())
	assert.True(t, OrderPriorityHigh.IsUrgent())
	assert.True(t, OrderPriorityUrgent.IsUrgent())
}

func TestJSONB(t *testing.T) {
	in := JSONB{"reason": "misprint", "quantity": float64(3)}
	raw, err := in.Value()
	require.NoError(t, err)

	var out JSONB
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, in, out)

	var empty JSONB
	assert.NoError(t, empty.Scan(nil))
}

func TestActor(t *testing.T) {
	var anonymous *Actor
	assert.False(t, anonymous.IsAdmin())
	assert.Nil(t, anonymous.IDPtr())

	admin := &Actor{ID: uuid.New(), Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	require.NotNil(t, admin.IDPtr())
	assert.Equal(t, admin.ID, *admin.IDPtr())
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("s3cret-pass"))
	assert.NoError(t, u.CheckPassword("s3cret-pass"))
	assert.Error(t, u.CheckPassword("wrong"))
}
