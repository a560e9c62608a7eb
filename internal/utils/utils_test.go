package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("utils-test-secret")
	id := uuid.New()

	tok, err := GenerateJWT(id, "anna", "production", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.UserID)
	assert.Equal(t, "anna", claims.Username)
	assert.Equal(t, "production", claims.Role)

	SetJWTSecret("rotated")
	_, err = ValidateJWT(tok)
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	SetJWTSecret("utils-test-secret")
	tok, err := GenerateJWT(uuid.New(), "anna", "production", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(tok)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	SetJWTSecret("utils-test-secret")
	id := uuid.New()

	refresh, err := GenerateRefreshToken(id, 24)
	require.NoError(t, err)
	subject, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id.String(), subject)

	// access tokens carry no refresh audience
	access, err := GenerateJWT(id, "anna", "production", 1)
	require.NoError(t, err)
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	number, err := GenerateOrderNumber(now)
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-20260115-\d{4}$`, number)
}

type stageInput struct {
	OrderItemID string `validate:"required,uuid"`
	Stage       string `validate:"required,production_stage"`
	Status      string `validate:"required,stage_status"`
	Reason      string `validate:"omitempty,notblank"`
}

func TestValidateStruct(t *testing.T) {
	valid := stageInput{OrderItemID: uuid.NewString(), Stage: "print", Status: "in_progress"}

	tests := []struct {
		name      string
		mutate    func(in *stageInput)
		wantField string
		wantTag   string
	}{
		{"valid", func(in *stageInput) {}, "", ""},
		{"bad id", func(in *stageInput) { in.OrderItemID = "item-1" }, "orderitemid", "uuid"},
		{"unknown stage", func(in *stageInput) { in.Stage = "painting" }, "stage", "production_stage"},
		{"unknown status", func(in *stageInput) { in.Status = "finished" }, "status", "stage_status"},
		{"blank reason", func(in *stageInput) { in.Reason = "   " }, "reason", "notblank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			errs := GetValidationErrors(ValidateStruct(&in))
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
			assert.Equal(t, tt.wantTag, errs[0].Tag)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}

func TestPaginationParams(t *testing.T) {
	p := PaginationParams{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())
	assert.Zero(t, PaginationParams{Limit: 20}.Offset())

	result := CreatePaginationResult([]int{}, 41, p)
	assert.Equal(t, 3, result.TotalPages)

	assert.Zero(t, CreatePaginationResult(nil, 10, PaginationParams{}).TotalPages)
}
