package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	require.NoError(t, i18n.Initialize("../i18n/locales", "ru"))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.Error{Kind: services.KindValidation, Key: i18n.KeyStageInvalid}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", &services.Error{Kind: services.KindNotFound, Key: i18n.KeyOrderItemNotFound}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthenticated", &services.Error{Kind: services.KindUnauthenticated, Key: i18n.KeyAuthRequired}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.Error{Kind: services.KindForbidden, Key: i18n.KeyAdminAccessDenied}, http.StatusForbidden, "FORBIDDEN"},
		{"conflict", &services.Error{Kind: services.KindConflict, Key: i18n.KeyInventorySKUExists}, http.StatusConflict, "CONFLICT"},
		{"persistence", &services.Error{Kind: services.KindPersistence, Key: i18n.KeyInternalError, Err: errors.New("pq: deadlock detected")}, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Set("lang", "en")

			respondError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp utils.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotContains(t, resp.Error.Message, "deadlock")
			assert.NotContains(t, resp.Error.Message, "boom")
		})
	}
}

func TestRespondError_ValidationFields(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &services.Error{
		Kind:   services.KindValidation,
		Key:    i18n.KeyDefectInvalidQuantity,
		Fields: []utils.ValidationError{{Field: "quantity", Message: "quantity must be greater than 0"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"quantity"`)
}
