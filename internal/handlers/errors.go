// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

// respondError maps a service error onto the response envelope. Anything
// that is not a services.Error is reported as a generic internal error.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		utils.InternalErrorResponse(c)
		return
	}

	lang := utils.GetLangFromContext(c)
	message := translate(lang, svcErr.Key)

	switch svcErr.Kind {
	case services.KindValidation:
		var details interface{}
		if len(svcErr.Fields) > 0 {
			details = svcErr.Fields
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message, details)
	case services.KindNotFound:
		utils.NotFoundResponse(c, svcErr.Key)
	case services.KindUnauthenticated:
		utils.UnauthorizedResponse(c, message)
	case services.KindForbidden:
		utils.ForbiddenResponse(c, message)
	case services.KindConflict:
		utils.ConflictResponse(c, message)
	default:
		utils.InternalErrorResponse(c)
	}
}

func translate(lang, key string) string {
	if key == i18n.KeyValidationInvalid {
		return i18n.T(lang, key, "input")
	}
	return i18n.T(lang, key)
}

// bindJSON decodes the request body, answering 400 itself on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), nil)
		return false
	}
	return true
}

// paramUUID parses a path parameter, answering 404 with notFoundKey when it
// is not a UUID.
func paramUUID(c *gin.Context, name, notFoundKey string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.NotFoundResponse(c, notFoundKey)
		return uuid.Nil, false
	}
	return id, true
}
