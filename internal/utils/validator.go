// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/prodcrm-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("production_stage", validateProductionStage)
	validate.RegisterValidation("stage_status", validateStageStatus)
	validate.RegisterValidation("order_status", validateOrderStatus)
	validate.RegisterValidation("order_priority", validateOrderPriority)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("user_status", validateUserStatus)
	validate.RegisterValidation("notblank", validateNotBlank)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateProductionStage(fl validator.FieldLevel) bool {
	return models.ProductionStage(fl.Field().String()).IsValid()
}

func validateStageStatus(fl validator.FieldLevel) bool {
	return models.StageStatus(fl.Field().String()).IsValid()
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	return models.OrderStatus(fl.Field().String()).IsValid()
}

func validateOrderPriority(fl validator.FieldLevel) bool {
	return models.OrderPriority(fl.Field().String()).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).IsValid()
}

func validateUserStatus(fl validator.FieldLevel) bool {
	return models.UserStatus(fl.Field().String()).IsValid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return e.Field() + " must be a valid UUID"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "production_stage":
		return "Stage must be one of prep, print, application, packaging"
	case "stage_status":
		return "Status must be one of pending, in_progress, done, failed"
	case "order_status":
		return "Order status must be one of new, design, production, done, shipped, cancelled"
	case "order_priority":
		return "Priority must be one of normal, high, urgent"
	case "user_role":
		return "Role must be one of admin, manager, production, warehouse"
	case "user_status":
		return "Status must be one of active, blocked"
	default:
		return e.Field() + " is invalid"
	}
}
