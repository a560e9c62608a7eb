// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyNotFound      = "common.not_found"
	KeyInternalError = "common.internal_error"
	KeyConflict      = "common.conflict"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserBlocked        = "auth.user_blocked"
	KeyAuthLoginSuccess       = "auth.login_success"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
	KeyAdminUserCreated  = "admin.user_created"
	KeyAdminUserUpdated  = "admin.user_updated"
	KeyUserNotFound      = "user.not_found"
	KeyUserExists        = "user.exists"

	// Orders
	KeyOrderCreated        = "order.created"
	KeyOrderUpdated        = "order.updated"
	KeyOrderNotFound       = "order.not_found"
	KeyClientCreated       = "client.created"
	KeyClientNotFound      = "client.not_found"
	KeyAttachmentUploaded  = "attachment.uploaded"
	KeyAttachmentInvalid   = "attachment.invalid"
	KeyAttachmentTooLarge  = "attachment.too_large"
	KeyAttachmentBadFormat = "attachment.bad_format"

	// Production
	KeyOrderItemNotFound     = "production.item_not_found"
	KeyStageUpdated          = "production.stage_updated"
	KeyDefectReported        = "production.defect_reported"
	KeyDefectNoInventoryLink = "production.defect_no_inventory"
	KeyDefectInvalidQuantity = "production.defect_invalid_quantity"
	KeyDefectInvalidReason   = "production.defect_invalid_reason"
	KeyStageInvalid          = "production.stage_invalid"
	KeyStageStatusInvalid    = "production.stage_status_invalid"
	KeyOrderItemIDInvalid    = "production.item_id_invalid"
	KeyProductionReadDenied  = "production.read_denied"

	// Inventory
	KeyInventoryCreated   = "inventory.created"
	KeyInventoryNotFound  = "inventory.not_found"
	KeyInventoryReceived  = "inventory.received"
	KeyInventorySKUExists = "inventory.sku_exists"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
