package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps these codes to
// user-facing copy.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked = "AUTH_TOKEN_REVOKED"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (PRODUCT_ / OPTION_) ====================
	ProductNotFound       = "PRODUCT_NOT_FOUND"
	ProductSlugExists     = "PRODUCT_SLUG_EXISTS"
	OptionGroupNotFound   = "OPTION_GROUP_NOT_FOUND"
	OptionValueNotFound   = "OPTION_VALUE_NOT_FOUND"
	OptionGroupMismatch   = "OPTION_GROUP_MISMATCH"
	OptionInvalidChaining = "OPTION_INVALID_CHAINING"

	// ==================== Upsells (UPSELL_) ====================
	UpsellNotFound     = "UPSELL_NOT_FOUND"
	UpsellEmptyBundle  = "UPSELL_EMPTY_BUNDLE"
	UpsellNoComparison = "UPSELL_NO_COMPARISON"

	// ==================== Collections (COLLECTION_) ====================
	CollectionNotFound   = "COLLECTION_NOT_FOUND"
	CollectionSlugExists = "COLLECTION_SLUG_EXISTS"

	// ==================== Cart (CART_) ====================
	CartLineNotFound = "CART_LINE_NOT_FOUND"
	CartEmpty        = "CART_EMPTY"

	// ==================== Orders (ORDER_) ====================
	OrderNotFound      = "ORDER_NOT_FOUND"
	OrderInvalidStatus = "ORDER_INVALID_STATUS"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
