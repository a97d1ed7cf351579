package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo is the parsed form of a lower-layer error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts repository/database errors into response codes.
// Raw driver messages are never exposed to clients.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// PostgreSQL constraint violations carry SQLSTATE codes on pq.Error
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return parseUniqueViolation(pqErr)
		case "23503": // foreign_key_violation
			return ErrorInfo{
				Code:    ResourceConflict,
				Message: "Operation conflicts with related data",
			}
		case "23502": // not_null_violation
			return ErrorInfo{
				Code:    ValidationRequired,
				Message: "A required field is missing",
			}
		case "23514": // check_violation
			return ErrorInfo{
				Code:    ValidationInvalidRange,
				Message: "A field value is out of range",
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "A backing service is unavailable, please try again later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Something went wrong, please try again later",
	}
}

func parseUniqueViolation(pqErr *pq.Error) ErrorInfo {
	constraint := strings.ToLower(pqErr.Constraint)

	if strings.Contains(constraint, "products") && strings.Contains(constraint, "slug") {
		return ErrorInfo{Code: ProductSlugExists, Message: "A product with this slug already exists"}
	}
	if strings.Contains(constraint, "collections") && strings.Contains(constraint, "slug") {
		return ErrorInfo{Code: CollectionSlugExists, Message: "A collection with this slug already exists"}
	}
	if strings.Contains(constraint, "variant_id") {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This cart line already exists"}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "option"):
		return "Option not found"
	case strings.Contains(contextLower, "upsell"):
		return "Upsell not found"
	case strings.Contains(contextLower, "collection"):
		return "Collection not found"
	case strings.Contains(contextLower, "cart"):
		return "Cart line not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	}

	return "Requested resource not found"
}
