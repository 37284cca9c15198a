package dto

import (
	"net/http"

	"github.com/pms/backend/internal/domain/shared"
)

// HTTP-level error codes for failures that never reach the domain
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// domainCodeHTTPStatus maps domain error codes to HTTP status codes
var domainCodeHTTPStatus = map[string]int{
	shared.CodeTenantNotFound:       http.StatusNotFound,
	shared.CodeTenantMisconfigured:  http.StatusUnprocessableEntity,
	shared.CodeConfigurationMissing: http.StatusInternalServerError,
	shared.CodeUnknownOperationKey:  http.StatusUnprocessableEntity,
	shared.CodeHandlerFailure:       http.StatusBadGateway,
	shared.CodePersistenceFailure:   http.StatusInternalServerError,
	shared.CodeNotFound:             http.StatusNotFound,
	shared.CodeInvalidInput:         http.StatusBadRequest,
	shared.CodeInvalidState:         http.StatusUnprocessableEntity,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
