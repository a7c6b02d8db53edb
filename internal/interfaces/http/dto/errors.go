package dto

import (
	"errors"
	"net/http"

	"github.com/portal/backend/internal/domain/shared"
)

// Error codes carried by shared.DomainError
const (
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUpstreamFailure    = "UPSTREAM_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeInvalidInput:       http.StatusBadRequest,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodeUpstreamFailure:    http.StatusBadGateway,
	CodeInternal:           http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GenericErrorMessage is shown for anything that is not a domain error
const GenericErrorMessage = "An unexpected error occurred. Please try again later."

// ErrorView is what the error page shows for err. Only domain error
// messages reach the user; everything else is replaced by a generic message.
type ErrorView struct {
	Status  int
	Code    string
	Title   string
	Message string
}

// NewErrorView classifies err
func NewErrorView(err error) ErrorView {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := GetHTTPStatus(domainErr.Code)
		return ErrorView{
			Status:  status,
			Code:    domainErr.Code,
			Title:   http.StatusText(status),
			Message: domainErr.Message,
		}
	}
	return ErrorView{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Title:   http.StatusText(http.StatusInternalServerError),
		Message: GenericErrorMessage,
	}
}
