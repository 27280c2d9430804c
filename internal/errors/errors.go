// Package errors provides custom error types for the Bondfolio API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "A user with this username already exists", StatusCode: http.StatusConflict}
)

// Currency errors.
var (
	ErrCurrencyNotFound  = &AppError{Code: "CURRENCY_NOT_FOUND", Message: "Currency not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCurrency = &AppError{Code: "DUPLICATE_CURRENCY", Message: "A currency with this code already exists", StatusCode: http.StatusConflict}
	ErrCurrencyInUse     = &AppError{Code: "CURRENCY_IN_USE", Message: "Currency is referenced by securities or portfolios", StatusCode: http.StatusConflict}
)

// Security errors.
var (
	ErrSecurityNotFound  = &AppError{Code: "SECURITY_NOT_FOUND", Message: "Security not found", StatusCode: http.StatusNotFound}
	ErrDuplicateSecurity = &AppError{Code: "DUPLICATE_SECURITY", Message: "A security with this symbol already exists", StatusCode: http.StatusConflict}
)

// Exchange errors.
var (
	ErrExchangeNotFound  = &AppError{Code: "EXCHANGE_NOT_FOUND", Message: "Exchange not found", StatusCode: http.StatusNotFound}
	ErrDuplicateExchange = &AppError{Code: "DUPLICATE_EXCHANGE", Message: "An exchange with this name already exists", StatusCode: http.StatusConflict}
)

// Portfolio errors.
var (
	ErrPortfolioNotFound = &AppError{Code: "PORTFOLIO_NOT_FOUND", Message: "Portfolio not found", StatusCode: http.StatusNotFound}
	ErrHoldingNotFound   = &AppError{Code: "HOLDING_NOT_FOUND", Message: "Holding not found", StatusCode: http.StatusNotFound}
	ErrDuplicateHolding  = &AppError{Code: "DUPLICATE_HOLDING", Message: "This security is already held in the portfolio", StatusCode: http.StatusConflict}
)

// Refresh and fetch-log errors.
var (
	ErrFetchLogNotFound  = &AppError{Code: "FETCH_LOG_NOT_FOUND", Message: "Fetch log entry not found", StatusCode: http.StatusNotFound}
	ErrRetryLimitReached = &AppError{Code: "RETRY_LIMIT_REACHED", Message: "Maximum retry attempts reached for this entry", StatusCode: http.StatusConflict}
	ErrRetryNotFailed    = &AppError{Code: "RETRY_NOT_FAILED", Message: "Only failed fetch entries can be retried", StatusCode: http.StatusBadRequest}
	ErrProviderData      = &AppError{Code: "PROVIDER_DATA_UNAVAILABLE", Message: "Market data is currently unavailable", StatusCode: http.StatusBadGateway}
)
