package errors

import "fmt"

// Application error types organized by category for better error handling

type ErrorType int

// Domain/Business Logic Errors - errors related to business rules and validation
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeInvalidLocation

	// Infrastructure Errors - errors related to external systems and services
	ErrorTypeProviderQuota
	ErrorTypeProviderNetwork
	ErrorTypeDatabase
	ErrorTypeCache

	// System/Configuration Errors - errors related to system setup and configuration
	ErrorTypeAggregation
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeInvalidLocation:
		return "INVALID_LOCATION_ERROR"
	case ErrorTypeProviderQuota:
		return "PROVIDER_QUOTA_ERROR"
	case ErrorTypeProviderNetwork:
		return "PROVIDER_NETWORK_ERROR"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeCache:
		return "CACHE_ERROR"
	case ErrorTypeAggregation:
		return "AGGREGATION_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain/Business Logic Error Constructors
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewNotFoundError(message string) *AppError {
	return New(ErrorTypeNotFound, message)
}

// NewInvalidLocationError marks venue coordinates that cannot be used for a
// live lookup. The aggregator recovers locally; it is never surfaced to callers.
func NewInvalidLocationError(message string) *AppError {
	return New(ErrorTypeInvalidLocation, message)
}

// Infrastructure Error Constructors
func NewProviderQuotaError(message string, cause error) *AppError {
	return Wrap(ErrorTypeProviderQuota, message, cause)
}

func NewProviderNetworkError(message string, cause error) *AppError {
	return Wrap(ErrorTypeProviderNetwork, message, cause)
}

func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(ErrorTypeDatabase, message, cause)
}

func NewCacheError(message string, cause error) *AppError {
	return Wrap(ErrorTypeCache, message, cause)
}

// System/Configuration Error Constructors
func NewAggregationError(message string, cause error) *AppError {
	return Wrap(ErrorTypeAggregation, message, cause)
}

func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ErrorTypeConfiguration, message, cause)
}

// Helper functions for error type checking
func isType(err error, t ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == t
	}
	return false
}

func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

func IsInvalidLocationError(err error) bool {
	return isType(err, ErrorTypeInvalidLocation)
}

func IsProviderQuotaError(err error) bool {
	return isType(err, ErrorTypeProviderQuota)
}

func IsProviderNetworkError(err error) bool {
	return isType(err, ErrorTypeProviderNetwork)
}

// IsProviderError reports whether the error came from the live provider,
// regardless of whether it was a quota or a transport failure.
func IsProviderError(err error) bool {
	return IsProviderQuotaError(err) || IsProviderNetworkError(err)
}

func IsDatabaseError(err error) bool {
	return isType(err, ErrorTypeDatabase)
}

func IsCacheError(err error) bool {
	return isType(err, ErrorTypeCache)
}

func IsAggregationError(err error) bool {
	return isType(err, ErrorTypeAggregation)
}

func IsConfigurationError(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}
