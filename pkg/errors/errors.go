package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeConfig     = "CONFIG_ERROR"
	CodeAuth       = "AUTH_ERROR"
	CodeService    = "SERVICE_ERROR"
	CodeParse      = "PARSE_ERROR"
	CodeCapability = "CAPABILITY_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeValidation = "VALIDATION_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorCode is promoted through every wrapper type below, so errors.As can
// recover the code through an interface target regardless of the concrete type.
func (e *AppError) ErrorCode() string {
	return e.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// ConfigError signals a missing or empty setting detected at call time,
// e.g. no completion-service API key.
type ConfigError struct {
	*AppError
	Key string
}

func NewConfigError(message, key string) *ConfigError {
	return &ConfigError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeConfig,
			StatusCode: 500,
			Context:    map[string]any{"key": key},
		},
		Key: key,
	}
}

// AuthError signals that the completion service rejected the credential.
type AuthError struct {
	*AppError
}

func NewAuthError(message string, cause error) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAuth,
			StatusCode: 401,
			Cause:      cause,
		},
	}
}

// ServiceError covers network failures and non-success responses that have
// no clearer classification.
type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 503,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// ParseError signals that a completed response buffer is not valid JSON or is
// valid JSON missing a required field. It is terminal: a request that ends in
// a ParseError never produced a result.
type ParseError struct {
	*AppError
	Field string
}

func NewParseError(message, field string, cause error) *ParseError {
	ctx := map[string]any{}
	if field != "" {
		ctx["field"] = field
	}
	return &ParseError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeParse,
			StatusCode: 502,
			Context:    ctx,
			Cause:      cause,
		},
		Field: field,
	}
}

// CapabilityError signals that an injected capability (speech capture) is not
// available in the current environment.
type CapabilityError struct {
	*AppError
	Capability string
}

func NewCapabilityError(message, capability string) *CapabilityError {
	return &CapabilityError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCapability,
			StatusCode: 501,
			Context:    map[string]any{"capability": capability},
		},
		Capability: capability,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// Code extracts the machine-readable code from any error produced by this
// package. Unknown errors map to CodeService, matching the user-facing
// "service unavailable" default.
func Code(err error) string {
	var coded interface{ ErrorCode() string }
	if stderrors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return CodeService
}
