package ai

import (
	"fmt"
	"strings"
)

// ErrorType classifies provider failures so callers can decide whether
// to retry, reconfigure, or give up.
type ErrorType string

const (
	ErrTypeProvider       ErrorType = "provider"
	ErrTypeConfiguration  ErrorType = "configuration"
	ErrTypeAuthentication ErrorType = "authentication"
	ErrTypeNetwork        ErrorType = "network"
	ErrTypeTimeout        ErrorType = "timeout"
	ErrTypeValidation     ErrorType = "validation"
	ErrTypeRegistration   ErrorType = "registration"
	ErrTypeNotFound       ErrorType = "not_found"
	ErrTypeInternal       ErrorType = "internal"
)

// retryable reports whether failures of this type are worth retrying.
// Only transient transport failures qualify.
func (t ErrorType) retryable() bool {
	return t == ErrTypeTimeout || t == ErrTypeNetwork
}

// ProviderError is the error type returned by embedding and completion
// providers.
type ProviderError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Provider   string    `json:"provider,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Cause      error     `json:"-"`
	Retryable  bool      `json:"retryable"`
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		fmt.Fprintf(&b, "provider=%s: ", e.Provider)
	}
	fmt.Fprintf(&b, "type=%s: ", e.Type)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "status=%d: ", e.StatusCode)
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": cause=%s", e.Cause.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is matches other ProviderErrors by type, so callers can test for a
// category with errors.Is.
func (e *ProviderError) Is(target error) bool {
	other, ok := target.(*ProviderError)
	return ok && e.Type == other.Type
}

func (e *ProviderError) IsRetryable() bool {
	return e.Retryable
}

// NewProviderError builds a ProviderError of the given type.
func NewProviderError(errType ErrorType, message, provider string) *ProviderError {
	return &ProviderError{
		Type:      errType,
		Message:   message,
		Provider:  provider,
		Retryable: errType.retryable(),
	}
}

// NewProviderErrorWithCause wraps an underlying error.
func NewProviderErrorWithCause(errType ErrorType, message, provider string, cause error) *ProviderError {
	err := NewProviderError(errType, message, provider)
	err.Cause = cause
	return err
}

// ValidationError reports a rejected input before any request is made.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigurationError reports an unusable provider configuration.
type ConfigurationError struct {
	Provider string `json:"provider"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for provider '%s', field '%s': %s",
		e.Provider, e.Field, e.Message)
}

func NewConfigurationError(provider, field, message string) *ConfigurationError {
	return &ConfigurationError{Provider: provider, Field: field, Message: message}
}
