/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ConfigurationError represents configuration-related errors
type ConfigurationError struct {
	Field   string `json:"field"`
	Service string `json:"service,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Service != "" {
		msg += " in service " + e.Service + ","
	}
	msg += fmt.Sprintf(" field %s: %s", e.Field, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e ConfigurationError) Unwrap() error {
	return e.Cause
}

// ValidationError represents tool argument validation errors
type ValidationError struct {
	Parameter string `json:"parameter"`
	Value     any    `json:"value"`
	Rule      string `json:"rule"`
	Message   string `json:"message"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation failed for parameter %s: %s", e.Parameter, e.Message)
	}
	return fmt.Sprintf("validation failed for parameter %s: %s (value: %v)", e.Parameter, e.Message, e.Value)
}

// UserMessage returns a message suitable for an MCP client
func (e ValidationError) UserMessage() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("The parameter '%s' is required but was not provided.", e.Parameter)
	case "type":
		return fmt.Sprintf("The parameter '%s' has an incorrect type: %s.", e.Parameter, e.Message)
	case "enum":
		return fmt.Sprintf("The parameter '%s' has an invalid value: %s.", e.Parameter, e.Message)
	default:
		return fmt.Sprintf("The parameter '%s' is invalid: %s.", e.Parameter, e.Message)
	}
}

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	ErrorCategoryPermanent ErrorCategory = "permanent"
	ErrorCategoryAuth      ErrorCategory = "auth"
	ErrorCategoryRateLimit ErrorCategory = "ratelimit"
	ErrorCategoryNetwork   ErrorCategory = "network"
	ErrorCategoryTimeout   ErrorCategory = "timeout"
	ErrorCategoryServer    ErrorCategory = "server"
	ErrorCategoryClient    ErrorCategory = "client"
	ErrorCategoryNotFound  ErrorCategory = "notfound"
)

// APIError represents a Graph error response
type APIError struct {
	Service       string        `json:"service"`
	Endpoint      string        `json:"endpoint"`
	StatusCode    int           `json:"status_code"`
	Code          string        `json:"code,omitempty"` // Graph error code, e.g. ErrorItemNotFound
	Message       string        `json:"message"`
	Response      string        `json:"-"`
	Category      ErrorCategory `json:"category"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Error implements the error interface. The response body is never included.
func (e APIError) Error() string {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return "Invalid token"
	}
	if e.Code != "" {
		return fmt.Sprintf("API request failed (HTTP %d, %s)", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("API request failed (HTTP %d)", e.StatusCode)
}

// IsRetryable reports whether the same request may succeed later
func (e APIError) IsRetryable() bool {
	return e.Category == ErrorCategoryRateLimit || e.Category == ErrorCategoryServer ||
		e.Category == ErrorCategoryTimeout
}

// NetworkError represents a request that never produced an HTTP response
type NetworkError struct {
	URL           string        `json:"url"`
	Method        string        `json:"method"`
	Message       string        `json:"message"`
	Cause         error         `json:"-"`
	Timeout       bool          `json:"timeout"`
	Category      ErrorCategory `json:"category"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Error implements the error interface
func (e NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network error for %s %s: %s: %v", e.Method, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("network error for %s %s: %s", e.Method, e.URL, e.Message)
}

// Unwrap returns the underlying error
func (e NetworkError) Unwrap() error {
	return e.Cause
}

// AuthenticationError is returned when no usable token is available
type AuthenticationError struct {
	Service string `json:"service"`
	Profile string `json:"profile"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed for service %s (profile %s): %s: %v", e.Service, e.Profile, e.Message, e.Cause)
	}
	return fmt.Sprintf("authentication failed for service %s (profile %s): %s", e.Service, e.Profile, e.Message)
}

// Unwrap returns the underlying error
func (e AuthenticationError) Unwrap() error {
	return e.Cause
}

// TransformationError represents a failed response transformation
type TransformationError struct {
	Expression string `json:"expression"`
	Message    string `json:"message"`
	Cause      error  `json:"-"`
}

// Error implements the error interface
func (e TransformationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("response transformation '%s' failed: %s: %v", e.Expression, e.Message, e.Cause)
	}
	return fmt.Sprintf("response transformation '%s' failed: %s", e.Expression, e.Message)
}

// Unwrap returns the underlying error
func (e TransformationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(field, service, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Service: service,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(parameter string, value any, rule, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Rule:      rule,
		Message:   message,
	}
}

// NewAPIError creates an APIError from a Graph error response body
func NewAPIError(service, endpoint string, statusCode int, body []byte, correlationID string) *APIError {
	apiErr := &APIError{
		Service:       service,
		Endpoint:      endpoint,
		StatusCode:    statusCode,
		Message:       http.StatusText(statusCode),
		Response:      string(body),
		Category:      categorizeHTTPError(statusCode),
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}

	var graphErr struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &graphErr) == nil && graphErr.Error.Code != "" {
		apiErr.Code = graphErr.Error.Code
		if graphErr.Error.Message != "" {
			apiErr.Message = graphErr.Error.Message
		}
	}

	return apiErr
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(url, method, message string, cause error, timeout bool, correlationID string) *NetworkError {
	category := ErrorCategoryNetwork
	if timeout {
		category = ErrorCategoryTimeout
	}

	return &NetworkError{
		URL:           url,
		Method:        method,
		Message:       message,
		Cause:         cause,
		Timeout:       timeout,
		Category:      category,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// categorizeHTTPError categorizes an HTTP status code into an error category
func categorizeHTTPError(statusCode int) ErrorCategory {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorCategoryRateLimit
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return ErrorCategoryTimeout
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorCategoryAuth
	case statusCode == http.StatusNotFound:
		return ErrorCategoryNotFound
	case statusCode >= 400 && statusCode < 500:
		return ErrorCategoryClient
	case statusCode >= 500:
		return ErrorCategoryServer
	default:
		return ErrorCategoryPermanent
	}
}

// AsAPIError extracts an APIError from an error chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// AsNetworkError extracts a NetworkError from an error chain
func AsNetworkError(err error) (*NetworkError, bool) {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr, true
	}
	return nil, false
}

// AsValidationError extracts a ValidationError from an error chain
func AsValidationError(err error) (*ValidationError, bool) {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr, true
	}
	return nil, false
}

// AsConfigurationError extracts a ConfigurationError from an error chain
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}
	return nil, false
}

// AsAuthenticationError extracts an AuthenticationError from an error chain
func AsAuthenticationError(err error) (*AuthenticationError, bool) {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
