// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidJobRequirements ErrorCode = "INVALID_JOB_REQUIREMENTS"

	ErrCodeTechnicianNotFound ErrorCode = "TECHNICIAN_NOT_FOUND"
	ErrCodeJobNotFound        ErrorCode = "JOB_NOT_FOUND"
	ErrCodeRosterLoadFailed   ErrorCode = "ROSTER_LOAD_FAILED"

	ErrCodeTechnicianAtCapacity ErrorCode = "TECHNICIAN_AT_CAPACITY"
	ErrCodeTechnicianOffline    ErrorCode = "TECHNICIAN_OFFLINE"
	ErrCodeJobAlreadyAssigned   ErrorCode = "JOB_ALREADY_ASSIGNED"
	ErrCodeAssignmentFailed     ErrorCode = "ASSIGNMENT_FAILED"

	ErrCodeQueryTimeout ErrorCode = "QUERY_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeRecipientUnreachable   ErrorCode = "RECIPIENT_UNREACHABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err to a *StandardError if one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidJobRequirementsError covers malformed job variables. Never retried.
func NewInvalidJobRequirementsError(details string) *StandardError {
	return newError(ErrCodeInvalidJobRequirements, "Invalid job requirements", details, false)
}

func NewTechnicianNotFoundError(technicianID string) *StandardError {
	return newError(ErrCodeTechnicianNotFound, "Technician not found",
		fmt.Sprintf("technicianId: %s", technicianID), false).
		WithMetadata("technicianId", technicianID)
}

func NewJobNotFoundError(jobID string) *StandardError {
	return newError(ErrCodeJobNotFound, "Service job not found",
		fmt.Sprintf("jobId: %s", jobID), false).
		WithMetadata("jobId", jobID)
}

// NewRosterLoadFailedError creates a retryable error for roster reads.
func NewRosterLoadFailedError(err error) *StandardError {
	return newError(ErrCodeRosterLoadFailed, "Failed to load technician roster", err.Error(), true)
}

func NewTechnicianAtCapacityError(technicianID string, current, max int) *StandardError {
	return newError(ErrCodeTechnicianAtCapacity, "Technician is at daily capacity",
		fmt.Sprintf("technicianId: %s, currentJobs: %d, maxJobsPerDay: %d", technicianID, current, max), false).
		WithMetadata("technicianId", technicianID)
}

func NewTechnicianOfflineError(technicianID string) *StandardError {
	return newError(ErrCodeTechnicianOffline, "Technician is offline",
		fmt.Sprintf("technicianId: %s", technicianID), false).
		WithMetadata("technicianId", technicianID)
}

func NewJobAlreadyAssignedError(jobID, technicianID string) *StandardError {
	return newError(ErrCodeJobAlreadyAssigned, "Service job already assigned",
		fmt.Sprintf("jobId: %s, assignedTechnicianId: %s", jobID, technicianID), false).
		WithMetadata("jobId", jobID)
}

// NewAssignmentFailedError creates a retryable database write error.
func NewAssignmentFailedError(err error) *StandardError {
	return newError(ErrCodeAssignmentFailed, "Failed to record assignment", err.Error(), true)
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout",
		fmt.Sprintf("queryType: %s", queryType), true)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Search query failed",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Search query timeout",
		fmt.Sprintf("index: %s", index), true)
}

func NewIndexNotFoundError(index string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Search index not found",
		fmt.Sprintf("index: %s", index), false)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewRecipientUnreachableError(technicianID string) *StandardError {
	return newError(ErrCodeRecipientUnreachable, "Technician has no usable contact",
		fmt.Sprintf("technicianId: %s", technicianID), false)
}

// Generic constructors

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError("BUSINESS_RULE_VIOLATION", message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND", fmt.Sprintf("Resource not found in %s", service), details, false)
}

// FromContext maps a context error to a timeout error for the named operation,
// and anything else to fallback.
func FromContext(err error, timeout func() *StandardError, fallback func(error) *StandardError) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return timeout()
	}
	return fallback(err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRosterLoadFailed,
		ErrCodeAssignmentFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		"EXTERNAL_SERVICE_ERROR":
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		"TIMEOUT_ERROR":
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN error codes are the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable && retries > 0,
		Retries:        retries,
		ErrorVariables: stdErr.Metadata,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TECHNICIAN") || strings.Contains(codeStr, "JOB") ||
		strings.Contains(codeStr, "ASSIGNMENT") || strings.Contains(codeStr, "ROSTER"):
		return "DISPATCH"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "RECIPIENT"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}

var knownCodes = map[ErrorCode]bool{
	ErrCodeInvalidJobRequirements:        true,
	ErrCodeTechnicianNotFound:            true,
	ErrCodeJobNotFound:                   true,
	ErrCodeRosterLoadFailed:              true,
	ErrCodeTechnicianAtCapacity:          true,
	ErrCodeTechnicianOffline:             true,
	ErrCodeJobAlreadyAssigned:            true,
	ErrCodeAssignmentFailed:              true,
	ErrCodeQueryTimeout:                  true,
	ErrCodeElasticsearchConnectionFailed: true,
	ErrCodeSearchQueryFailed:             true,
	ErrCodeSearchTimeout:                 true,
	ErrCodeIndexNotFound:                 true,
	ErrCodeNotificationSendFailed:        true,
	ErrCodeRecipientUnreachable:          true,
	ErrCodeInternal:                      true,
	"BUSINESS_RULE_VIOLATION":            true,
	"EXTERNAL_SERVICE_ERROR":             true,
	"TIMEOUT_ERROR":                      true,
	"RESOURCE_NOT_FOUND":                 true,
}

// IsKnownCode reports whether code is one the workers can raise.
func IsKnownCode(code ErrorCode) bool {
	return knownCodes[code]
}
