// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
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
	ErrCodeCarrierDetectionFailed ErrorCode = "CARRIER_DETECTION_FAILED"
	ErrCodeCarrierNotSupported    ErrorCode = "CARRIER_NOT_SUPPORTED"

	ErrCodeScopeValidationFailed   ErrorCode = "SCOPE_VALIDATION_FAILED"
	ErrCodeComplianceCheckFailed   ErrorCode = "COMPLIANCE_CHECK_FAILED"
	ErrCodeScopeComparisonFailed   ErrorCode = "SCOPE_COMPARISON_FAILED"
	ErrCodeSupplementBuildFailed   ErrorCode = "SUPPLEMENT_BUILD_FAILED"
	ErrCodeSeverityScoreFailed     ErrorCode = "SEVERITY_SCORE_FAILED"
	ErrCodeReportValidationFailed  ErrorCode = "REPORT_VALIDATION_FAILED"
	ErrCodeScopeExtractionFailed   ErrorCode = "SCOPE_EXTRACTION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeIndexingFailed ErrorCode = "INDEXING_FAILED"
	ErrCodeSearchTimeout  ErrorCode = "SEARCH_TIMEOUT"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeGenAITimeout ErrorCode = "GENAI_TIMEOUT"
	ErrCodeGenAIFailed  ErrorCode = "GENAI_GENERATION_FAILED"
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

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewCarrierDetectionFailedError covers unexpected detector failures.
// Unknown carriers are NOT errors; detection returns a zero-confidence
// result for those.
func NewCarrierDetectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCarrierDetectionFailed,
		Message:   "Carrier detection failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScopeValidationFailedError creates a non-retryable input validation error.
func NewScopeValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScopeValidationFailed,
		Message:   "Scope line items failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewComplianceCheckFailedError covers unexpected compliance engine failures.
func NewComplianceCheckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeComplianceCheckFailed,
		Message:   "Compliance evaluation failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportValidationFailedError flags an assembled report that does not
// match the published schema.
func NewReportValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportValidationFailed,
		Message:   "Claim report failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a retryable search indexing error.
func NewIndexingFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Search indexing error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery error",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAITimeoutError creates a retryable text generation timeout.
func NewGenAITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAITimeout,
		Message:   "Text generation timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAIFailedError creates a retryable text generation failure.
func NewGenAIFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAIFailed,
		Message:   "Text generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (identical
// by convention, kept explicit so BPMN boundary events have a fixed catalog).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCarrierDetectionFailed:   "CARRIER_DETECTION_FAILED",
	ErrCodeCarrierNotSupported:      "CARRIER_NOT_SUPPORTED",
	ErrCodeScopeValidationFailed:    "SCOPE_VALIDATION_FAILED",
	ErrCodeComplianceCheckFailed:    "COMPLIANCE_CHECK_FAILED",
	ErrCodeScopeComparisonFailed:    "SCOPE_COMPARISON_FAILED",
	ErrCodeSupplementBuildFailed:    "SUPPLEMENT_BUILD_FAILED",
	ErrCodeSeverityScoreFailed:      "SEVERITY_SCORE_FAILED",
	ErrCodeReportValidationFailed:   "REPORT_VALIDATION_FAILED",
	ErrCodeScopeExtractionFailed:    "SCOPE_EXTRACTION_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeIndexingFailed:           "INDEXING_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeGenAITimeout:             "GENAI_TIMEOUT",
	ErrCodeGenAIFailed:              "GENAI_GENERATION_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeIndexingFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeGenAIFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeGenAITimeout:
		return 1 // As per BPMN boundary event

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CARRIER"):
		return "CARRIER"
	case strings.Contains(codeStr, "COMPLIANCE") || strings.Contains(codeStr, "SCOPE") || strings.Contains(codeStr, "SUPPLEMENT") || strings.Contains(codeStr, "SEVERITY"):
		return "RECONCILIATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "GENAI"):
		return "AI"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "GENERAL"
	}
}
