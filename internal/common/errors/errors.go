// Package errors provides standardized error handling across the service.
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
	ErrCodeEmptyQuery       ErrorCode = "EMPTY_QUERY"
	ErrCodeInvalidRiskLevel ErrorCode = "INVALID_RISK_LEVEL"
	ErrCodeUnknownSector    ErrorCode = "UNKNOWN_SECTOR"

	ErrCodeDatasetLoadFailed ErrorCode = "DATASET_LOAD_FAILED"
	ErrCodeS3FetchFailed     ErrorCode = "S3_FETCH_FAILED"
	ErrCodeCSVParseFailed    ErrorCode = "CSV_PARSE_FAILED"
	ErrCodeDatasetEmpty      ErrorCode = "DATASET_EMPTY"

	ErrCodeLLMTimeout      ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMInvokeFailed ErrorCode = "LLM_INVOKE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeHistoryWriteFailed       ErrorCode = "HISTORY_WRITE_FAILED"
	ErrCodeHistoryQueryFailed       ErrorCode = "HISTORY_QUERY_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInteractionNotFound    ErrorCode = "INTERACTION_NOT_FOUND"
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
// 2. Error Constructors
// ==========================

// NewEmptyQueryError creates a non-retryable input rejection error.
func NewEmptyQueryError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyQuery,
		Message:   "Query must include free text or at least one sector",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRiskLevelError creates a non-retryable input rejection error.
func NewInvalidRiskLevelError(risk string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRiskLevel,
		Message:   "Risk level must be Low, Medium or High",
		Details:   fmt.Sprintf("risk: %s", risk),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownSectorError creates a non-retryable input rejection error.
func NewUnknownSectorError(sector string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSector,
		Message:   "Sector is not present in the loaded dataset",
		Details:   fmt.Sprintf("sector: %s", sector),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetLoadFailedError creates a retryable dataset load error.
func NewDatasetLoadFailedError(dataset string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetLoadFailed,
		Message:   "Dataset load failed",
		Details:   fmt.Sprintf("dataset: %s, error: %s", dataset, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewS3FetchFailedError creates a retryable S3 fetch error.
func NewS3FetchFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeS3FetchFailed,
		Message:   "S3 object fetch failed",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCSVParseFailedError creates a non-retryable parse error.
func NewCSVParseFailedError(dataset string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCSVParseFailed,
		Message:   "CSV parse failed",
		Details:   fmt.Sprintf("dataset: %s, error: %s", dataset, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatasetEmptyError creates a non-retryable empty dataset error.
func NewDatasetEmptyError(dataset string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatasetEmpty,
		Message:   "Dataset contains no usable rows",
		Details:   fmt.Sprintf("dataset: %s", dataset),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Text generation timed out",
		Details:   "Bedrock call exceeded the configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMInvokeFailedError creates a retryable LLM invocation error.
func NewLLMInvokeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMInvokeFailed,
		Message:   "Text generation call failed",
		Details:   err.Error(),
		Retryable: true,
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

// NewHistoryWriteFailedError creates a retryable history insert error.
func NewHistoryWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryWriteFailed,
		Message:   "Interaction history write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryQueryFailedError creates a retryable history read error.
func NewHistoryQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryQueryFailed,
		Message:   "Interaction history query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "History search query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInteractionNotFoundError creates a non-retryable lookup error.
func NewInteractionNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInteractionNotFound,
		Message:   "Interaction not found",
		Details:   fmt.Sprintf("interactionId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended bounded retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatasetLoadFailed,
		ErrCodeS3FetchFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeHistoryWriteFailed,
		ErrCodeHistoryQueryFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeLLMInvokeFailed:
		return 3 // Retryable technical errors

	case ErrCodeLLMTimeout:
		return 1

	default:
		return 0 // Input rejection and business errors: no retry
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATASET") || strings.Contains(codeStr, "S3") || strings.Contains(codeStr, "CSV"):
		return "DATA"
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "HISTORY"):
		return "STORAGE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "EMPTY") || strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
