// internal/common/errors/http.go
package errors

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPHandler renders StandardError values as JSON responses with
// structured logging of the underlying cause.
type HTTPHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewHTTPHandler(logger Logger) *HTTPHandler {
	return &HTTPHandler{logger: logger}
}

// Respond maps any error to an HTTP status and a generic error body.
// Internal details are logged, never sent to the client.
func (h *HTTPHandler) Respond(c *gin.Context, err error) {
	stdErr := h.normalizeError(err)

	h.logger.Error("request failed", map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"path":          c.FullPath(),
	})

	c.AbortWithStatusJSON(StatusCode(stdErr.Code), gin.H{
		"error": stdErr.Message,
		"code":  string(stdErr.Code),
	})
}

// normalizeError ensures we always have a StandardError
func (h *HTTPHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// StatusCode maps an error code to an HTTP status.
func StatusCode(code ErrorCode) int {
	switch code {
	case ErrCodeEmptyQuery, ErrCodeInvalidRiskLevel, ErrCodeUnknownSector:
		return http.StatusBadRequest
	case ErrCodeInteractionNotFound:
		return http.StatusNotFound
	case ErrCodeLLMTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeLLMInvokeFailed, ErrCodeDatasetLoadFailed, ErrCodeS3FetchFailed,
		ErrCodeNotificationSendFailed, ErrCodeSearchQueryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
