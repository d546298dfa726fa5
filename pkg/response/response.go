package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error shape returned by every endpoint.
type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON writes a success payload. Payload shapes are per route ({course}, {courses}, ...).
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Created is a convenience helper for POST 201 responses.
func Created(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusCreated, payload)
}

// Deleted writes the success flag returned by delete endpoints.
func Deleted(c *gin.Context) {
	JSON(c, http.StatusOK, gin.H{"success": true})
}

// Error writes an error response with a client-safe message.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Error: message})
}

// ErrorWithLog writes an error response and logs the underlying error via slog.
// The error itself never reaches the client.
func ErrorWithLog(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	logCause(logger, c, status, message, err)
	Error(c, status, message)
}

// ErrorWithDetails echoes raw error detail. Only debug routes use it.
func ErrorWithDetails(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	logCause(logger, c, status, message, err)

	body := ErrorBody{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	c.JSON(status, body)
}

// logCause records err at Error level for server faults. Client errors are
// already reported by the request logger, so their cause is kept at Debug.
func logCause(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	if logger == nil || err == nil {
		return
	}

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.Log(c.Request.Context(), level, message, slog.Int("status", status), slog.String("error", err.Error()))
}
