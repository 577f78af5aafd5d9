package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
}

// Success writes and returns the envelope.
func Success[T any](ctx *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
	}
	ctx.JSON(status, resp)
	return resp
}

// ErrorBody is the single error shape callers see.
type ErrorBody struct {
	Message    string          `json:"message"`
	Extensions ErrorExtensions `json:"extensions"`
}

type ErrorExtensions struct {
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

func Error(ctx *gin.Context, code, message string, details map[string]string) ErrorBody {
	return ErrorBody{
		Message: message,
		Extensions: ErrorExtensions{
			Code:      code,
			RequestID: ctx.GetString("request_id"),
			Details:   details,
		},
	}
}

// Abort writes an error body and stops the handler chain.
func Abort(ctx *gin.Context, status int, body ErrorBody) {
	ctx.AbortWithStatusJSON(status, body)
}
