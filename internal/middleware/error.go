package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ops/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    status,
		Message: message,
		TraceID: c.GetString(ContextRequestID),
	})
}

// ErrorHandler renders the last error attached with c.Error. Application
// errors map onto their status, binding failures onto 400 and anything
// else onto 500 with a generic message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only handle errors if they exist
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		traceID := c.GetString(ContextRequestID)
		lastErr := c.Errors.Last().Err

		resp := ErrorResponse{TraceID: traceID}
		var verrs validator.ValidationErrors
		switch {
		case stderrors.As(lastErr, &verrs):
			resp.Code = http.StatusBadRequest
			resp.Message = "validation failed"
			resp.Fields = fieldErrors(verrs)
		case c.Errors.Last().IsType(gin.ErrorTypeBind):
			resp.Code = http.StatusBadRequest
			resp.Message = "malformed request body"
		default:
			resp.Code = errors.StatusOf(lastErr)
			resp.Message = errors.MessageOf(lastErr)
		}

		event := log.Warn()
		if resp.Code >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.Err(lastErr).
			Str("trace_id", traceID).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Int("status", resp.Code).
			Msg("Request error")

		c.JSON(resp.Code, resp)
	}
}
