package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures surfaced to callers of the engine.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindInvalidOperation ErrorKind = "INVALID_OPERATION"
	KindConflict         ErrorKind = "CONFLICT"
)

// AppError is a caller-facing error. Code is a stable machine-readable reason
// such as "overlap" or "blocked_date".
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Code: "not_found", Message: fmt.Sprintf(format, args...)}
}

func InvalidOperation(code, format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidOperation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Conflict(code, format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches the underlying cause to an AppError.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

// AsAppError extracts an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

func IsNotFound(err error) bool         { return isKind(err, KindNotFound) }
func IsInvalidOperation(err error) bool { return isKind(err, KindInvalidOperation) }
func IsConflict(err error) bool         { return isKind(err, KindConflict) }

// ErrorCode returns the reason code of an AppError, or "" for other errors.
func ErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// HTTPStatus maps an error to the response status used by the handlers.
func HTTPStatus(err error) int {
	appErr, ok := AsAppError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidOperation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// RespondError writes err using the status and code derived from its kind.
// Infrastructure errors are logged and hidden behind a generic message.
func RespondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if appErr, ok := AsAppError(err); ok {
		c.JSON(status, ErrorResponse{Message: appErr.Message, Code: appErr.Code})
		return
	}
	GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(status, ErrorResponse{Message: "Internal Server Error"})
}
