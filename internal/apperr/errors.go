// Package apperr maps application failures onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"shopnotes-app/internal/logger"

	"github.com/gin-gonic/gin"
)

type ErrorType string

const (
	TypeUnauthorized     ErrorType = "unauthorized"
	TypeForbidden        ErrorType = "forbidden"
	TypeNotFound         ErrorType = "not_found"
	TypeValidation       ErrorType = "validation_error"
	TypeMethodNotAllowed ErrorType = "method_not_allowed"
	TypeUpstream         ErrorType = "upstream_error"
	TypeInternal         ErrorType = "internal_error"
)

type AppError struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func Unauthorized(msg string) *AppError {
	return &AppError{Type: TypeUnauthorized, Message: msg, Code: http.StatusUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Type: TypeForbidden, Message: msg, Code: http.StatusForbidden}
}

func NotFound(msg string) *AppError {
	return &AppError{Type: TypeNotFound, Message: msg, Code: http.StatusNotFound}
}

func Validation(msg string) *AppError {
	return &AppError{Type: TypeValidation, Message: msg, Code: http.StatusBadRequest}
}

func MethodNotAllowed() *AppError {
	return &AppError{Type: TypeMethodNotAllowed, Message: "Method not allowed", Code: http.StatusMethodNotAllowed}
}

// Upstream reports a failed call to Shopify.
func Upstream(msg string, err error) *AppError {
	return &AppError{Type: TypeUpstream, Message: msg, Code: http.StatusInternalServerError, Err: err}
}

func Internal(msg string, err error) *AppError {
	return &AppError{Type: TypeInternal, Message: msg, Code: http.StatusInternalServerError, Err: err}
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Respond writes {"error": msg} with the status mapped from err. Anything that
// is not an AppError is reported as a 500 and logged with request context.
func Respond(c *gin.Context, err error) {
	appErr, ok := As(err)
	if !ok {
		appErr = Internal("Unexpected error", err)
	}

	if appErr.Code >= http.StatusInternalServerError {
		logger.WithComponent("http").Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"shop", c.GetString("shop"),
			"type", string(appErr.Type),
			"error", err,
		)
	}

	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
}
