// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/apyexit/internal/convert"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 error.
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInternalError creates a 500 error. The cause is logged, not returned.
func NewInternalError() *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: convert.UserMessage(errors.New("internal")),
	}
}

// ConversionError maps a failed conversion to its response.
func ConversionError(err error) *APIError {
	switch kind := convert.Classify(err); kind {
	case convert.KindDecode:
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "UNREADABLE_FILE",
			Message: convert.UserMessage(err),
			Details: err.Error(),
		}
	case convert.KindSchema, convert.KindMissingField:
		code := "SCHEMA_ERROR"
		if kind == convert.KindMissingField {
			code = "MISSING_FIELD"
		}
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    code,
			Message: err.Error(),
		}
	}
	return NewInternalError()
}

// ErrorHandler renders errors returned by handlers as APIError JSON.
// Usage: e.HTTPErrorHandler = ErrorHandler(log)
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			apiErr  *APIError
			httpErr *echo.HTTPError
		)
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
		default:
			log.Error("unhandled error", "path", c.Request().URL.Path, "error", err)
			apiErr = NewInternalError()
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(apiErr.Status)
		} else {
			err = c.JSON(apiErr.Status, apiErr)
		}
		if err != nil {
			log.Warn("writing error response", "error", err)
		}
	}
}
