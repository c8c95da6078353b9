package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ankit-chaubey/metadata-extractor/core"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

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

func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewExtractionError reports an extraction failure with its message verbatim.
func NewExtractionError(err *core.ExtractionFailed) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "EXTRACTION_FAILED",
		Message: err.Error(),
	}
}

// NewErrorHandler returns an echo.HTTPErrorHandler writing APIError bodies.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			apiErr  *APIError
			httpErr *echo.HTTPError
			extErr  *core.ExtractionFailed
		)
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &extErr):
			apiErr = NewExtractionError(extErr)
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
		default:
			logger.Error("unhandled error", "path", c.Request().URL.Path, "err", err)
			apiErr = &APIError{
				Status:  http.StatusInternalServerError,
				Code:    "INTERNAL_ERROR",
				Message: "An unexpected error occurred",
			}
		}

		if err := c.JSON(apiErr.Status, apiErr); err != nil {
			logger.Error("write error response", "err", err)
		}
	}
}
