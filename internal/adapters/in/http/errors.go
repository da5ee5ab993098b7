package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"dispatch/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrUnauthorized is returned by the auth middleware for missing or invalid
// bearer tokens.
var ErrUnauthorized = errors.New("unauthorized")

// NewErrorHandler maps domain errors to status codes. Anything it does not
// recognize is logged and reported as 500 without leaking the cause.
func NewErrorHandler(logger *zap.SugaredLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := classify(err)
		if status == http.StatusInternalServerError {
			logger.Errorw("request_failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		var limited *errs.RateLimitedError
		if errors.As(err, &limited) && limited.RetryAfter > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(limited.RetryAfter.Seconds()))))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warnw("error_response_failed", "error", err)
		}
	}
}

func classify(err error) (int, Error) {
	var (
		conflict *errs.ConflictError
		limited  *errs.RateLimitedError
		reqErr   *openapi3filter.RequestError
		echoErr  *echo.HTTPError
	)

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, Error{Code: "unauthorized", Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, Error{Code: "not_found", Message: err.Error()}
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, Error{Code: "forbidden", Message: err.Error()}
	case errors.As(err, &conflict):
		return http.StatusConflict, Error{Code: "conflict", Message: conflict.Reason, Details: conflict.Details}
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, Error{Code: "conflict", Message: err.Error()}
	case errors.As(err, &limited):
		return http.StatusTooManyRequests, Error{
			Code:    "rate_limited",
			Message: err.Error(),
			Details: map[string]any{"retry_after_seconds": int(math.Ceil(limited.RetryAfter.Seconds()))},
		}
	case errs.IsValidation(err):
		return http.StatusBadRequest, Error{Code: "bad_request", Message: err.Error()}
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, Error{Code: "bad_request", Message: reqErr.Error()}
	case errors.As(err, &echoErr):
		return echoErr.Code, Error{Code: codeFor(echoErr.Code), Message: messageOf(echoErr)}
	default:
		return http.StatusInternalServerError, Error{Code: "internal", Message: http.StatusText(http.StatusInternalServerError)}
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	default:
		if status >= http.StatusInternalServerError {
			return "internal"
		}
		return "error"
	}
}

func messageOf(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return http.StatusText(he.Code)
}
