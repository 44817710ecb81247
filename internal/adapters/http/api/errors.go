package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/gametaste/internal/adapters/steam"
	service "github.com/okian/gametaste/internal/app"
	"github.com/okian/gametaste/internal/domain/catalog"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrBodyTooLarge  = errors.New("request body too large")
	ErrMethodAllowed = errors.New("method not allowed")
)

// NewKind tags a sentinel kind with the operation that produced it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags err with an operation and a sentinel kind.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// classify maps a service error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, steam.ErrInvalidProfile):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, catalog.ErrEmptyLibrary):
		return http.StatusUnprocessableEntity, "empty_library"
	case errors.Is(err, steam.ErrPrivateProfile):
		return http.StatusForbidden, "private_profile"
	case errors.Is(err, steam.ErrProfileNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotConfigured), errors.Is(err, steam.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "not_configured"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, steam.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
