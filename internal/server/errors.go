package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/hiring-coach/internal/apperr"
	"github.com/jonathan/hiring-coach/internal/coaching"
	"github.com/jonathan/hiring-coach/internal/ingestion"
	"github.com/jonathan/hiring-coach/internal/llm"
)

// errForbidden is returned when an authenticated user acts on another user's data.
var errForbidden = errors.New("forbidden")

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		notFound    *apperr.NotFoundError
		invalid     *apperr.ValidationError
		conflict    *apperr.ConflictError
		unsupported *ingestion.UnsupportedTypeError
		extraction  *ingestion.ExtractionError
		upstream    *llm.UpstreamError
		fields      validator.ValidationErrors
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &fields), errors.Is(err, ingestion.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.Is(err, coaching.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extraction), errors.Is(err, ingestion.ErrEmptyPosting):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstream):
		if upstream.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.Is(err, ingestion.ErrHTTPRequestFailed), errors.Is(err, ingestion.ErrContentExtractionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing text for err. Internal errors are
// not described.
func errorMessage(err error, status int) string {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		fe := fields[0]
		return "validation error: " + fe.Field() + " - " + fe.Tag()
	}
	if status == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
