package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/target/authgate/internal/errors"
)

// Messages written by the transport itself.
const (
	msgInternal         = "Internal server error"
	msgValidationFailed = "Validation failed"
)

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W   http.ResponseWriter
	R   *http.Request
	Err error
	// NotFoundStatus is the status used for not_found errors. Login reports an unknown
	// user as 400 while session checks report it as 401. Defaults to 400.
	NotFoundStatus int
	// Logger receives the cause of unexpected errors (optional).
	Logger *slog.Logger
}

// StatusFor maps an application error code to an HTTP status.
func StatusFor(err error, notFoundStatus int) int {
	if notFoundStatus == 0 {
		notFoundStatus = http.StatusBadRequest
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeConflict:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return notFoundStatus
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RenderError writes err as a JSON error response. Messages of client errors are
// written verbatim; anything that maps to 500 is reduced to a generic message and
// its cause is logged.
func RenderError(opts ErrorOpts) {
	status := StatusFor(opts.Err, opts.NotFoundStatus)

	if status >= http.StatusInternalServerError {
		logger := opts.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(opts.R.Context(), "request failed",
			slog.String("method", opts.R.Method),
			slog.String("path", opts.R.URL.Path),
			slog.Any("error", opts.Err),
		)
		WriteError(opts.W, ErrorParams{Code: status, Message: msgInternal})
		return
	}

	msg := apperrors.GetMessage(opts.Err)
	if msg == "" {
		msg = http.StatusText(status)
	}
	p := ErrorParams{Code: status, Message: msg}
	if field := apperrors.GetField(opts.Err); field != "" && apperrors.IsValidation(opts.Err) {
		p.Fields = map[string]string{field: msg}
	}
	WriteError(opts.W, p)
}

// RenderValidation writes a 400 response listing per-field validation messages.
func RenderValidation(w http.ResponseWriter, fields map[string]string) {
	WriteError(w, ErrorParams{Code: http.StatusBadRequest, Message: msgValidationFailed, Fields: fields})
}
