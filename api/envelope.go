package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/duplicate"
	"github.com/poiesic/empverify/identity"
	"github.com/poiesic/empverify/ledger"
	"github.com/poiesic/empverify/records"
	"github.com/poiesic/empverify/search"
)

// envelope wraps every JSON response body.
type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(core.TimestampLayout),
	})
}

func writeError(w http.ResponseWriter, err error) {
	body := envelope{
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(core.TimestampLayout),
	}
	var dup *records.DuplicateError
	if errors.As(err, &dup) {
		body.Message = "Duplicate record detected"
		body.Data = dup.Result
	}
	writeJSON(w, statusFor(err), body)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrEmptyAPIKey), errors.Is(err, identity.ErrUnknownAPIKey):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, records.ErrNotFound), errors.Is(err, search.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, records.ErrDuplicate), errors.Is(err, search.ErrAmbiguous):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrInvalidRecord),
		errors.Is(err, core.ErrInvalidEmployeeID),
		errors.Is(err, duplicate.ErrEmployeeNameRequired),
		errors.Is(err, duplicate.ErrEmployerIDRequired),
		errors.Is(err, search.ErrIdentifiersRequired),
		errors.Is(err, records.ErrWriteRejected),
		errors.Is(err, ledger.ErrInvalidArguments):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
