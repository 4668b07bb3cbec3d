package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/ismlunati/padelMeet/internal/apperr"
)

// maxBodyBytes bounds every JSON payload.
const maxBodyBytes = 1 << 20

type validator interface {
	validate() error
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// respondError maps err to its status code and writes the error body.
// Internal failures are logged and never leak their message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	message := err.Error()
	if kind == apperr.KindInternal {
		log.Error("Request failed", "error", err, "method", r.Method, "url", r.URL.Path)
		message = "internal error"
	} else {
		log.Debug("Request rejected", "kind", kind, "error", err, "url", r.URL.Path)
	}
	s.Metrics.IncRejectedCommand(string(kind))
	respondJSON(w, status, errorResponse{Error: string(kind), Message: message})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindSlotOccupied, apperr.KindMatchFull, apperr.KindInvalidState, apperr.KindPlayerBusy:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden, apperr.KindNotInvited:
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads exactly one JSON document of the request's fixed schema.
// Unknown fields, trailing data and missing required fields are validation
// errors.
func decodeJSON(r *http.Request, dst validator) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("malformed request body: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return apperr.Validation("request body must contain a single JSON object")
	}
	return dst.validate()
}

// required takes name/value pairs and fails on the first empty value.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return errRequired(pairs[i])
		}
	}
	return nil
}

func errRequired(field string) error {
	return apperr.Validation("%s is required", field)
}

func errInvalid(field, expected string) error {
	return apperr.Validation("%s must be %s", field, expected)
}

// queryDate reads the mandatory date query parameter.
func queryDate(r *http.Request) (string, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return "", errRequired("date")
	}
	return date, nil
}
