package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", applog.FieldError, err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	s.respondJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrMemberNotFound),
		errors.Is(err, core.ErrFineNotFound),
		errors.Is(err, core.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateMember),
		errors.Is(err, core.ErrDuplicateCategory):
		return http.StatusConflict
	case errors.Is(err, core.ErrCategoryNotAssignable),
		errors.Is(err, core.ErrCategoryProtected),
		errors.Is(err, core.ErrBackupExpired),
		errors.Is(err, core.ErrNoBackup):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrMissingField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode parses the request body into dst and runs struct validation.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return core.ErrMissingField
		}
		return err
	}
	return nil
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// saveAndRespond flushes the ledger after a mutation, drops cached
// derived responses, and answers with the payload plus the durability
// of the save. A failed remote write is not an error for the client:
// the local copy holds the change.
func (s *Server) saveAndRespond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	durable := s.store.Save(r.Context())
	s.statsCache.Clear()
	s.respondJSON(w, status, map[string]any{
		"data":    payload,
		"durable": durable,
	})
}
