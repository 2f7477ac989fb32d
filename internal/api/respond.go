package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hackgods/clinic-booking/internal/clinic"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// handleError maps the clinic error taxonomy onto HTTP statuses.
func handleError(w http.ResponseWriter, err error) {
	var (
		notFound   *clinic.NotFoundError
		ineligible *clinic.IneligibleError
		input      *clinic.InputError
	)

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, string(notFound.Entity)+"_not_found", err.Error())
	case errors.As(err, &ineligible):
		writeError(w, http.StatusConflict, string(ineligible.Reason), ineligible.UserMessage())
	case errors.As(err, &input):
		writeError(w, http.StatusUnprocessableEntity, "invalid_"+input.Field, err.Error())
	case errors.Is(err, clinic.ErrAppointmentPlaced):
		writeError(w, http.StatusConflict, "appointment_placed", err.Error())
	case errors.Is(err, clinic.ErrBookingInProgress):
		writeError(w, http.StatusConflict, "booking_in_progress", err.Error())
	case errors.Is(err, clinic.ErrBookingConflict):
		writeError(w, http.StatusConflict, "booking_conflict", "booking conflicted with a concurrent write, please retry")
	case errors.Is(err, clinic.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, "duplicate_entry", err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
