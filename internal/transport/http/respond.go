package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quiz-competition-service/internal/domain"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Store failures are logged
// and reported with the generic fallback message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error(), Field: validation.Field})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "competition not found"})
	case errors.Is(err, domain.ErrPlayNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrDataIntegrity):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrSessionCompleted), errors.Is(err, domain.ErrSelectionLocked):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrOptionOutOfRange):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		logger.Error(fallback, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: fallback})
	}
}

// decodeJSON reads a size-capped JSON body into v. On failure it writes the
// response (413 for oversized bodies, 400 otherwise) and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, invalid errorBody) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
		return false
	}
	writeJSON(w, http.StatusBadRequest, invalid)
	return false
}
