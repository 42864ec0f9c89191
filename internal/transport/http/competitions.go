package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-competition-service/internal/app"
	"quiz-competition-service/internal/domain"
)

// CompetitionHandler serves the competition repository API.
type CompetitionHandler struct {
	service *app.CompetitionService
	logger  *slog.Logger
}

func NewCompetitionHandler(service *app.CompetitionService, logger *slog.Logger) *CompetitionHandler {
	return &CompetitionHandler{service: service, logger: logger}
}

// List handles GET /competitions[?q=filter].
func (h *CompetitionHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err, "failed to fetch competitions")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Get handles GET /competitions/{id}. The answer keys are included.
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	competition, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err, "failed to fetch competition")
		return
	}
	writeJSON(w, http.StatusOK, competition)
}

// Create handles POST /competitions.
func (h *CompetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.NewCompetition
	if !decodeJSON(w, r, &input, errorBody{Error: "invalid JSON body"}) {
		return
	}
	competition, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err, "failed to create competition")
		return
	}
	writeJSON(w, http.StatusCreated, competition)
}
