package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-competition-service/internal/app"
)

// PlayHandler exposes play-throughs over plain request/response for clients
// that cannot hold a websocket open.
type PlayHandler struct {
	service *app.PlayService
	logger  *slog.Logger
}

func NewPlayHandler(service *app.PlayService, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{service: service, logger: logger}
}

type selectRequest struct {
	Option *int `json:"option"`
}

// Start handles POST /competitions/{id}/plays.
func (h *PlayHandler) Start(w http.ResponseWriter, r *http.Request) {
	play, err := h.service.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err, "failed to start play")
		return
	}
	writeJSON(w, http.StatusCreated, play.State())
}

// Get handles GET /plays/{playId}.
func (h *PlayHandler) Get(w http.ResponseWriter, r *http.Request) {
	play, err := h.service.Get(chi.URLParam(r, "playId"))
	if err != nil {
		writeError(w, h.logger, err, "failed to fetch play")
		return
	}
	writeJSON(w, http.StatusOK, play.State())
}

// Select handles POST /plays/{playId}/select.
func (h *PlayHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	missing := errorBody{Error: "option is required", Field: "option"}
	if !decodeJSON(w, r, &req, missing) {
		return
	}
	if req.Option == nil {
		writeJSON(w, http.StatusBadRequest, missing)
		return
	}
	state, err := h.service.Select(chi.URLParam(r, "playId"), *req.Option)
	if err != nil {
		writeError(w, h.logger, err, "failed to select option")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Advance handles POST /plays/{playId}/advance.
func (h *PlayHandler) Advance(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Advance(chi.URLParam(r, "playId"))
	if err != nil {
		writeError(w, h.logger, err, "failed to advance")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Restart handles POST /plays/{playId}/restart.
func (h *PlayHandler) Restart(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.Restart(chi.URLParam(r, "playId"))
	if err != nil {
		writeError(w, h.logger, err, "failed to restart")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// End handles DELETE /plays/{playId}.
func (h *PlayHandler) End(w http.ResponseWriter, r *http.Request) {
	h.service.End(chi.URLParam(r, "playId"))
	w.WriteHeader(http.StatusNoContent)
}
