package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quiz-competition-service/internal/app"
)

// RouterOptions carries the transport-level settings from config.
type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter wires the REST and websocket endpoints.
func NewRouter(competitions *app.CompetitionService, plays *app.PlayService, logger *slog.Logger, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	competitionHandler := NewCompetitionHandler(competitions, logger)
	playHandler := NewPlayHandler(plays, logger)
	wsHandler := NewWSHandler(plays, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(logger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	timeout := middleware.Timeout(opts.RequestTimeout)

	r.Route("/competitions", func(cr chi.Router) {
		// Long-lived socket; kept outside the request timeout.
		cr.Get("/{id}/play", wsHandler.ServeWS)

		cr.Group(func(tr chi.Router) {
			tr.Use(timeout)
			tr.Get("/", competitionHandler.List)
			tr.Post("/", competitionHandler.Create)
			tr.Get("/{id}", competitionHandler.Get)
			tr.Post("/{id}/plays", playHandler.Start)
		})
	})

	r.Route("/plays/{playId}", func(pr chi.Router) {
		pr.Use(timeout)
		pr.Get("/", playHandler.Get)
		pr.Delete("/", playHandler.End)
		pr.Post("/select", playHandler.Select)
		pr.Post("/advance", playHandler.Advance)
		pr.Post("/restart", playHandler.Restart)
	})

	return r
}
