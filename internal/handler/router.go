package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter собирает маршруты API.
func NewRouter(h *Handler, sessions SessionParser, requestTimeout time.Duration, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(Metrics)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(Authenticate(sessions, logger))

		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		r.Get("/artworks", h.Gallery)
		r.Get("/artworks/{id}", h.GetArtwork)
		r.Get("/artworks/{id}/ratings", h.Ratings)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			r.Get("/me", h.Me)
			r.Put("/me", h.UpdateMe)
			r.Get("/me/artworks", h.MyArtworks)

			r.Post("/artworks", h.CreateArtwork)
			r.Patch("/artworks/{id}", h.UpdateArtwork)
			r.Delete("/artworks/{id}", h.DeleteArtwork)
			r.Put("/artworks/{id}/rating", h.Rate)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/overview", h.AdminOverview)
			r.Patch("/artworks/{id}/flag", h.FlagArtwork)
		})
	})

	return r
}
