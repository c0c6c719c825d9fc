package delivery

import (
	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Group(func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)

		pr.Get("/health", h.Health)
		pr.Post("/transcribe", h.Transcribe)
		pr.Post("/analyze", h.Analyze)
		pr.Post("/synthesize", h.Synthesize)
		pr.Post("/consultation", h.Consultation)
		pr.Get("/audio/{filename}", h.Audio)
	})
}
