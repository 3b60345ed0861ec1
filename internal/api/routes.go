package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/vytor/sayilar/internal/numbers"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", s.handleListProfiles)
		r.Post("/", s.handleCreateProfile)
		r.Get("/{id}", s.handleGetProfile)
		r.Delete("/{id}", s.handleDeleteProfile)
	})

	r.Route("/screens", func(r chi.Router) {
		r.Post("/", s.handleCreateScreen)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetScreen)
			r.Delete("/", s.handleDeleteScreen)
			r.Get("/events", s.handleScreenEvents)

			r.Post("/stages", s.screenAction((*numbers.Screen).ShowStages))
			r.Post("/stages/{stage}", s.handleOpenStage)
			r.Post("/numbers/{number}", s.handleOpenNumber)
			r.Post("/counting", s.screenAction((*numbers.Screen).PlayCounting))
			r.Post("/play", s.screenAction((*numbers.Screen).ShowDifficultySelect))
			r.Post("/math", s.screenAction((*numbers.Screen).ShowMath))
			r.Post("/game", s.handleStartGame)
			r.Post("/answer", s.handleSubmitAnswer)
			r.Post("/hint", s.screenAction(void((*numbers.Screen).UseHint)))
			r.Post("/reset", s.screenAction((*numbers.Screen).Reset))
			r.Post("/end", s.screenAction(void((*numbers.Screen).EndGame)))
			r.Post("/again", s.screenAction((*numbers.Screen).PlayAgain))
			r.Post("/back", s.handleBack)
			r.Post("/blur", s.screenAction(void((*numbers.Screen).Blur)))
			r.Post("/focus", s.screenAction(void((*numbers.Screen).Focus)))
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return c.Handler(r)
}
