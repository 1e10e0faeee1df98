package routes

import (
	"net/http"

	"github.com/brainbattle/arena-api/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/brainbattle/arena-api/docs"
)

// SetupRoutes wires the REST surface. Every command the domain supports has
// exactly one entry point here.
func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	matchHandler *handlers.MatchHandler,
	corsOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/api", func(r chi.Router) {
		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.ListHandler)
			r.Post("/", tournamentHandler.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", tournamentHandler.GetByIDHandler)
				r.Put("/", tournamentHandler.UpdateHandler)
				r.Patch("/status", tournamentHandler.UpdateStatusHandler)
				r.Delete("/", tournamentHandler.DeleteHandler)
				r.Post("/logo", tournamentHandler.UploadLogoHandler)

				r.Get("/teams", teamHandler.ListByTournamentHandler)
				r.Post("/teams", teamHandler.AddToTournamentHandler)
				r.Delete("/teams/{teamID}", teamHandler.RemoveFromTournamentHandler)

				r.Get("/matches", matchHandler.ListByTournamentHandler)
				r.Post("/matches", matchHandler.CreateHandler)
				r.Post("/generate-matches", matchHandler.GenerateHandler)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.ListHandler)
			r.Post("/", teamHandler.CreateHandler)
			r.Get("/{teamID}", teamHandler.GetByIDHandler)
			r.Put("/{teamID}", teamHandler.UpdateHandler)
			r.Delete("/{teamID}", teamHandler.DeleteHandler)
			r.Post("/{teamID}/logo", teamHandler.UploadLogoHandler)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListAllHandler)
			r.Get("/{matchID}", matchHandler.GetByIDHandler)
			r.Put("/{matchID}", matchHandler.UpdateHandler)
			r.Post("/{matchID}/finish", matchHandler.FinishHandler)
			r.Delete("/{matchID}", matchHandler.DeleteHandler)
		})
	})
}
