package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matchdayhq/league-platform/handlers"
)

// SetupRoutes mounts the HTTP surface: tournament views, stage setup and
// standings, match finalization, and the live websocket feed.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.GetTournamentBySlugHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetTournamentHandler)
		r.Get("/{tournamentID}/bracket", tournamentHandler.GetBracketHandler)
		r.Post("/{tournamentID}/stages/{stageID}/setup", tournamentHandler.SetupStageHandler)
	})

	router.Route("/stages", func(r chi.Router) {
		r.Get("/{stageID}/matches", matchHandler.ListStageMatchesHandler)
		r.Get("/{stageID}/teams", teamHandler.ListStageTeamsHandler)
		r.Get("/{stageID}/standings", standingsHandler.GetStandingsHandler)
		r.Post("/{stageID}/standings/recalculate", standingsHandler.RecalculateStandingsHandler)
	})

	router.Get("/teams/{teamID}", teamHandler.GetTeamHandler)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatchHandler)
		r.Post("/{matchID}/finalize", matchHandler.FinalizeMatchHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
