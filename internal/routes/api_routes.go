package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/clanhall/internal/api"
	"infinite-experiment/clanhall/internal/middleware"
)

// RegisterAPIRoutes registers the bot-facing v1 API. Every route needs an
// API key; admin routes also need the X-Discord-Admin flag.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, limiter *middleware.RateLimiter) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.AuthMiddleware(deps.Repo.Keys, deps.Services.Cache, deps.Specs.KeyCacheTTL, deps.Metrics))
		v1.Use(limiter.Middleware)

		v1.Route("/clans", func(clans chi.Router) {
			clans.Get("/", handlers.ListClans())
			clans.Post("/", handlers.CreateClan())
			clans.Get("/me", handlers.MyClan())

			clans.Post("/invite", handlers.Invite())
			clans.Post("/invite/accept", handlers.AcceptInvite())
			clans.Post("/invite/decline", handlers.DeclineInvite())

			clans.Post("/leave", handlers.Leave())
			clans.Post("/kick", handlers.Kick())
			clans.Post("/promote", handlers.Promote())
			clans.Post("/demote", handlers.Demote())
			clans.Post("/transfer", handlers.Transfer())

			clans.Post("/color", handlers.SetColor())
			clans.Post("/disband", handlers.RequestDisband())
		})

		v1.Post("/approvals/resolve", handlers.ResolveApproval())

		// Admin-only group
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.IsAdminMiddleware())

			admin.Post("/admin/setup", handlers.Setup())
			admin.Put("/admin/limit", handlers.SetMemberLimit())
			admin.Put("/admin/clans/{tag}/bounty", handlers.SetBounty())
			admin.Put("/admin/clans/{tag}/visibility", handlers.SetVisibility())
			admin.Post("/admin/clans/{clan}/force-disband", handlers.ForceDisband())
			admin.Post("/admin/users/{userId}/reset", handlers.ResetUser())
			admin.Post("/admin/disband/{clanId}/approve", handlers.ApproveDisband())
			admin.Post("/admin/disband/{clanId}/deny", handlers.DenyDisband())

			// Background jobs
			admin.Post("/admin/jobs/repair", handlers.TriggerRepair())
		})
	})
}
