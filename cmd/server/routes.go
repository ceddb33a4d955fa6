package main

import (
	"log/slog"
	"net/http"

	"lotus/internal/auth"
	"lotus/internal/config"
	"lotus/internal/database"
	"lotus/internal/handlers"
	"lotus/internal/metrics"
	"lotus/internal/middleware"
	"lotus/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// application carries the process-wide dependencies the router wires up.
type application struct {
	config        *config.Config
	logger        *slog.Logger
	db            *database.DB
	templates     handlers.TemplateExecutor
	sessions      *auth.SessionManager
	accounts      *auth.AccountService
	discord       *auth.DiscordClient
	alliance      *services.AllianceService
	members       *services.MemberService
	bank          *services.BankService
	announcements *services.AnnouncementService
}

func (app *application) routes() http.Handler {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(app.templates, app.sessions, app.accounts, app.discord, app.members)
	profileHandler := handlers.NewProfileHandler(app.templates, app.sessions, app.accounts, app.members)
	dashboardHandler := handlers.NewDashboardHandler(app.templates, app.sessions, app.alliance, app.announcements, app.config.AdminRanks)
	allianceHandler := handlers.NewAllianceHandler(app.templates, app.sessions, app.alliance)
	announcementHandler := handlers.NewAnnouncementHandler(app.announcements)
	bankHandler := handlers.NewBankHandler(app.bank)
	exportHandler := handlers.NewExportHandler(app.alliance)
	healthHandler := handlers.NewHealthHandler(app.db)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(app.sessions, app.accounts, app.config.AdminRanks)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(app.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS(app.config.WebDir)))))

	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", healthHandler.Healthz)

	// Public routes
	r.Get("/", authHandler.Index)
	r.Get("/login", authHandler.Login)
	r.Get("/callback", authHandler.Callback)
	r.Get("/logout", authHandler.Logout)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Get("/profile", profileHandler.Profile)
		r.Post("/profile", profileHandler.LinkNation)
		r.Post("/profile/api-key", profileHandler.UpdateAPIKey)

		// Nation-linked routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireNation)

			r.Get("/dashboard", dashboardHandler.Dashboard)
			r.Get("/nations", allianceHandler.Nations)
			r.Get("/resources", allianceHandler.Resources)

			r.Post("/api/send-resources", bankHandler.SendResources)
			r.Get("/api/export-nations", exportHandler.Nations)
			r.Get("/api/export-prices", exportHandler.Prices)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)
				r.Post("/api/announcement", announcementHandler.Create)
				r.Put("/api/announcement/{id}", announcementHandler.Update)
				r.Delete("/api/announcement/{id}", announcementHandler.Delete)
			})
		})
	})

	return r
}
