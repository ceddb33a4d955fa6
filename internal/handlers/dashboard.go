package handlers

import (
	"log/slog"
	"net/http"

	"lotus/internal/auth"
	"lotus/internal/middleware"
	"lotus/internal/services"
)

const dashboardAnnouncements = 5

type DashboardHandler struct {
	templates     TemplateExecutor
	sessions      *auth.SessionManager
	alliance      *services.AllianceService
	announcements *services.AnnouncementService
	adminRanks    []string
}

func NewDashboardHandler(templates TemplateExecutor, sessions *auth.SessionManager, alliance *services.AllianceService, announcements *services.AnnouncementService, adminRanks []string) *DashboardHandler {
	return &DashboardHandler{
		templates:     templates,
		sessions:      sessions,
		alliance:      alliance,
		announcements: announcements,
		adminRanks:    adminRanks,
	}
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account := middleware.GetAccount(r)

	announcements, err := h.announcements.Recent(ctx, dashboardAnnouncements)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load announcements", "error", err)
	}

	data := pageData(w, r, h.sessions, "Dashboard", "dashboard")
	data["Announcements"] = announcements
	data["InactiveMembers"] = h.alliance.InactiveMembers(ctx)
	data["Wars"] = h.alliance.ActiveWars(ctx)
	data["IsAdmin"] = auth.IsAdmin(account, h.adminRanks)

	render(w, r, h.templates, "dashboard.html", data)
}
