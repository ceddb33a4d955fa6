package handlers

import (
	"net/http"
	"time"

	"lotus/internal/auth"
	"lotus/internal/services"
)

// AllianceHandler serves the read-only alliance pages.
type AllianceHandler struct {
	templates TemplateExecutor
	sessions  *auth.SessionManager
	alliance  *services.AllianceService
}

func NewAllianceHandler(templates TemplateExecutor, sessions *auth.SessionManager, alliance *services.AllianceService) *AllianceHandler {
	return &AllianceHandler{
		templates: templates,
		sessions:  sessions,
		alliance:  alliance,
	}
}

func (h *AllianceHandler) Nations(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, h.sessions, "Nations", "nations")
	data["Nations"] = h.alliance.AllNations(r.Context())

	render(w, r, h.templates, "nations.html", data)
}

func (h *AllianceHandler) Resources(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, h.sessions, "Resources", "resources")
	prices := h.alliance.ResourcePrices(r.Context())
	data["Prices"] = prices
	if prices != nil {
		data["PriceList"] = prices.List()
	}
	data["Now"] = time.Now().UTC()

	render(w, r, h.templates, "resources.html", data)
}
