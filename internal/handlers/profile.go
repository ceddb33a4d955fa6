package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"lotus/internal/auth"
	"lotus/internal/middleware"
	"lotus/internal/services"
)

const recentActivityLimit = 10

type ProfileHandler struct {
	templates TemplateExecutor
	sessions  *auth.SessionManager
	accounts  *auth.AccountService
	members   *services.MemberService
}

func NewProfileHandler(templates TemplateExecutor, sessions *auth.SessionManager, accounts *auth.AccountService, members *services.MemberService) *ProfileHandler {
	return &ProfileHandler{
		templates: templates,
		sessions:  sessions,
		accounts:  accounts,
		members:   members,
	}
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r)
}

// LinkNation handles the profile form. Rejections re-render the profile with
// a flash; success redirects to the dashboard.
func (h *ProfileHandler) LinkNation(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)

	if err := r.ParseForm(); err != nil {
		h.sessions.AddFlash(w, r, auth.FlashDanger, "Invalid form data")
		h.renderProfile(w, r)
		return
	}

	_, err := h.members.LinkNation(r.Context(), account, r.FormValue("nation_name"), r.FormValue("api_key"))
	if err != nil {
		h.sessions.AddFlash(w, r, auth.FlashDanger, h.linkErrorMessage(err))
		h.renderProfile(w, r)
		return
	}

	h.sessions.AddFlash(w, r, auth.FlashSuccess, "Nation linked successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// UpdateAPIKey replaces the stored game API key, or removes it when the form
// carries "clear".
func (h *ProfileHandler) UpdateAPIKey(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)

	if err := r.ParseForm(); err != nil {
		h.sessions.AddFlash(w, r, auth.FlashDanger, "Invalid form data")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	key := strings.TrimSpace(r.FormValue("api_key"))
	remove := r.FormValue("clear") != ""
	if !remove && key == "" {
		h.sessions.AddFlash(w, r, auth.FlashDanger, "API key is required.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	if remove {
		key = ""
	}

	if err := h.accounts.SetAPIKey(r.Context(), account, key); err != nil {
		slog.ErrorContext(r.Context(), "API key update error", "account_id", account.ID, "error", err)
		h.sessions.AddFlash(w, r, auth.FlashDanger, "Error saving API key.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	if remove {
		h.sessions.AddFlash(w, r, auth.FlashSuccess, "API key removed.")
	} else {
		h.sessions.AddFlash(w, r, auth.FlashSuccess, "API key updated.")
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *ProfileHandler) linkErrorMessage(err error) string {
	var notMember *services.NotMemberError
	switch {
	case errors.Is(err, services.ErrNationNameRequired):
		return "Nation name is required."
	case errors.Is(err, services.ErrNationNotFound):
		return "Nation not found in Politics & War."
	case errors.As(err, &notMember):
		return fmt.Sprintf("You are not a member of our alliance. Your alliance ID: %d, Required: %d",
			notMember.NationAllianceID, notMember.RequiredAllianceID)
	case errors.Is(err, auth.ErrNationTaken):
		return "That nation is already linked to another account."
	default:
		slog.Error("Nation link error", "error", err)
		return "Error linking nation: " + err.Error()
	}
}

func (h *ProfileHandler) renderProfile(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r)
	data := pageData(w, r, h.sessions, "Profile", "profile")

	activity, err := h.accounts.RecentActivity(r.Context(), account.ID, recentActivityLimit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load activity", "account_id", account.ID, "error", err)
	}
	data["Activity"] = activity
	data["HasAPIKey"] = account.HasAPIKey()

	render(w, r, h.templates, "profile.html", data)
}
