package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"lotus/internal/auth"
	"lotus/internal/services"
)

const (
	loginFailedMessage = "Login failed. Please try again."
	welcomeMessage     = "Welcome! Please link your P&W nation to continue."
	loggedOutMessage   = "You have been logged out."
)

type AuthHandler struct {
	templates TemplateExecutor
	sessions  *auth.SessionManager
	accounts  *auth.AccountService
	discord   *auth.DiscordClient
	members   *services.MemberService
}

func NewAuthHandler(templates TemplateExecutor, sessions *auth.SessionManager, accounts *auth.AccountService, discord *auth.DiscordClient, members *services.MemberService) *AuthHandler {
	return &AuthHandler{
		templates: templates,
		sessions:  sessions,
		accounts:  accounts,
		discord:   discord,
		members:   members,
	}
}

func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to dashboard
	if _, ok := h.sessions.GetAccountID(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	render(w, r, h.templates, "login.html", pageData(w, r, h.sessions, "Login", "login"))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.discord.AuthURL(), http.StatusFound)
}

// Callback completes the Discord authorization code flow. Any failure leaves
// accounts and the session untouched.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		h.loginFailed(w, r, auth.ErrMissingCode)
		return
	}

	user, err := h.discord.Exchange(ctx, code)
	if err != nil {
		h.loginFailed(w, r, err)
		return
	}

	created := false
	account, err := h.accounts.GetByDiscordID(ctx, user.ID)
	switch {
	case errors.Is(err, auth.ErrAccountNotFound):
		account, err = h.accounts.Create(ctx, user.ID, user.DisplayName())
		if err != nil {
			h.loginFailed(w, r, err)
			return
		}
		created = true
	case err != nil:
		h.loginFailed(w, r, err)
		return
	default:
		h.members.SyncRank(ctx, account)
	}

	if err := h.sessions.SetAccount(w, r, account.ID, account.DiscordUsername); err != nil {
		if created {
			if derr := h.accounts.Delete(ctx, account.ID); derr != nil {
				slog.ErrorContext(ctx, "Failed to remove account after session error", "account_id", account.ID, "error", derr)
			}
		}
		h.loginFailed(w, r, err)
		return
	}

	if created {
		h.sessions.AddFlash(w, r, auth.FlashInfo, welcomeMessage)
		slog.InfoContext(ctx, "Account created", "account_id", account.ID, "discord_id", user.ID)
	}

	if !account.IsLinked() {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	h.sessions.AddFlash(w, r, auth.FlashSuccess, loggedOutMessage)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Login error", "error", err)
	h.sessions.AddFlash(w, r, auth.FlashDanger, loginFailedMessage)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
