package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"lotus/internal/auth"
	"lotus/internal/models"
)

type contextKey string

const AccountContextKey contextKey = "account"

const (
	linkNationMessage = "Please link your P&W nation first."
	forbiddenMessage  = "You do not have permission to access this page."
)

type AuthMiddleware struct {
	sessions   *auth.SessionManager
	accounts   *auth.AccountService
	adminRanks []string
}

func NewAuthMiddleware(sessions *auth.SessionManager, accounts *auth.AccountService, adminRanks []string) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		accounts:   accounts,
		adminRanks: adminRanks,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := m.sessions.GetAccountID(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		account, err := m.accounts.GetByID(r.Context(), accountID)
		if err != nil {
			if !errors.Is(err, auth.ErrAccountNotFound) {
				slog.ErrorContext(r.Context(), "Failed to load account", "account_id", accountID, "error", err)
			}
			m.sessions.Clear(w, r)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), AccountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireNation must run after RequireAuth.
func (m *AuthMiddleware) RequireNation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := GetAccount(r)
		if account == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !account.IsLinked() {
			m.sessions.AddFlash(w, r, auth.FlashWarning, linkNationMessage)
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin must run after RequireNation.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.IsAdmin(GetAccount(r)) {
			m.sessions.AddFlash(w, r, auth.FlashDanger, forbiddenMessage)
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) IsAdmin(account *models.Account) bool {
	return auth.IsAdmin(account, m.adminRanks)
}

func GetAccount(r *http.Request) *models.Account {
	account, _ := r.Context().Value(AccountContextKey).(*models.Account)
	return account
}

// WithAccount returns a copy of r carrying account, as RequireAuth does.
func WithAccount(r *http.Request, account *models.Account) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), AccountContextKey, account))
}
