package auth

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	SessionName      = "lotus-session"
	SessionAccountID = "account_id"
	SessionUsername  = "discord_username"
)

// Flash categories understood by the templates.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(secret string, maxAge int, secure bool) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// Get returns the request's session. A cookie that no longer decodes yields
// a fresh session together with the decode error.
func (m *SessionManager) Get(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, SessionName)
}

func (m *SessionManager) SetAccount(w http.ResponseWriter, r *http.Request, accountID int64, username string) error {
	session, _ := m.Get(r)
	session.Values[SessionAccountID] = accountID
	session.Values[SessionUsername] = username
	return session.Save(r, w)
}

func (m *SessionManager) GetAccountID(r *http.Request) (int64, bool) {
	session, err := m.Get(r)
	if err != nil {
		return 0, false
	}

	accountID, ok := session.Values[SessionAccountID].(int64)
	return accountID, ok
}

func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	session, _ := m.Get(r)
	session.AddFlash(Flash{Category: category, Message: message})
	return session.Save(r, w)
}

// Flashes pops pending flash messages. It writes the session cookie, so call
// it before the response body is written.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, err := m.Get(r)
	if err != nil {
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	_ = session.Save(r, w)
	return flashes
}

// Clear drops every session value. The cookie is kept so a flash added
// afterwards still reaches the next page.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.Get(r)
	session.Values = make(map[interface{}]interface{})
	return session.Save(r, w)
}
