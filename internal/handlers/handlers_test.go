package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"lotus/internal/auth"
	"lotus/internal/database"
	"lotus/internal/middleware"
	"lotus/internal/models"
	"lotus/internal/pnw"

	"github.com/stretchr/testify/require"
)

// recordingTemplates captures the last render instead of producing HTML.
type recordingTemplates struct {
	name string
	data map[string]interface{}
}

func (rt *recordingTemplates) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	rt.name = name
	rt.data, _ = data.(map[string]interface{})
	_, err := io.WriteString(w, name)
	return err
}

type fakeGame struct {
	queries   []string
	mutations []pnw.Args
	query     func(entity string, args pnw.Args) (string, error)
	mutate    func(args pnw.Args) error
}

func (f *fakeGame) Query(ctx context.Context, entity string, args pnw.Args, fields string, out any) error {
	f.queries = append(f.queries, entity)
	raw := "[]"
	if f.query != nil {
		var err error
		if raw, err = f.query(entity, args); err != nil {
			return err
		}
	}
	return json.Unmarshal([]byte(raw), out)
}

func (f *fakeGame) MutateWithKey(ctx context.Context, apiKey, entity string, args pnw.Args, fields string, out any) error {
	f.mutations = append(f.mutations, args)
	if f.mutate != nil {
		if err := f.mutate(args); err != nil {
			return err
		}
	}
	return json.Unmarshal([]byte(`{"id":"1"}`), out)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "lotus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAccounts(t *testing.T, db *database.DB) *auth.AccountService {
	t.Helper()
	c, err := auth.NewCipher(auth.DeriveKey("test-secret"))
	require.NoError(t, err)
	return auth.NewAccountService(db, c)
}

func newSessions() *auth.SessionManager {
	return auth.NewSessionManager("handler-test-secret-0123456789ab", 3600, false)
}

// linkedAccount creates an account linked to nation 501 with rank.
func linkedAccount(t *testing.T, accounts *auth.AccountService, rank, apiKey string) *models.Account {
	t.Helper()
	ctx := context.Background()
	account, err := accounts.Create(ctx, "D-"+rank, "kenji#0")
	require.NoError(t, err)
	require.NoError(t, accounts.LinkNation(ctx, account, auth.NationLink{
		NationID: 501, NationName: "Wakanda", Rank: rank, APIKey: apiKey,
	}))
	return account
}

func jsonRequest(method, target, body string, account *models.Account) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return middleware.WithAccount(req, account)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
