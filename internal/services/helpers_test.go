package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"lotus/internal/auth"
	"lotus/internal/database"
	"lotus/internal/pnw"

	"github.com/stretchr/testify/require"
)

type apiCall struct {
	apiKey string
	entity string
	args   pnw.Args
	fields string
}

// fakeGameAPI answers queries and mutations from callbacks and records every
// call. Responses go through JSON so decoding matches the real client.
type fakeGameAPI struct {
	mu        sync.Mutex
	queries   []apiCall
	mutations []apiCall
	onQuery   func(entity string, args pnw.Args) (any, error)
	onMutate  func(entity string, args pnw.Args) (any, error)
}

func (f *fakeGameAPI) Query(ctx context.Context, entity string, args pnw.Args, fields string, out any) error {
	f.mu.Lock()
	f.queries = append(f.queries, apiCall{entity: entity, args: args, fields: fields})
	f.mu.Unlock()
	return decodeInto(f.onQuery, entity, args, out)
}

func (f *fakeGameAPI) MutateWithKey(ctx context.Context, apiKey, entity string, args pnw.Args, fields string, out any) error {
	f.mu.Lock()
	f.mutations = append(f.mutations, apiCall{apiKey: apiKey, entity: entity, args: args, fields: fields})
	f.mu.Unlock()
	return decodeInto(f.onMutate, entity, args, out)
}

func decodeInto(fn func(string, pnw.Args) (any, error), entity string, args pnw.Args, out any) error {
	if fn == nil {
		return json.Unmarshal([]byte("[]"), out)
	}
	v, err := fn(entity, args)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

type activityEntry struct {
	accountID int64
	action    string
	details   string
}

type fakeActivity struct {
	entries []activityEntry
	err     error
}

func (f *fakeActivity) LogAction(ctx context.Context, accountID int64, action, details string) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, activityEntry{accountID: accountID, action: action, details: details})
	return nil
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

func nationRows(start, n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		id := start + i
		rows[i] = map[string]any{
			"id":          strconv.Itoa(id),
			"nation_name": "Nation " + strconv.Itoa(id),
			"num_cities":  10,
			"last_active": "2026-10-14T00:00:00+00:00",
		}
	}
	return rows
}

func strPtr(s string) *string { return &s }
