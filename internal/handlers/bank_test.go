package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lotus/internal/pnw"
	"lotus/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBankHandlerForTest(t *testing.T, apiKey string) (*BankHandler, *fakeGame, *httptest.ResponseRecorder, func(body string) *http.Request) {
	t.Helper()
	db := newTestDB(t)
	accounts := newTestAccounts(t, db)
	account := linkedAccount(t, accounts, "Member", apiKey)

	game := &fakeGame{}
	h := NewBankHandler(services.NewBankService(game, accounts, accounts))
	req := func(body string) *http.Request {
		return jsonRequest(http.MethodPost, "/api/send-resources", body, account)
	}
	return h, game, httptest.NewRecorder(), req
}

func TestSendResourcesAcceptsNumbersAndStrings(t *testing.T) {
	h, game, rec, req := newBankHandlerForTest(t, "member-key")

	h.SendResources(rec, req(`{"recipient_id":"42","money":"1500.5","food":20,"steel":"","coal":0}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, apiResponse{Success: true, Message: "Resources sent successfully"}, decodeResponse(t, rec))
	require.Len(t, game.mutations, 1)
	assert.Equal(t, int64(42), game.mutations[0]["receiver"])
	assert.Equal(t, 1500.5, game.mutations[0]["money"])
	assert.Equal(t, 20.0, game.mutations[0]["food"])
	assert.NotContains(t, game.mutations[0], "coal")
	assert.NotContains(t, game.mutations[0], "steel")
}

func TestSendResourcesWithoutAPIKey(t *testing.T) {
	h, game, rec, req := newBankHandlerForTest(t, "")

	h.SendResources(rec, req(`{"recipient_id":42,"food":5}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiResponse{Success: false, Message: "API key not set. Please update your profile."}, decodeResponse(t, rec))
	assert.Empty(t, game.mutations)
}

func TestSendResourcesRejectsBadInput(t *testing.T) {
	cases := map[string]struct {
		body    string
		message string
	}{
		"no amounts":          {`{"recipient_id":42,"food":0}`, "No resources specified"},
		"negative":            {`{"recipient_id":42,"food":-3}`, "No resources specified"},
		"not a number":        {`{"recipient_id":42,"food":"lots"}`, "Invalid amount for food"},
		"missing receiver":    {`{"food":3}`, "Recipient nation ID is required"},
		"not json":            {`food=3`, "Invalid request body"},
		"fractional receiver": {`{"recipient_id":42.9,"food":5}`, "Invalid recipient_id"},
		"oversized receiver":  {`{"recipient_id":1e20,"food":5}`, "Invalid recipient_id"},
		"receiver as text":    {`{"recipient_id":"abc","food":5}`, "Invalid recipient_id"},
		"infinite amount":     {`{"recipient_id":42,"money":"Inf"}`, "Invalid amount for money"},
		"nan amount":          {`{"recipient_id":42,"money":"NaN"}`, "Invalid amount for money"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h, game, rec, req := newBankHandlerForTest(t, "member-key")

			h.SendResources(rec, req(tc.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, decodeResponse(t, rec).Message)
			assert.Empty(t, game.mutations)
		})
	}
}

func TestSendResourcesUpstreamFailure(t *testing.T) {
	h, game, rec, req := newBankHandlerForTest(t, "member-key")
	game.mutate = func(pnw.Args) error { return errors.New("insufficient funds") }

	h.SendResources(rec, req(`{"recipient_id":42,"food":5}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Error: ")
	assert.Contains(t, resp.Message, "insufficient funds")
}
