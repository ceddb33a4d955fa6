package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"lotus/internal/models"
	"lotus/internal/pnw"
)

const transferNote = "Sent via Lotus"

var (
	ErrNoCredential     = errors.New("api key not set")
	ErrNoResources      = errors.New("no resources specified")
	ErrInvalidRecipient = errors.New("recipient nation id is required")
)

type CredentialSource interface {
	APIKey(ctx context.Context, account *models.Account) string
}

type ResourceAmount struct {
	Resource string
	Amount   float64
}

// BankService moves resources from a member's nation using the member's own
// API key, so the game attributes the transfer to them.
type BankService struct {
	api         GameMutator
	credentials CredentialSource
	activity    ActivityRecorder
}

func NewBankService(api GameMutator, credentials CredentialSource, activity ActivityRecorder) *BankService {
	return &BankService{api: api, credentials: credentials, activity: activity}
}

// PositiveAmounts keeps the strictly positive finite amounts of known
// resources in models.BankResources order.
func PositiveAmounts(amounts map[string]float64) []ResourceAmount {
	var out []ResourceAmount
	for _, r := range models.BankResources {
		if v, ok := amounts[r]; ok && v > 0 && !math.IsInf(v, 1) {
			out = append(out, ResourceAmount{Resource: r, Amount: v})
		}
	}
	return out
}

func (s *BankService) SendResources(ctx context.Context, account *models.Account, recipientID int64, amounts map[string]float64) ([]ResourceAmount, error) {
	apiKey := s.credentials.APIKey(ctx, account)
	if apiKey == "" {
		return nil, ErrNoCredential
	}

	resources := PositiveAmounts(amounts)
	if len(resources) == 0 {
		return nil, ErrNoResources
	}
	if recipientID <= 0 {
		return nil, ErrInvalidRecipient
	}

	args := pnw.Args{
		"receiver": recipientID,
		"note":     transferNote,
	}
	for _, r := range resources {
		args[r.Resource] = r.Amount
	}

	var result struct {
		ID models.ID `json:"id"`
	}
	if err := s.api.MutateWithKey(ctx, apiKey, "bankDeposit", args, "id", &result); err != nil {
		return nil, fmt.Errorf("failed to send resources: %w", err)
	}

	details := fmt.Sprintf("To nation %d: %s", recipientID, FormatAmounts(resources))
	recordActivity(ctx, s.activity, account.ID, ActionResourcesSent, details)
	slog.InfoContext(ctx, "Resources sent",
		"account_id", account.ID,
		"recipient_id", recipientID,
		"transaction_id", int64(result.ID))
	return resources, nil
}

func FormatAmounts(resources []ResourceAmount) string {
	parts := make([]string, len(resources))
	for i, r := range resources {
		parts[i] = r.Resource + "=" + strconv.FormatFloat(r.Amount, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}
