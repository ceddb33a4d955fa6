package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"lotus/internal/auth"
	"lotus/internal/models"
	"lotus/internal/pnw"
)

const defaultRank = "Member"

var (
	ErrNationNameRequired = errors.New("nation name is required")
	ErrNationNotFound     = errors.New("nation not found")
)

// NotMemberError rejects a nation that belongs to another alliance.
type NotMemberError struct {
	NationAllianceID   int64
	RequiredAllianceID int64
}

func (e *NotMemberError) Error() string {
	return fmt.Sprintf("nation belongs to alliance %d, required %d", e.NationAllianceID, e.RequiredAllianceID)
}

type AccountStore interface {
	ActivityRecorder
	LinkNation(ctx context.Context, account *models.Account, link auth.NationLink) error
	UpdateRank(ctx context.Context, account *models.Account, rank string) error
}

// MemberService ties accounts to in-game nations.
type MemberService struct {
	api        GameQuerier
	accounts   AccountStore
	allianceID int64
}

func NewMemberService(api GameQuerier, accounts AccountStore, allianceID int64) *MemberService {
	return &MemberService{api: api, accounts: accounts, allianceID: allianceID}
}

// LinkNation looks nationName up, checks it belongs to the alliance and
// stores it on account along with its rank and, when given, the member's
// API key. The account is untouched on any error.
func (s *MemberService) LinkNation(ctx context.Context, account *models.Account, nationName, apiKey string) (*models.Nation, error) {
	nationName = strings.TrimSpace(nationName)
	apiKey = strings.TrimSpace(apiKey)
	if nationName == "" {
		return nil, ErrNationNameRequired
	}

	var nations []models.Nation
	err := s.api.Query(ctx, "nations", pnw.Args{
		"nation_name": []string{nationName},
		"first":       1,
	}, "id nation_name alliance_id alliance_position alliance_position_info { name }", &nations)
	if err != nil {
		return nil, fmt.Errorf("failed to look up nation: %w", err)
	}
	if len(nations) == 0 {
		return nil, ErrNationNotFound
	}

	nation := nations[0]
	if int64(nation.AllianceID) != s.allianceID {
		return nil, &NotMemberError{NationAllianceID: int64(nation.AllianceID), RequiredAllianceID: s.allianceID}
	}

	rank := nation.Position()
	if rank == "" {
		rank = defaultRank
	}
	if err := s.accounts.LinkNation(ctx, account, auth.NationLink{
		NationID:   int64(nation.ID),
		NationName: nation.NationName,
		Rank:       rank,
		APIKey:     apiKey,
	}); err != nil {
		return nil, err
	}

	recordActivity(ctx, s.accounts, account.ID, ActionNationLinked, "Linked nation: "+nation.NationName)
	slog.InfoContext(ctx, "Nation linked", "account_id", account.ID, "nation_id", int64(nation.ID), "rank", rank)
	return &nation, nil
}

// SyncRank refreshes account's rank from the game. Failures leave the stored
// rank in place.
func (s *MemberService) SyncRank(ctx context.Context, account *models.Account) {
	if !account.IsLinked() {
		return
	}

	var nations []models.Nation
	err := s.api.Query(ctx, "nations", pnw.Args{
		"id":    []int64{*account.NationID},
		"first": 1,
	}, "alliance_position alliance_position_info { name }", &nations)
	if err != nil {
		slog.ErrorContext(ctx, "Error syncing rank", "account_id", account.ID, "error", err)
		return
	}
	if len(nations) == 0 {
		return
	}

	rank := nations[0].Position()
	if rank == "" || rank == account.RankName() {
		return
	}
	if err := s.accounts.UpdateRank(ctx, account, rank); err != nil {
		slog.ErrorContext(ctx, "Error syncing rank", "account_id", account.ID, "error", err)
	}
}
