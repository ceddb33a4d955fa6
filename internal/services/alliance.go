package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"lotus/internal/models"
	"lotus/internal/pnw"
)

const (
	// InactiveAfterDays is the idle time at which a member is reported.
	InactiveAfterDays = 3
	// MaxRosterPages bounds AllNations at MaxRosterPages*pnw.PageSize nations.
	MaxRosterPages = 5
	warLimit       = 100
)

const rosterFields = `id nation_name num_cities beige_turns projects soldiers tanks aircraft ships
	missiles nukes color last_active alliance_position`

type InactiveMember struct {
	Name       string
	Days       int
	LastActive time.Time
}

// AllianceService aggregates alliance-wide data from the game API. Failures
// never reach the caller: they are logged and yield empty results.
type AllianceService struct {
	api        GameQuerier
	allianceID int64
	now        func() time.Time
}

func NewAllianceService(api GameQuerier, allianceID int64) *AllianceService {
	return &AllianceService{api: api, allianceID: allianceID, now: time.Now}
}

// InactiveMembers lists members idle for InactiveAfterDays or more, most
// idle first. Members with equal idle days keep API order.
func (s *AllianceService) InactiveMembers(ctx context.Context) []InactiveMember {
	var nations []models.Nation
	err := s.api.Query(ctx, "nations", pnw.Args{
		"alliance_id": []int64{s.allianceID},
		"first":       pnw.PageSize,
	}, "nation_name last_active", &nations)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get inactive members", "error", err)
		return []InactiveMember{}
	}

	now := s.now().UTC()
	inactive := []InactiveMember{}
	for _, n := range nations {
		lastActive, err := ParseLastActive(n.LastActive)
		if err != nil {
			slog.WarnContext(ctx, "Failed to parse activity", "nation", n.NationName, "last_active", n.LastActive, "error", err)
			continue
		}
		days := DaysSince(now, lastActive)
		if days >= InactiveAfterDays {
			inactive = append(inactive, InactiveMember{Name: n.NationName, Days: days, LastActive: lastActive})
		}
	}

	sort.SliceStable(inactive, func(i, j int) bool {
		return inactive[i].Days > inactive[j].Days
	})
	return inactive
}

var lastActiveLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

// ParseLastActive parses an ISO-8601 timestamp with a UTC offset or a
// trailing Z. Fractional seconds and a space separator are accepted;
// timestamps without an offset are rejected.
func ParseLastActive(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range lastActiveLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("invalid last_active %q: %w", s, firstErr)
}

// DaysSince is the number of whole days from t to now, rounded down.
func DaysSince(now, t time.Time) int {
	return int(math.Floor(now.Sub(t).Seconds() / 86400))
}

// AllNations pages through the alliance roster. It stops after a short page,
// after MaxRosterPages pages, or at the first failure, returning what it
// has collected.
func (s *AllianceService) AllNations(ctx context.Context) []models.Nation {
	all := []models.Nation{}
	for page := 1; page <= MaxRosterPages; page++ {
		var nations []models.Nation
		err := s.api.Query(ctx, "nations", pnw.Args{
			"alliance_id": []int64{s.allianceID},
			"first":       pnw.PageSize,
			"page":        page,
		}, rosterFields, &nations)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get nations data", "page", page, "error", err)
			break
		}

		all = append(all, nations...)
		if len(nations) != pnw.PageSize {
			break
		}
	}
	return all
}

func (s *AllianceService) ActiveWars(ctx context.Context) []models.War {
	var wars []models.War
	err := s.api.Query(ctx, "wars", pnw.Args{
		"alliance_id": []int64{s.allianceID},
		"active":      true,
		"first":       warLimit,
	}, "id war_type turns_left attacker { id nation_name } defender { id nation_name }", &wars)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get wars", "error", err)
		return []models.War{}
	}
	if wars == nil {
		wars = []models.War{}
	}
	return wars
}

// ResourcePrices returns the current trade prices, or nil when unavailable.
func (s *AllianceService) ResourcePrices(ctx context.Context) *models.TradePrices {
	var prices []models.TradePrices
	err := s.api.Query(ctx, "tradeprices", pnw.Args{"first": 1},
		"food coal oil uranium lead iron bauxite gasoline munitions steel aluminum", &prices)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get prices", "error", err)
		return nil
	}
	if len(prices) == 0 {
		return nil
	}
	return &prices[0]
}
