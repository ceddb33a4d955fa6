package services

import (
	"context"
	"log/slog"

	"lotus/internal/metrics"
	"lotus/internal/pnw"
)

// Activity log actions.
const (
	ActionNationLinked        = "Nation Linked"
	ActionAnnouncementCreated = "Announcement Created"
	ActionAnnouncementUpdated = "Announcement Updated"
	ActionAnnouncementDeleted = "Announcement Deleted"
	ActionResourcesSent       = "Resources Sent"
)

// GameQuerier reads from the game API with the alliance key.
type GameQuerier interface {
	Query(ctx context.Context, entity string, args pnw.Args, fields string, out any) error
}

// GameMutator writes to the game API as the owner of apiKey.
type GameMutator interface {
	MutateWithKey(ctx context.Context, apiKey, entity string, args pnw.Args, fields string, out any) error
}

type ActivityRecorder interface {
	LogAction(ctx context.Context, accountID int64, action, details string) error
}

// recordActivity appends an audit entry after the primary write has
// committed. Failures are logged and counted, never returned: the primary
// action stands either way.
func recordActivity(ctx context.Context, rec ActivityRecorder, accountID int64, action, details string) {
	if err := rec.LogAction(ctx, accountID, action, details); err != nil {
		metrics.RecordActivityLogFailure()
		slog.ErrorContext(ctx, "Failed to write activity log",
			"account_id", accountID,
			"action", action,
			"error", err)
	}
}
