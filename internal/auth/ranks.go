package auth

import (
	"slices"

	"lotus/internal/models"
)

// IsAdmin reports whether account is nation-linked and holds one of ranks.
func IsAdmin(account *models.Account, ranks []string) bool {
	if !account.IsLinked() {
		return false
	}
	return slices.Contains(ranks, account.RankName())
}
