package models

import "time"

type Account struct {
	ID              int64     `json:"id"`
	DiscordID       string    `json:"discord_id"`
	DiscordUsername string    `json:"discord_username"`
	NationID        *int64    `json:"nation_id"`
	NationName      *string   `json:"nation_name"`
	Rank            *string   `json:"rank"`
	EncryptedAPIKey []byte    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (a *Account) IsLinked() bool {
	return a != nil && a.NationID != nil
}

func (a *Account) HasAPIKey() bool {
	return a != nil && len(a.EncryptedAPIKey) > 0
}

// DisplayName is the nation name once linked, else the Discord username.
func (a *Account) DisplayName() string {
	if a.NationName != nil && *a.NationName != "" {
		return *a.NationName
	}
	return a.DiscordUsername
}

func (a *Account) RankName() string {
	if a.Rank == nil {
		return ""
	}
	return *a.Rank
}

type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ActivityLog struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
