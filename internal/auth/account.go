package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lotus/internal/database"
	"lotus/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrNationTaken     = errors.New("nation already linked to another account")
)

const accountColumns = `id, discord_id, discord_username, nation_id, nation_name, alliance_rank,
	encrypted_api_key, created_at, updated_at`

// NationLink is the state written when a member links a nation. An empty
// APIKey keeps the stored credential.
type NationLink struct {
	NationID   int64
	NationName string
	Rank       string
	APIKey     string
}

type AccountService struct {
	db     *database.DB
	cipher *Cipher
}

func NewAccountService(db *database.DB, cipher *Cipher) *AccountService {
	return &AccountService{db: db, cipher: cipher}
}

func (s *AccountService) Create(ctx context.Context, discordID, username string) (*models.Account, error) {
	now := time.Now().UTC()
	account := &models.Account{
		DiscordID:       discordID,
		DiscordUsername: username,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO accounts (discord_id, discord_username, created_at, updated_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		discordID, username, now, now,
	).Scan(&account.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// Delete removes an account and its activity log.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM activity_logs WHERE account_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return tx.Commit()
}

func (s *AccountService) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return s.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
}

func (s *AccountService) GetByDiscordID(ctx context.Context, discordID string) (*models.Account, error) {
	return s.getOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE discord_id = $1", discordID)
}

func (s *AccountService) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.DiscordID, &a.DiscordUsername, &a.NationID, &a.NationName, &a.Rank,
		&a.EncryptedAPIKey, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// LinkNation writes nation id, name, rank and optionally a new credential in
// one statement and mirrors the change onto account.
func (s *AccountService) LinkNation(ctx context.Context, account *models.Account, link NationLink) error {
	var sealed any
	if link.APIKey != "" {
		ciphertext, err := s.cipher.Encrypt(link.APIKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt api key: %w", err)
		}
		sealed = ciphertext
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts
		 SET nation_id = $1, nation_name = $2, alliance_rank = $3,
		     encrypted_api_key = COALESCE($4, encrypted_api_key), updated_at = $5
		 WHERE id = $6`,
		link.NationID, link.NationName, link.Rank, sealed, now, account.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrNationTaken
		}
		return fmt.Errorf("failed to link nation: %w", err)
	}

	nationID, name, rank := link.NationID, link.NationName, link.Rank
	account.NationID = &nationID
	account.NationName = &name
	account.Rank = &rank
	if ciphertext, ok := sealed.([]byte); ok {
		account.EncryptedAPIKey = ciphertext
	}
	account.UpdatedAt = now
	return nil
}

func (s *AccountService) UpdateRank(ctx context.Context, account *models.Account, rank string) error {
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET alliance_rank = $1, updated_at = $2 WHERE id = $3",
		rank, now, account.ID,
	); err != nil {
		return fmt.Errorf("failed to update rank: %w", err)
	}
	account.Rank = &rank
	account.UpdatedAt = now
	return nil
}

// SetAPIKey seals and stores key. An empty key removes the credential.
func (s *AccountService) SetAPIKey(ctx context.Context, account *models.Account, key string) error {
	var sealed []byte
	if key != "" {
		ciphertext, err := s.cipher.Encrypt(key)
		if err != nil {
			return fmt.Errorf("failed to encrypt api key: %w", err)
		}
		sealed = ciphertext
	}

	var value any
	if sealed != nil {
		value = sealed
	}
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET encrypted_api_key = $1, updated_at = $2 WHERE id = $3",
		value, now, account.ID,
	); err != nil {
		return fmt.Errorf("failed to store api key: %w", err)
	}
	account.EncryptedAPIKey = sealed
	account.UpdatedAt = now
	return nil
}

// APIKey opens the account's stored credential. Missing or undecryptable
// credentials both return "".
func (s *AccountService) APIKey(ctx context.Context, account *models.Account) string {
	if !account.HasAPIKey() {
		return ""
	}
	key, err := s.cipher.Decrypt(account.EncryptedAPIKey)
	if err != nil {
		slog.WarnContext(ctx, "Failed to decrypt api key", "account_id", account.ID, "error", err)
		return ""
	}
	return key
}

func (s *AccountService) LogAction(ctx context.Context, accountID int64, action, details string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activity_logs (account_id, action, details, created_at) VALUES ($1, $2, $3, $4)",
		accountID, action, details, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

func (s *AccountService) RecentActivity(ctx context.Context, accountID int64, limit int) ([]models.ActivityLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, action, COALESCE(details, ''), created_at
		 FROM activity_logs
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.AccountID, &l.Action, &l.Details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
