package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lotus/internal/database"
	"lotus/internal/models"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

// AnnouncementService manages admin announcements. Each mutation commits on
// its own and is followed by a separate, best-effort activity log write.
type AnnouncementService struct {
	db       *database.DB
	activity ActivityRecorder
}

func NewAnnouncementService(db *database.DB, activity ActivityRecorder) *AnnouncementService {
	return &AnnouncementService{db: db, activity: activity}
}

func (s *AnnouncementService) Create(ctx context.Context, author *models.Account, title, content string) (*models.Announcement, error) {
	now := time.Now().UTC()
	a := &models.Announcement{
		Title:     title,
		Content:   content,
		Author:    author.DisplayName(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO announcements (title, content, author, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.Title, a.Content, a.Author, now, now,
	).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	recordActivity(ctx, s.activity, author.ID, ActionAnnouncementCreated, "Title: "+a.Title)
	return a, nil
}

func (s *AnnouncementService) Get(ctx context.Context, id int64) (*models.Announcement, error) {
	var a models.Announcement
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, author, created_at, updated_at FROM announcements WHERE id = $1",
		id,
	).Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

// Recent returns up to limit announcements, newest first.
func (s *AnnouncementService) Recent(ctx context.Context, limit int) ([]models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, author, created_at, updated_at
		 FROM announcements
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var out []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update replaces the fields that are non-nil.
func (s *AnnouncementService) Update(ctx context.Context, actor *models.Account, id int64, title, content *string) (*models.Announcement, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		a.Title = *title
	}
	if content != nil {
		a.Content = *content
	}
	a.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"UPDATE announcements SET title = $1, content = $2, updated_at = $3 WHERE id = $4",
		a.Title, a.Content, a.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrAnnouncementNotFound
	}

	recordActivity(ctx, s.activity, actor.ID, ActionAnnouncementUpdated, "Updated: "+a.Title)
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, actor *models.Account, id int64) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAnnouncementNotFound
	}

	recordActivity(ctx, s.activity, actor.ID, ActionAnnouncementDeleted, "Deleted: "+a.Title)
	return nil
}
