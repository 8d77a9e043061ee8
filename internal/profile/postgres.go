package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-stylist/internal/models"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS user_profiles (
	user_id       TEXT PRIMARY KEY,
	style_profile TEXT NOT NULL DEFAULT '',
	wardrobe      TEXT NOT NULL DEFAULT '',
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

	selectProfileSQL = `SELECT user_id, style_profile, wardrobe, updated_at FROM user_profiles WHERE user_id = $1`

	upsertProfileSQL = `INSERT INTO user_profiles (user_id, style_profile, wardrobe, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET
	style_profile = EXCLUDED.style_profile,
	wardrobe = EXCLUDED.wardrobe,
	updated_at = EXCLUDED.updated_at`
)

// PostgresStore is the durable profile store.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create user_profiles: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, userID string) (profile *models.StyleProfile, err error) {
	defer func() { observe("postgres", "load", err) }()

	var p models.StyleProfile
	err = s.db.QueryRowContext(ctx, selectProfileSQL, userID).Scan(
		&p.UserID, &p.StyleProfile, &p.Wardrobe, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return &p, nil
}

// Save upserts the profile and stamps UpdatedAt.
func (s *PostgresStore) Save(ctx context.Context, profile *models.StyleProfile) (err error) {
	defer func() { observe("postgres", "save", err) }()

	if profile == nil || profile.UserID == "" {
		return ErrMissingUserID
	}

	profile.UpdatedAt = s.now().UTC()
	_, err = s.db.ExecContext(ctx, upsertProfileSQL,
		profile.UserID, profile.StyleProfile, profile.Wardrobe, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", profile.UserID, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
