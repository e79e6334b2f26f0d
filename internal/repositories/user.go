package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
)

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByID returns the user with the given id, or nil if it does not exist.
func (r *UserReadRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash, role, referred_by,
		       created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns the user with the given username, or nil if absent.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash, role, referred_by,
		       created_at, updated_at
		FROM users
		WHERE username = $1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, username)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserWriteRepository handles user write operations
type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts a new user record.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.UserDB) error {
	query := `
		INSERT INTO users (user_id, username, email, password_hash, role,
		                   referred_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	args := []any{
		user.UserID, user.Username, user.Email, user.PasswordHash,
		user.Role, user.ReferredBy,
	}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{user.UserID, user.Username, user.Email, user.Role, user.ReferredBy},
		"error", err,
	)

	return err
}

// CountReferrals returns the live count of users directly referred by the
// given user. The referral tier is always derived from this count, never
// stored.
func (r *UserReadRepository) CountReferrals(ctx context.Context, referrerID uuid.UUID) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM users
		WHERE referred_by = $1
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, referrerID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{referrerID},
		"result", count,
		"error", err,
	)

	return count, err
}
