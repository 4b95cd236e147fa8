package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository abstracts user lookups and the durable online flag.
type UserRepository interface {
	GetUser(ctx context.Context, userID int64) (models.User, error)
	SearchUsers(ctx context.Context, query string, page, limit int) (models.UserPage, error)
	SetOnline(ctx context.Context, userID int64, online bool) error
}

// UserRepo is a sqlx-backed UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, email, fullname, is_online, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SearchUsers lists users whose name or email contains the query, name-sorted
// and paged. An empty query lists everyone.
func (r *UserRepo) SearchUsers(ctx context.Context, query string, page, limit int) (models.UserPage, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit
	pattern := "%" + query + "%"

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users
        WHERE $1 = '%%' OR fullname ILIKE $1 OR email ILIKE $1`, pattern); err != nil {
		return models.UserPage{}, err
	}

	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `SELECT id, email, fullname, is_online, created_at FROM users
        WHERE $1 = '%%' OR fullname ILIKE $1 OR email ILIKE $1
        ORDER BY fullname ASC, id ASC
        LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return models.UserPage{}, err
	}

	totalPages := (total + limit - 1) / limit
	return models.UserPage{Page: page, Limit: limit, Total: total, TotalPages: totalPages, Users: users}, nil
}

// SetOnline updates the durable online flag. The presence registry stays the
// authority; this flag only feeds user listings.
func (r *UserRepo) SetOnline(ctx context.Context, userID int64, online bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_online=$2 WHERE id=$1`, userID, online)
	return err
}
