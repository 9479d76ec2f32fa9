package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// UserRepo implements repository.UserRepository over MySQL.
type UserRepo struct{ q queryer }

// Create inserts a user row. On success the user's ID is populated.
// Duplicate usernames or emails surface as ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (username, email, password_hash, is_admin)
	           VALUES (?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, u.Username, u.Email, u.PasswordHash, u.IsAdmin)
	if err != nil {
		// 1062 is the MySQL duplicate-key error code.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return repository.ErrUsernameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, username, email, password_hash, is_admin, created_at
	           FROM users WHERE id = ? LIMIT 1`
	return r.scanOne(r.q.QueryRowContext(ctx, q, id))
}

// GetByUsername fetches a user by its normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, email, password_hash, is_admin, created_at
	           FROM users WHERE username = ? LIMIT 1`
	return r.scanOne(r.q.QueryRowContext(ctx, q, strings.TrimSpace(username)))
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListNonAdmins returns all regular user accounts ordered by id.
func (r *UserRepo) ListNonAdmins(ctx context.Context) ([]model.User, error) {
	const q = `SELECT id, username, email, password_hash, is_admin, created_at
	           FROM users WHERE is_admin = FALSE ORDER BY id`
	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// CountNonAdmins counts regular user accounts.
func (r *UserRepo) CountNonAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_admin = FALSE`).Scan(&n)
	return n, err
}

// Delete removes a user and, first, all of the user's reservations.
// The cascade is an explicit statement rather than an FK trigger so
// the ownership rule is enforced identically by every backend.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM reservations WHERE user_id = ?`, id); err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}
