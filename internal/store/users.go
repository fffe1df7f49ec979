package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

const userColumns = `id, name, email, password_hash, role, created_at, deleted_at`

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates a new user. A second active account with the same email
// is rejected with a conflict.
func CreateUser(ctx context.Context, database *sql.DB, name, email, passwordHash string, role model.Role) (*model.User, error) {
	result, err := database.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		name, NormalizeEmail(email), passwordHash, string(role),
	)
	if db.IsUniqueViolation(err) {
		return nil, model.Errorf(model.ErrConflict, "email already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, database, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, database *sql.DB, id int64) (*model.User, error) {
	u := &model.User{}
	err := scanUser(database.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	), u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns the active user with the given email.
func GetUserByEmail(ctx context.Context, database *sql.DB, email string) (*model.User, error) {
	u := &model.User{}
	err := scanUser(database.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`, NormalizeEmail(email),
	), u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, database *sql.DB) ([]model.User, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserRole changes a user's role.
func UpdateUserRole(ctx context.Context, database *sql.DB, id int64, role model.Role) error {
	result, err := database.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		string(role), id,
	)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	return requireOneRow(result, "user")
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, database *sql.DB, id int64, passwordHash string) error {
	result, err := database.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return requireOneRow(result, "user")
}

// DeleteUser soft-deletes a user. Their reports and claims are kept.
func DeleteUser(ctx context.Context, database *sql.DB, id int64) error {
	result, err := database.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return requireOneRow(result, "user")
}

// requireOneRow turns a zero-row update into a not-found error.
func requireOneRow(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return model.Errorf(model.ErrNotFound, "%s not found", what)
	}
	return nil
}
