package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quizforge/internal/model"
)

// ErrLastAdmin is returned when deactivating a user would leave the builder
// with no active admin, locking everyone out of account management.
var ErrLastAdmin = errors.New("cannot deactivate the only active admin")

const userColumns = `id, username, display_name, password_hash, role, active, created_at`

func scanUser(scan func(dest ...any) error) (*model.User, error) {
	var u model.User
	err := scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new builder account. The role must be one of the
// builder roles.
func (s *Store) CreateUser(u model.User) (int64, error) {
	if !model.ValidRole(u.Role) {
		return 0, fmt.Errorf("unknown role %q", u.Role)
	}
	res, err := s.db.Exec(
		`INSERT INTO users (username, display_name, password_hash, role, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Username, u.DisplayName, u.PasswordHash, u.Role, u.Active, time.Now(),
	)
	if err != nil {
		slog.Error("failed to create user", "username", u.Username, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created user", "id", id, "username", u.Username, "role", u.Role)
	return id, nil
}

// GetUserByUsername returns an account by username, or nil when unknown.
func (s *Store) GetUserByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	)
	return scanUser(row.Scan)
}

// GetUserByID returns an account by id, or nil when unknown.
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	)
	return scanUser(row.Scan)
}

// ListUsers returns all builder accounts.
func (s *Store) ListUsers() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ToggleUserActive flips the active flag on an account. Deactivating the
// only active admin is refused with ErrLastAdmin, and deactivation revokes
// the user's live login sessions.
func (s *Store) ToggleUserActive(id int64) error {
	u, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %d not found", id)
	}
	if u.Active && u.Role == model.RoleAdmin {
		var admins int
		err := s.db.QueryRow(
			`SELECT COUNT(*) FROM users WHERE role = ? AND active = 1`, model.RoleAdmin,
		).Scan(&admins)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	if _, err := s.db.Exec(`UPDATE users SET active = NOT active WHERE id = ?`, id); err != nil {
		return err
	}
	if u.Active {
		return s.DeleteUserSessions(id)
	}
	return nil
}

// UserCount returns the total number of accounts.
func (s *Store) UserCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
