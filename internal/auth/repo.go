package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrEmailTaken    = errors.New("email already exists")
	ErrUsernameTaken = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const userColumns = `id, username, email, password_hash, token_version, created_at`

// CreateUser relies on the table's UNIQUE constraints and reports a
// clash as ErrEmailTaken or ErrUsernameTaken.
func (r *Repo) CreateUser(ctx context.Context, u User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Username, strings.ToLower(u.Email), u.PasswordHash)
	if err != nil {
		if taken := uniqueViolation(err); taken != nil {
			return taken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

// GetByLogin matches a username exactly or an email case-insensitively.
// Usernames cannot contain '@', so the two never collide.
func (r *Repo) GetByLogin(ctx context.Context, login string) (*User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return r.getOne(ctx, `WHERE email = ?`, strings.ToLower(login))
	}
	return r.getOne(ctx, `WHERE username = ?`, login)
}

func (r *Repo) getOne(ctx context.Context, where string, arg any) (*User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg)

	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetTokenVersion reports found=false for a deleted user so their
// outstanding tokens stop working.
func (r *Repo) GetTokenVersion(ctx context.Context, id string) (version int, found bool, err error) {
	err = r.DB.QueryRowContext(ctx, `SELECT token_version FROM users WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get token version: %w", err)
	}
	return version, true, nil
}

// RevokeTokens bumps the user's token version, invalidating every token
// issued so far, and returns the new version. A non-empty passwordHash
// replaces the stored one in the same statement.
func (r *Repo) RevokeTokens(ctx context.Context, id, passwordHash string) (int, error) {
	var version int
	err := r.DB.QueryRowContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1,
		    password_hash = COALESCE(NULLIF(?, ''), password_hash)
		WHERE id = ?
		RETURNING token_version
	`, passwordHash, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("revoke tokens: %w", err)
	}
	return version, nil
}

func uniqueViolation(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return nil
	}
	switch msg := se.Error(); {
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	case strings.Contains(msg, "users.username"):
		return ErrUsernameTaken
	}
	return nil
}
