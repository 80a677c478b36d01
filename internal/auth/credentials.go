package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// bcrypt ignores input past 72 bytes.
const (
	minPassword = 8
	maxPassword = 72
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *credentials) normalize() {
	c.Username = strings.TrimSpace(c.Username)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

func (c credentials) validate() error {
	switch {
	case len(c.Username) < 3 || len(c.Username) > 30:
		return errors.New("username must be 3-30 chars")
	case strings.Contains(c.Username, "@"):
		return errors.New("username must not contain @")
	case !strings.Contains(c.Email, "@") || len(c.Email) > 255:
		return errors.New("invalid email")
	}
	return checkPassword(c.Password)
}

func checkPassword(p string) error {
	if len(p) < minPassword || len(p) > maxPassword {
		return errors.New("password must be 8-72 chars")
	}
	return nil
}

func hashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

// verifyPassword returns ErrInvalidCredentials for a nil user too, so
// callers cannot tell an unknown login from a wrong password.
func verifyPassword(u *User, p string) error {
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(p)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
