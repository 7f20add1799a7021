package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-qbank/internal/apperr"
)

// dummyHash keeps unknown-email logins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("qbank-dummy-password"), bcrypt.MinCost)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore { return &UserStore{db: db} }

// Authenticate returns the user for email when password matches its stored
// bcrypt hash, apperr.ErrUnauthorized otherwise.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (User, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash FROM users WHERE email=$1`, strings.ToLower(email),
	).Scan(&u.ID, &u.Name, &u.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, apperr.ErrUnauthorized
	}
	if err != nil {
		return User{}, fmt.Errorf("auth: lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, apperr.ErrUnauthorized
	}
	return u, nil
}

// Upsert creates the user or replaces name and password hash of an existing
// one with the same email. passwordHash must already be a bcrypt hash.
func (s *UserStore) Upsert(ctx context.Context, name, email, passwordHash string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, apperr.Invalid("email", "required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return User{}, apperr.Invalid("password_hash", "not a bcrypt hash")
	}
	var u User
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name, password_hash=EXCLUDED.password_hash
		RETURNING id, name, email`,
		name, email, passwordHash, time.Now().Unix(),
	).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		return User{}, fmt.Errorf("auth: upsert user: %w", err)
	}
	return u, nil
}
