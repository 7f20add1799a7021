package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-qbank/internal/apperr"
)

const DefaultTokenTTL = 8 * time.Hour

type AuthService struct {
	hmac   []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(secret, issuer string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{hmac: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

type Claims struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(u User) (string, error) {
	now := a.now()
	claims := &Claims{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    a.issuer,
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

// Parse verifies signature, algorithm, issuer and expiry. Any failure is
// reported as apperr.ErrUnauthorized.
func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.ErrUnauthorized
	}
	return c, nil
}

// POST /login  { "email": "...", "password": "..." }
func LoginHandler(a *AuthService, users *UserStore) http.HandlerFunc {
	type out struct {
		User  User   `json:"user"`
		Token string `json:"token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		u, err := users.Authenticate(r.Context(), strings.TrimSpace(req.Email), req.Password)
		if err != nil {
			if errors.Is(err, apperr.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			slog.ErrorContext(r.Context(), "login failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal")
			return
		}
		tok, err := a.IssueJWT(u)
		if err != nil {
			slog.ErrorContext(r.Context(), "issue token", "err", err)
			writeError(w, http.StatusInternalServerError, "internal")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{User: u, Token: tok})
	}
}

// JWTMiddleware rejects requests without a valid bearer token and stores the
// token's user in the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer")
				return
			}
			c, err := a.Parse(tok)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "bad token")
				return
			}
			u := User{ID: c.ID, Name: c.Name, Email: c.Email}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// BcryptCost is the work factor for stored credentials.
const BcryptCost = 12

// bearerToken extracts the credential of an Authorization header. The scheme
// name is case-insensitive.
func bearerToken(h string) (string, bool) {
	const scheme = "Bearer "
	if len(h) < len(scheme) || !strings.EqualFold(h[:len(scheme)], scheme) {
		return "", false
	}
	return strings.TrimSpace(h[len(scheme):]), true
}

// HashPassword returns the bcrypt hash of pw as stored in users.password_hash.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
