package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"water_map/internal/domain"
)

// AuthService is the admin session gate: it verifies credentials against
// the admin_users table and issues signed, expiring bearer tokens. The
// original stand-in (an unsigned base64 payload) is deliberately not
// reproduced.
type AuthService struct {
	admins domain.AdminRepository
	secret []byte
	ttl    time.Duration
}

func NewAuthService(admins domain.AdminRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{admins: admins, secret: []byte(secret), ttl: ttl}
}

type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Login checks the password and returns a welcome message plus a signed
// token. Unknown username and wrong password both come back as
// ErrInvalidCredentials; the caller learns nothing about which it was.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	if username == "" {
		return "", "", domain.Invalid("username", "must not be empty")
	}
	if password == "" {
		return "", "", domain.Invalid("password", "must not be empty")
	}

	admin, err := s.admins.GetAdminByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return "", "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	claims := AdminClaims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Welcome back, %s!", admin.Username), token, nil
}

// Verify validates a bearer token and returns the authenticated admin
// username. Every admin-gated call goes through here; reviewer identity
// is always this value, never a request field.
func (s *AuthService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidCredentials
	}
	claims, ok := token.Claims.(*AdminClaims)
	if !ok || claims.Username == "" {
		return "", domain.ErrInvalidCredentials
	}
	return claims.Username, nil
}
