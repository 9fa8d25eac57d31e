package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*Token, error)

	// Verify parses a token issued by Login and returns its claims.
	Verify(token string) (*Claims, error)
}

// Claims is the JWT payload. Subject holds the admin user id.
type Claims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// Token is the login response.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginRequest is the admin login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
