package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/speakerdesk-backend/internal/modules/user"
)

// Users looks up admin accounts by email.
type Users interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
}

type service struct {
	users  Users
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(users Users, secret string, ttl time.Duration, log zerolog.Logger) Service {
	return &service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log.With().Str("module", "auth").Logger(),
		now:    time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*Token, error) {
	u, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Warn().Str("user_id", u.ID.String()).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expirationTime := now.Add(s.ttl)
	claims := &Claims{
		Email: u.Email,
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: expirationTime.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info().Str("user_id", u.ID.String()).Msg("admin logged in")
	return &Token{AccessToken: tokenString, TokenType: "Bearer", ExpiresAt: expirationTime.UTC()}, nil
}

func (s *service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
