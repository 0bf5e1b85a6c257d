package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/zlutov/notepad/models"
	"github.com/zlutov/notepad/store"
	"golang.org/x/crypto/bcrypt"
)

// Compared against when the email is unknown, so the unknown-user and
// wrong-password paths cost the same. Hash of an arbitrary string.
var dummyPasswordHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func (s *Service) Register(ctx context.Context, fullName, email, password string) (models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)

	if err := validateRegistration(fullName, email, password); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hashing password failed: %w", err)
	}

	userId, err := uuid.NewV4()
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Id:           userId.String(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Created:      s.Now().Unix(),
	}

	created, err := s.Store.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrItemExists) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user failed: %w", err)
	}

	return created, nil
}

func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.Store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("lookup user failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, userId string) (models.User, error) {
	user, err := s.Store.GetUserById(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("lookup user failed: %w", err)
	}

	return user, nil
}

func (s *Service) IssueAccessToken(userId string) (string, error) {
	return s.signToken(userId, s.AccessSecret, AccessTokenTTL)
}

func (s *Service) IssueRefreshToken(userId string) (string, error) {
	return s.signToken(userId, s.RefreshSecret, RefreshTokenTTL)
}

func (s *Service) signToken(userId string, secret []byte, ttl time.Duration) (string, error) {
	now := s.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userId,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	return token.SignedString(secret)
}

// VerifyAccessToken is a pure computation: signature check plus expiry
// comparison, no store access. The authorization gate calls it on every
// protected request.
func (s *Service) VerifyAccessToken(tokenString string) (string, time.Time, error) {
	return s.parseToken(tokenString, s.AccessSecret)
}

func (s *Service) VerifyRefreshToken(tokenString string) (string, time.Time, error) {
	return s.parseToken(tokenString, s.RefreshSecret)
}

func (s *Service) parseToken(tokenString string, secret []byte) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.Now() }),
	)
	if err != nil || !token.Valid {
		return "", time.Time{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", time.Time{}, ErrInvalidToken
	}

	return claims.Subject, claims.ExpiresAt.Time, nil
}

// Refresh mints a fresh access token from a valid refresh token. The
// subject must still exist in the store (the account could have gone away
// since the refresh token was issued). The refresh token itself is not
// rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userId, _, err := s.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	if _, err := s.Store.GetUserById(ctx, userId); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("lookup user failed: %w", err)
	}

	return s.IssueAccessToken(userId)
}
