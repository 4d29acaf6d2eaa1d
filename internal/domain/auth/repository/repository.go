// Package repository defines persistence for users, sessions, and OAuth identities.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the account row backing an authenticated identity.
type User struct {
	ID              uuid.UUID
	Email           string
	Username        string
	HashedPassword  string
	DisplayName     string
	Role            string
	IsActive        bool
	EmailVerifiedAt *time.Time
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserSession is a server-side refresh-token session.
type UserSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	UserAgent string
	ClientIP  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UserToken is a one-time token (email verification, password reset).
type UserToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	Type      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthRepository is the persistence contract for the auth service.
type AuthRepository interface {
	CreateUser(ctx context.Context, email, username, hashedPassword, displayName string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	VerifyEmail(ctx context.Context, userID uuid.UUID) error

	CreateUserSession(ctx context.Context, userID uuid.UUID, tokenHash, userAgent, clientIP string, expiresAt time.Time) (*UserSession, error)
	GetUserSessionByToken(ctx context.Context, tokenHash string) (*UserSession, error)
	DeleteUserSession(ctx context.Context, tokenHash string) error
	DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash, tokenType string, expiresAt time.Time) error
	GetUserTokenByHash(ctx context.Context, tokenHash, tokenType string) (*UserToken, error)
	DeleteUserToken(ctx context.Context, tokenHash string) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)

	GetUserByOAuthIdentity(ctx context.Context, provider, providerUserID string) (*User, error)
	CreateOrUpdateOAuthIdentity(ctx context.Context, provider, providerUserID string, userID uuid.UUID, accessToken, refreshToken *string) error
}
