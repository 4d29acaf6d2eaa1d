package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pennywise-app/pennywise/internal/domain/auth/common"
)

const userColumns = `id, email, username, hashed_password, display_name, role, is_active, email_verified_at, last_login_at, created_at, updated_at`

// PostgresAuthRepository implements AuthRepository using PostgreSQL
type PostgresAuthRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAuthRepository creates a new PostgreSQL auth repository
func NewPostgresAuthRepository(pool *pgxpool.Pool) *PostgresAuthRepository {
	return &PostgresAuthRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.HashedPassword,
		&u.DisplayName,
		&u.Role,
		&u.IsActive,
		&u.EmailVerifiedAt,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a new user row.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, email, username, hashedPassword, displayName string) (*User, error) {
	query := `
		INSERT INTO users (email, username, hashed_password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email), username, hashedPassword, displayName))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrUserAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by primary key.
func (r *PostgresAuthRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (r *PostgresAuthRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresAuthRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, userID, hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin stamps the user's last login time.
func (r *PostgresAuthRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// VerifyEmail marks the user's email as verified.
func (r *PostgresAuthRepository) VerifyEmail(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET email_verified_at = NOW(), updated_at = NOW() WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}
	if result.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// CreateUserSession persists a refresh-token session.
func (r *PostgresAuthRepository) CreateUserSession(ctx context.Context, userID uuid.UUID, tokenHash, userAgent, clientIP string, expiresAt time.Time) (*UserSession, error) {
	query := `
		INSERT INTO user_sessions (user_id, token_hash, user_agent, client_ip, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	s := &UserSession{
		UserID:    userID,
		TokenHash: tokenHash,
		UserAgent: userAgent,
		ClientIP:  clientIP,
		ExpiresAt: expiresAt,
	}
	err := r.pool.QueryRow(ctx, query, userID, tokenHash, userAgent, clientIP, expiresAt).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// GetUserSessionByToken finds an unexpired session by token hash.
func (r *PostgresAuthRepository) GetUserSessionByToken(ctx context.Context, tokenHash string) (*UserSession, error) {
	query := `
		SELECT id, user_id, token_hash, user_agent, client_ip, expires_at, created_at
		FROM user_sessions
		WHERE token_hash = $1 AND expires_at > NOW()`

	s := &UserSession{}
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&s.ID, &s.UserID, &s.TokenHash, &s.UserAgent, &s.ClientIP, &s.ExpiresAt, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// DeleteUserSession removes a session by token hash.
func (r *PostgresAuthRepository) DeleteUserSession(ctx context.Context, tokenHash string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM user_sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return common.ErrSessionNotFound
	}
	return nil
}

// DeleteAllUserSessions removes every session owned by a user.
func (r *PostgresAuthRepository) DeleteAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry. Used by the cleanup job.
func (r *PostgresAuthRepository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

// CreateUserToken persists a one-time token.
func (r *PostgresAuthRepository) CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash, tokenType string, expiresAt time.Time) error {
	query := `
		INSERT INTO user_tokens (user_id, token_hash, type, expires_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, userID, tokenHash, tokenType, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to create user token: %w", err)
	}
	return nil
}

// GetUserTokenByHash finds an unexpired one-time token.
func (r *PostgresAuthRepository) GetUserTokenByHash(ctx context.Context, tokenHash, tokenType string) (*UserToken, error) {
	query := `
		SELECT id, user_id, token_hash, type, expires_at, created_at
		FROM user_tokens
		WHERE token_hash = $1 AND type = $2 AND expires_at > NOW()`

	t := &UserToken{}
	err := r.pool.QueryRow(ctx, query, tokenHash, tokenType).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.Type, &t.ExpiresAt, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user token: %w", err)
	}
	return t, nil
}

// DeleteUserToken removes a one-time token by hash.
func (r *PostgresAuthRepository) DeleteUserToken(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteExpiredTokens removes one-time tokens past their expiry. Used by the cleanup job.
func (r *PostgresAuthRepository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM user_tokens WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.RowsAffected(), nil
}

// GetUserByOAuthIdentity resolves a user through a linked OAuth identity.
func (r *PostgresAuthRepository) GetUserByOAuthIdentity(ctx context.Context, provider, providerUserID string) (*User, error) {
	query := `
		SELECT ` + prefixColumns("u", userColumns) + `
		FROM users u
		JOIN oauth_identities oi ON oi.user_id = u.id
		WHERE oi.provider = $1 AND oi.provider_user_id = $2`
	return scanUser(r.pool.QueryRow(ctx, query, provider, providerUserID))
}

// CreateOrUpdateOAuthIdentity links an OAuth identity to a user, refreshing tokens on conflict.
func (r *PostgresAuthRepository) CreateOrUpdateOAuthIdentity(ctx context.Context, provider, providerUserID string, userID uuid.UUID, accessToken, refreshToken *string) error {
	query := `
		INSERT INTO oauth_identities (provider, provider_user_id, user_id, access_token, refresh_token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, provider_user_id)
		DO UPDATE SET access_token = EXCLUDED.access_token,
		              refresh_token = EXCLUDED.refresh_token,
		              updated_at = NOW()`
	_, err := r.pool.Exec(ctx, query, provider, providerUserID, userID, accessToken, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to upsert oauth identity: %w", err)
	}
	return nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
