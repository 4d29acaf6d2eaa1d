package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/pennywise/internal/domain/auth/common"
	"github.com/pennywise-app/pennywise/internal/domain/auth/repository"
)

type mockAuthRepository struct {
	usersByID    map[uuid.UUID]*repository.User
	usersByEmail map[string]*repository.User
	oauthUsers   map[string]*repository.User
	sessions     map[string]*repository.UserSession
	tokens       map[string]*repository.UserToken

	expiredSessions int64
	expiredTokens   int64
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByID:    make(map[uuid.UUID]*repository.User),
		usersByEmail: make(map[string]*repository.User),
		oauthUsers:   make(map[string]*repository.User),
		sessions:     make(map[string]*repository.UserSession),
		tokens:       make(map[string]*repository.UserToken),
	}
}

func (m *mockAuthRepository) addUser(u *repository.User) {
	m.usersByID[u.ID] = u
	m.usersByEmail[u.Email] = u
}

func (m *mockAuthRepository) CreateUser(_ context.Context, email, username, hashedPassword, displayName string) (*repository.User, error) {
	if _, exists := m.usersByEmail[email]; exists {
		return nil, common.ErrUserAlreadyExists
	}
	u := &repository.User{
		ID:             uuid.New(),
		Email:          email,
		Username:       username,
		HashedPassword: hashedPassword,
		DisplayName:    displayName,
		Role:           "user",
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	m.addUser(u)
	return u, nil
}

func (m *mockAuthRepository) GetUserByID(_ context.Context, id uuid.UUID) (*repository.User, error) {
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, common.ErrUserNotFound
}

func (m *mockAuthRepository) GetUserByEmail(_ context.Context, email string) (*repository.User, error) {
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrUserNotFound
}

func (m *mockAuthRepository) UpdatePassword(_ context.Context, userID uuid.UUID, hashedPassword string) error {
	u, ok := m.usersByID[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (m *mockAuthRepository) UpdateLastLogin(_ context.Context, userID uuid.UUID) error {
	if u, ok := m.usersByID[userID]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthRepository) VerifyEmail(_ context.Context, userID uuid.UUID) error {
	u, ok := m.usersByID[userID]
	if !ok {
		return common.ErrUserNotFound
	}
	now := time.Now()
	u.EmailVerifiedAt = &now
	return nil
}

func (m *mockAuthRepository) CreateUserSession(_ context.Context, userID uuid.UUID, tokenHash, userAgent, clientIP string, expiresAt time.Time) (*repository.UserSession, error) {
	s := &repository.UserSession{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		UserAgent: userAgent,
		ClientIP:  clientIP,
		ExpiresAt: expiresAt,
	}
	m.sessions[tokenHash] = s
	return s, nil
}

func (m *mockAuthRepository) GetUserSessionByToken(_ context.Context, tokenHash string) (*repository.UserSession, error) {
	if s, ok := m.sessions[tokenHash]; ok {
		return s, nil
	}
	return nil, common.ErrSessionNotFound
}

func (m *mockAuthRepository) DeleteUserSession(_ context.Context, tokenHash string) error {
	if _, ok := m.sessions[tokenHash]; !ok {
		return common.ErrSessionNotFound
	}
	delete(m.sessions, tokenHash)
	return nil
}

func (m *mockAuthRepository) DeleteAllUserSessions(_ context.Context, userID uuid.UUID) error {
	for hash, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, hash)
		}
	}
	return nil
}

func (m *mockAuthRepository) DeleteExpiredSessions(_ context.Context) (int64, error) {
	return m.expiredSessions, nil
}

func (m *mockAuthRepository) CreateUserToken(_ context.Context, userID uuid.UUID, tokenHash, tokenType string, expiresAt time.Time) error {
	m.tokens[tokenHash] = &repository.UserToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		Type:      tokenType,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (m *mockAuthRepository) GetUserTokenByHash(_ context.Context, tokenHash, tokenType string) (*repository.UserToken, error) {
	if t, ok := m.tokens[tokenHash]; ok && t.Type == tokenType {
		return t, nil
	}
	return nil, common.ErrTokenNotFound
}

func (m *mockAuthRepository) DeleteUserToken(_ context.Context, tokenHash string) error {
	delete(m.tokens, tokenHash)
	return nil
}

func (m *mockAuthRepository) DeleteExpiredTokens(_ context.Context) (int64, error) {
	return m.expiredTokens, nil
}

func (m *mockAuthRepository) GetUserByOAuthIdentity(_ context.Context, provider, providerUserID string) (*repository.User, error) {
	if u, ok := m.oauthUsers[provider+":"+providerUserID]; ok {
		return u, nil
	}
	return nil, common.ErrUserNotFound
}

func (m *mockAuthRepository) CreateOrUpdateOAuthIdentity(_ context.Context, provider, providerUserID string, userID uuid.UUID, _, _ *string) error {
	m.oauthUsers[provider+":"+providerUserID] = m.usersByID[userID]
	return nil
}

func newTestAuthService(repo repository.AuthRepository) *AuthService {
	tm := NewTokenManager([]byte("test-secret"), []byte("test-secret"), time.Hour, 24*time.Hour)
	return NewAuthService(repo, tm, nil, slog.Default(), 24*time.Hour)
}

func TestRegisterUser(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	result, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.True(t, result.EmailVerificationRequired)
	// Password is stored hashed, never verbatim.
	assert.NotEqual(t, "password123", result.User.HashedPassword)
	// A refresh session and a verification token were created.
	assert.Len(t, repo.sessions, 1)
	assert.Len(t, repo.tokens, 1)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	_, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.RegisterUser(context.Background(), RegisterParams{
		Email: "alice@example.com", Username: "alice2", Password: "password123",
	})
	assert.ErrorIs(t, err, common.ErrUserAlreadyExists)
}

func TestRegisterUser_WeakPassword(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepository())

	_, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email: "bob@example.com", Username: "bob", Password: "short",
	})
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	_, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginParams{
		Email: "alice@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.NotNil(t, result.User.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	_, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginParams{
		Email: "alice@example.com", Password: "wrongpassword1",
	})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	hashed, err := HashPassword("password123")
	require.NoError(t, err)
	repo.addUser(&repository.User{
		ID: uuid.New(), Email: "gone@example.com", HashedPassword: hashed, IsActive: false,
	})

	_, err = svc.Login(context.Background(), LoginParams{
		Email: "gone@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefreshTokens_RotatesSession(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	reg, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	require.NoError(t, err)

	tokens, err := svc.RefreshTokens(context.Background(), RefreshTokenParams{
		RefreshToken: reg.Tokens.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, reg.Tokens.RefreshToken, tokens.RefreshToken)

	// The old session is gone; replaying the old refresh token fails.
	_, err = svc.RefreshTokens(context.Background(), RefreshTokenParams{
		RefreshToken: reg.Tokens.RefreshToken,
	})
	assert.Error(t, err)
}

func TestLogout(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	reg, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	require.NoError(t, err)
	require.Len(t, repo.sessions, 1)

	require.NoError(t, svc.Logout(context.Background(), reg.Tokens.RefreshToken))
	assert.Empty(t, repo.sessions)

	// Logging out twice is not an error.
	assert.NoError(t, svc.Logout(context.Background(), reg.Tokens.RefreshToken))
}

func TestGetUser_InvalidID(t *testing.T) {
	svc := newTestAuthService(newMockAuthRepository())

	_, err := svc.GetUser(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestLoginOrRegisterOAuth_NewUser(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	result, isNew, err := svc.LoginOrRegisterOAuth(context.Background(), "google", &goth.User{
		UserID:   "google-123",
		Email:    "carol@example.com",
		Name:     "Carol",
		NickName: "carol",
	}, SessionMetadata{})
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "carol@example.com", result.User.Email)

	// Same identity logs in without creating a second account.
	_, isNew, err = svc.LoginOrRegisterOAuth(context.Background(), "google", &goth.User{
		UserID: "google-123",
		Email:  "carol@example.com",
	}, SessionMetadata{})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Len(t, repo.usersByID, 1)
}

func TestLoginOrRegisterOAuth_LinksExistingEmail(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	_, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email: "alice@example.com", Username: "alice", Password: "password123",
	})
	require.NoError(t, err)

	_, isNew, err := svc.LoginOrRegisterOAuth(context.Background(), "github", &goth.User{
		UserID: "gh-9",
		Email:  "alice@example.com",
	}, SessionMetadata{})
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Len(t, repo.usersByID, 1)
}

func TestCleanupExpired(t *testing.T) {
	repo := newMockAuthRepository()
	repo.expiredSessions = 3
	repo.expiredTokens = 2
	svc := newTestAuthService(repo)

	assert.NoError(t, svc.CleanupExpired(context.Background()))
}
