// Package handler exposes the auth REST endpoints.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"github.com/pennywise-app/pennywise/internal/domain/auth/common"
	"github.com/pennywise-app/pennywise/internal/domain/auth/repository"
	"github.com/pennywise-app/pennywise/internal/domain/auth/service"
	"github.com/pennywise-app/pennywise/internal/httpjson"
	"github.com/pennywise-app/pennywise/internal/middleware"
)

// AuthHandler serves registration, login, token, and OAuth endpoints.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	// gothic resolves the provider from the query string by default; our
	// routes carry it as a path variable.
	gothic.GetProviderName = func(r *http.Request) (string, error) {
		if provider := mux.Vars(r)["provider"]; provider != "" {
			return provider, nil
		}
		return "", errors.New("provider not specified")
	}

	return &AuthHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"`
	EmailVerified bool   `json:"emailVerified"`
}

func newTokenResponse(tokens *service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:           tokens.AccessToken,
		RefreshToken:          tokens.RefreshToken,
		AccessTokenExpiresAt:  tokens.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokens.RefreshTokenExpiresAt,
	}
}

func sessionMetadata(r *http.Request) service.SessionMetadata {
	return service.SessionMetadata{
		UserAgent: r.UserAgent(),
		ClientIP:  r.RemoteAddr,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if req.Email == "" || req.Username == "" || req.Password == "" {
		httpjson.RespondError(w, http.StatusBadRequest, "email, username, and password are required")
		return
	}

	result, err := h.svc.RegisterUser(r.Context(), service.RegisterParams{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Metadata:    sessionMetadata(r),
	})
	if err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			httpjson.RespondError(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	httpjson.Respond(w, http.StatusCreated, map[string]interface{}{
		"user":   toUserResponse(result.User),
		"tokens": newTokenResponse(result.Tokens),
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	result, err := h.svc.Login(r.Context(), service.LoginParams{
		Email:    req.Email,
		Password: req.Password,
		Metadata: sessionMetadata(r),
	})
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) || errors.Is(err, common.ErrInvalidCredentials) {
			httpjson.RespondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if errors.Is(err, service.ErrAccountInactive) {
			httpjson.RespondError(w, http.StatusForbidden, err.Error())
			return
		}
		h.logger.Error("login failed", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]interface{}{
		"user":   toUserResponse(result.User),
		"tokens": newTokenResponse(result.Tokens),
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpjson.Decode(r, &req); err != nil || req.RefreshToken == "" {
		httpjson.RespondError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	tokens, err := h.svc.RefreshTokens(r.Context(), service.RefreshTokenParams{
		RefreshToken: req.RefreshToken,
		Metadata:     sessionMetadata(r),
	})
	if err != nil {
		httpjson.RespondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	httpjson.Respond(w, http.StatusOK, newTokenResponse(tokens))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpjson.Decode(r, &req); err != nil || req.RefreshToken == "" {
		httpjson.RespondError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("logout failed", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// RequestPasswordReset handles POST /auth/password-reset/request.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := httpjson.Decode(r, &req); err != nil || req.Email == "" {
		httpjson.RespondError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("password reset request failed", slog.Any("error", err))
	}
	// Always 200 so the endpoint can't be used to probe for accounts.
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "if the account exists, a reset email has been sent"})
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := httpjson.Decode(r, &req); err != nil || req.Token == "" {
		httpjson.RespondError(w, http.StatusBadRequest, "token and newPassword are required")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, common.ErrTokenNotFound) {
			httpjson.RespondError(w, http.StatusBadRequest, "invalid or expired reset token")
			return
		}
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// VerifyEmail handles GET /auth/verify-email.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpjson.RespondError(w, http.StatusBadRequest, "token is required")
		return
	}

	if _, err := h.svc.VerifyEmail(r.Context(), token); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid or expired verification token")
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]string{"message": "email verified"})
}

// Me handles GET /me for the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpjson.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			httpjson.RespondError(w, http.StatusNotFound, "account not found")
			return
		}
		httpjson.RespondError(w, http.StatusInternalServerError, "failed to load account")
		return
	}

	httpjson.Respond(w, http.StatusOK, toUserResponse(user))
}

// BeginOAuth handles GET /auth/oauth/{provider}, redirecting to the provider.
func (h *AuthHandler) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	// Already authenticated with this provider in the gothic session?
	if gothUser, err := gothic.CompleteUserAuth(w, r); err == nil {
		h.finishOAuth(w, r, gothUser.Provider, &gothUser)
		return
	}
	gothic.BeginAuthHandler(w, r)
}

// OAuthCallback handles GET /auth/oauth/{provider}/callback.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		h.logger.Warn("oauth callback failed", slog.Any("error", err))
		httpjson.RespondError(w, http.StatusUnauthorized, "oauth authentication failed")
		return
	}
	h.finishOAuth(w, r, mux.Vars(r)["provider"], &gothUser)
}

func (h *AuthHandler) finishOAuth(w http.ResponseWriter, r *http.Request, provider string, gothUser *goth.User) {
	result, isNewUser, err := h.svc.LoginOrRegisterOAuth(r.Context(), provider, gothUser, sessionMetadata(r))
	if err != nil {
		h.logger.Error("oauth login failed", slog.String("provider", provider), slog.Any("error", err))
		httpjson.RespondError(w, http.StatusInternalServerError, "oauth login failed")
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]interface{}{
		"user":      toUserResponse(result.User),
		"tokens":    newTokenResponse(result.Tokens),
		"isNewUser": isNewUser,
	})
}

func toUserResponse(user *repository.User) userResponse {
	return userResponse{
		ID:            user.ID.String(),
		Email:         user.Email,
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		EmailVerified: user.EmailVerifiedAt != nil,
	}
}
