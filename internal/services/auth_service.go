// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/prodcrm-backend/internal/config"
	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/models"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

type AuthService struct {
	store repositories.Store
	audit *AuditService
	cfg   config.JWTConfig
	now   func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ClientInfo describes where a request came from, for security events.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func NewAuthService(store repositories.Store, audit *AuditService, cfg config.JWTConfig) *AuthService {
	return &AuthService{
		store: store,
		audit: audit,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest, client ClientInfo) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(i18n.KeyValidationInvalid, err)
	}

	email := req.Email
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, s.audit.failure(ctx, nil, err, models.JSONB{"operation": "login"})
	}

	if user == nil || user.CheckPassword(req.Password) != nil {
		var userID *uuid.UUID
		if user != nil {
			userID = &user.ID
		}
		s.audit.LogSecurityEvent(ctx, SecurityEntry{
			Type:      SecurityLoginFailed,
			Severity:  SeverityWarning,
			UserID:    userID,
			IP:        client.IP,
			UserAgent: client.UserAgent,
			Details:   models.JSONB{"email": email},
		})
		return nil, &Error{Kind: KindUnauthenticated, Key: i18n.KeyAuthInvalidCredentials}
	}

	if user.Status != models.UserStatusActive {
		s.audit.LogSecurityEvent(ctx, SecurityEntry{
			Type:      SecurityLoginBlocked,
			Severity:  SeverityWarning,
			UserID:    &user.ID,
			IP:        client.IP,
			UserAgent: client.UserAgent,
		})
		return nil, &Error{Kind: KindForbidden, Key: i18n.KeyAuthUserBlocked}
	}

	now := s.now()
	if err := s.store.Users().TouchLastLogin(ctx, user.ID, now); err != nil {
		s.audit.logger.WithError(err).Warn("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}

	return s.issueTokens(user, true)
}

// Refresh exchanges a refresh token for a new access token. The user must
// still exist and be active.
func (s *AuthService) Refresh(ctx context.Context, req *RefreshRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(i18n.KeyValidationInvalid, err)
	}

	subject, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Key: i18n.KeyAuthInvalidToken, Err: err}
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, &Error{Kind: KindUnauthenticated, Key: i18n.KeyAuthInvalidToken, Err: err}
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &Error{Kind: KindUnauthenticated, Key: i18n.KeyAuthInvalidToken, Err: err}
	}
	if err != nil {
		return nil, s.audit.failure(ctx, nil, err, models.JSONB{"operation": "refresh"})
	}
	if user.Status != models.UserStatusActive {
		return nil, &Error{Kind: KindForbidden, Key: i18n.KeyAuthUserBlocked}
	}

	return s.issueTokens(user, false)
}

func (s *AuthService) Me(ctx context.Context, actor *models.Actor) (*models.User, error) {
	if err := RequireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.store.Users().FindByID(ctx, actor.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newNotFoundError(i18n.KeyUserNotFound)
	}
	if err != nil {
		return nil, newPersistenceError(err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(user *models.User, withRefresh bool) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Username, string(user.Role), s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, newPersistenceError(fmt.Errorf("failed to generate access token: %w", err))
	}

	resp := &AuthResponse{
		User:        user,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.AccessTokenTTL * 3600,
	}
	if withRefresh {
		refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.RefreshTokenTTL)
		if err != nil {
			return nil, newPersistenceError(fmt.Errorf("failed to generate refresh token: %w", err))
		}
		resp.RefreshToken = refreshToken
	}
	return resp, nil
}
