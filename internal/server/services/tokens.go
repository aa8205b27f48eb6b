// Package services contains the account service business logic: the token
// issuer, the account create/update coordinator and the password reset flow.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/logging"
	"github.com/dmitrijs2005/researchdt/internal/server/auth"
	"github.com/dmitrijs2005/researchdt/internal/server/cache"
	"github.com/dmitrijs2005/researchdt/internal/server/config"
	"github.com/dmitrijs2005/researchdt/internal/server/metrics"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
)

const blacklistPrefix = "blacklist:"

// TokenService issues, refreshes and revokes JWT pairs. Revoked refresh
// tokens are kept in blacklist until they would have expired anyway.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	rotate     bool
	blacklist  cache.Store
	metrics    *metrics.Metrics
	logger     logging.Logger
}

func NewTokenService(cfg *config.Config, blacklist cache.Store, m *metrics.Metrics, logger logging.Logger) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTokenValidityDuration,
		refreshTTL: cfg.RefreshTokenValidityDuration,
		rotate:     cfg.RotateRefreshTokens,
		blacklist:  blacklist,
		metrics:    m,
		logger:     logger,
	}
}

// Issue signs a fresh access/refresh pair for userID.
func (s *TokenService) Issue(ctx context.Context, userID string) (*models.TokenPair, error) {
	access, _, err := auth.GenerateToken(userID, models.TokenAccess, s.secret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, _, err := auth.GenerateToken(userID, models.TokenRefresh, s.secret, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	s.metrics.TokenIssued(string(models.TokenAccess))
	s.metrics.TokenIssued(string(models.TokenRefresh))
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid, non-blacklisted refresh token for a new access
// token. With rotation enabled the presented token is blacklisted and a new
// refresh token is returned too; otherwise RefreshToken is empty.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.parse(refreshToken, models.TokenRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.Exists(ctx, blacklistPrefix+claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("blacklist lookup: %w", err)
	}
	if revoked {
		s.metrics.TokenDenied("blacklisted")
		return nil, common.ErrTokenBlacklisted
	}

	access, _, err := auth.GenerateToken(claims.UserID, models.TokenAccess, s.secret, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	if !s.rotate {
		s.metrics.TokenIssued(string(models.TokenAccess))
		return &models.TokenPair{AccessToken: access}, nil
	}

	// Only the caller that wins the blacklist write may rotate.
	won, err := s.blacklist.SetNX(ctx, blacklistPrefix+claims.TokenID, claims.UserID, remaining(claims))
	if err != nil {
		return nil, fmt.Errorf("blacklist write: %w", err)
	}
	if !won {
		s.metrics.TokenDenied("blacklisted")
		return nil, common.ErrTokenBlacklisted
	}

	refresh, _, err := auth.GenerateToken(claims.UserID, models.TokenRefresh, s.secret, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	s.metrics.TokenIssued(string(models.TokenAccess))
	s.metrics.TokenIssued(string(models.TokenRefresh))
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Revoke blacklists a refresh token. Revoking an already revoked token is a
// no-op.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.parse(refreshToken, models.TokenRefresh)
	if err != nil {
		return err
	}

	added, err := s.blacklist.SetNX(ctx, blacklistPrefix+claims.TokenID, claims.UserID, remaining(claims))
	if err != nil {
		return fmt.Errorf("blacklist write: %w", err)
	}
	if added {
		s.logger.Info(ctx, "refresh token revoked", "user_id", claims.UserID, "jti", claims.TokenID)
	}
	return nil
}

// Authenticate verifies an access token. Access tokens are short-lived and
// never consult the blacklist.
func (s *TokenService) Authenticate(ctx context.Context, accessToken string) (*models.TokenClaims, error) {
	return s.parse(accessToken, models.TokenAccess)
}

func (s *TokenService) parse(token string, want models.TokenKind) (*models.TokenClaims, error) {
	claims, err := auth.ParseToken(token, s.secret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			s.metrics.TokenDenied("expired")
		} else {
			s.metrics.TokenDenied("invalid")
		}
		return nil, err
	}
	if claims.Kind != want {
		s.metrics.TokenDenied("wrong_kind")
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// remaining is how long a blacklist entry must live to outlast the token.
func remaining(c *models.TokenClaims) time.Duration {
	d := time.Until(c.ExpiresAt)
	if d < time.Second {
		return time.Second
	}
	return d
}
