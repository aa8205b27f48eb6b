package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/logging"
	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
	"github.com/dmitrijs2005/researchdt/internal/server/auth"
	"github.com/dmitrijs2005/researchdt/internal/server/cache"
	"github.com/dmitrijs2005/researchdt/internal/server/metrics"
	"github.com/dmitrijs2005/researchdt/internal/server/notify"
	"github.com/dmitrijs2005/researchdt/internal/server/repositories/repomanager"
)

const (
	resetCodeLength = 6
	resetPrefix     = "reset:"
)

// ResetService runs the two-phase one-time-code password reset.
type ResetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codes       cache.Store
	notifier    notify.Notifier
	ttl         time.Duration
	metrics     *metrics.Metrics
	logger      logging.Logger
}

func NewResetService(db *sql.DB, m repomanager.RepositoryManager, codes cache.Store, notifier notify.Notifier,
	ttl time.Duration, mt *metrics.Metrics, logger logging.Logger) *ResetService {
	return &ResetService{
		db:          db,
		repomanager: m,
		codes:       codes,
		notifier:    notifier,
		ttl:         ttl,
		metrics:     mt,
		logger:      logger,
	}
}

// RequestReset stores a fresh code for an active user's email, replacing any
// previous one, and sends it. If sending fails the code is withdrawn and the
// request fails.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	key := NormalizeEmail(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, key)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.metrics.Reset("request", metrics.ResultError)
		return err
	}
	if err != nil || !user.IsActive {
		s.metrics.Reset("request", metrics.ResultInvalid)
		return apierror.Field("email", apierror.CodeEmailIsNotExist, "User not found by email.")
	}

	code, err := common.RandomString(common.AlphanumericUpper, resetCodeLength)
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	if err := s.codes.Set(ctx, resetPrefix+key, code, s.ttl); err != nil {
		s.metrics.Reset("request", metrics.ResultError)
		return err
	}

	if err := s.notifier.Notify(ctx, user.Email, notify.ResetCodePayload(code, s.ttl)); err != nil {
		// leave a newer code from a concurrent request alone
		if _, delErr := s.codes.CompareAndDelete(ctx, resetPrefix+key, code); delErr != nil {
			s.logger.Warn(ctx, "withdraw reset code", "error", delErr)
		}
		s.metrics.Reset("request", metrics.ResultError)
		return fmt.Errorf("send reset code: %w", err)
	}

	s.metrics.Reset("request", metrics.ResultSuccess)
	s.logger.Info(ctx, "reset code sent", "user_id", user.ID)
	return nil
}

// ConfirmReset consumes the code for email and sets newPassword. Every
// lookup failure is reported as the same reset_data_invalid error.
func (s *ResetService) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	key := NormalizeEmail(email)
	invalid := apierror.Field(apierror.NonFieldErrors, apierror.CodeResetDataInvalid, "The reset data is invalid")

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "reset confirm user lookup", "error", err)
		}
		s.metrics.Reset("confirm", metrics.ResultInvalid)
		return invalid
	}

	ok, err := s.codes.CompareAndDelete(ctx, resetPrefix+key, code)
	if err != nil {
		s.logger.Warn(ctx, "reset confirm code lookup", "error", err)
		s.metrics.Reset("confirm", metrics.ResultInvalid)
		return invalid
	}
	if !ok {
		s.metrics.Reset("confirm", metrics.ResultInvalid)
		return invalid
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repomanager.Users(s.db).SetPassword(ctx, user.ID, hash); err != nil {
		s.metrics.Reset("confirm", metrics.ResultError)
		return err
	}

	s.metrics.Reset("confirm", metrics.ResultSuccess)
	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}
