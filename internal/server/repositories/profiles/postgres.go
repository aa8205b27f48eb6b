package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/dbx"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// execOne is exec for updates that must hit exactly one existing row.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func scanErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) CreateInfo(ctx context.Context, info *models.Info) error {
	query := `
		INSERT INTO user_info (user_id, name, age, gender, subscription, device_serial_number)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	return r.exec(ctx, query, info.UserID, info.Name, info.Age, string(info.Gender), info.Subscription, info.DeviceSerialNumber)
}

func (r *PostgresRepository) CreateSettings(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO user_settings (user_id, locale, fcm_token)
		VALUES ($1, $2, $3)
	`
	return r.exec(ctx, query, s.UserID, string(s.Locale), s.FCMToken)
}

func (r *PostgresRepository) CreateSystemInfo(ctx context.Context, si *models.SystemInfo) error {
	query := `
		INSERT INTO user_system_info (user_id, os, platform_version, device_model, manufacturer)
		VALUES ($1, $2, $3, $4, $5)
	`
	return r.exec(ctx, query, si.UserID, string(si.OS), si.PlatformVersion, si.DeviceModel, si.Manufacturer)
}

func (r *PostgresRepository) CreateActivity(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO user_activity (user_id, last_engagement)
		VALUES ($1, $2)
	`
	return r.exec(ctx, query, a.UserID, a.LastEngagement)
}

func (r *PostgresRepository) CreateStatistic(ctx context.Context, s *models.Statistic) error {
	query := `
		INSERT INTO user_statistic (user_id)
		VALUES ($1)
	`
	return r.exec(ctx, query, s.UserID)
}

func (r *PostgresRepository) GetInfo(ctx context.Context, userID string) (*models.Info, error) {
	query := `
		SELECT user_id, name, age, gender, subscription, device_serial_number
		FROM user_info
		WHERE user_id = $1
	`
	info := &models.Info{}
	var gender string
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&info.UserID, &info.Name, &info.Age, &gender, &info.Subscription, &info.DeviceSerialNumber,
	); err != nil {
		return nil, scanErr(err)
	}
	info.Gender = models.Gender(gender)
	return info, nil
}

func (r *PostgresRepository) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	query := `
		SELECT user_id, locale, fcm_token
		FROM user_settings
		WHERE user_id = $1
	`
	s := &models.Settings{}
	var locale string
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.UserID, &locale, &s.FCMToken); err != nil {
		return nil, scanErr(err)
	}
	s.Locale = models.Locale(locale)
	return s, nil
}

func (r *PostgresRepository) GetSystemInfo(ctx context.Context, userID string) (*models.SystemInfo, error) {
	query := `
		SELECT user_id, os, platform_version, device_model, manufacturer
		FROM user_system_info
		WHERE user_id = $1
	`
	si := &models.SystemInfo{}
	var os string
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&si.UserID, &os, &si.PlatformVersion, &si.DeviceModel, &si.Manufacturer,
	); err != nil {
		return nil, scanErr(err)
	}
	si.OS = models.OS(os)
	return si, nil
}

func (r *PostgresRepository) GetActivity(ctx context.Context, userID string) (*models.Activity, error) {
	query := `
		SELECT user_id, last_engagement
		FROM user_activity
		WHERE user_id = $1
	`
	a := &models.Activity{}
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&a.UserID, &last); err != nil {
		return nil, scanErr(err)
	}
	if last.Valid {
		a.LastEngagement = &last.Time
	}
	return a, nil
}

func (r *PostgresRepository) UpdateInfo(ctx context.Context, info *models.Info) error {
	query := `
		UPDATE user_info
		SET name = $2, age = $3, gender = $4, subscription = $5, device_serial_number = $6
		WHERE user_id = $1
	`
	return r.execOne(ctx, query, info.UserID, info.Name, info.Age, string(info.Gender), info.Subscription, info.DeviceSerialNumber)
}

func (r *PostgresRepository) UpdateSettings(ctx context.Context, s *models.Settings) error {
	query := `
		UPDATE user_settings
		SET locale = $2, fcm_token = $3
		WHERE user_id = $1
	`
	return r.execOne(ctx, query, s.UserID, string(s.Locale), s.FCMToken)
}

func (r *PostgresRepository) UpdateSystemInfo(ctx context.Context, si *models.SystemInfo) error {
	query := `
		UPDATE user_system_info
		SET os = $2, platform_version = $3, device_model = $4, manufacturer = $5
		WHERE user_id = $1
	`
	return r.execOne(ctx, query, si.UserID, string(si.OS), si.PlatformVersion, si.DeviceModel, si.Manufacturer)
}
