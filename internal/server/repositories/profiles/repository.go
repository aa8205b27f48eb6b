// Package profiles stores the one-to-one sub-records attached to a user.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/researchdt/internal/server/models"
)

// Repository reads and writes profile sub-records. Getters return
// common.ErrorNotFound when the user has no such record.
type Repository interface {
	CreateInfo(ctx context.Context, info *models.Info) error
	CreateSettings(ctx context.Context, settings *models.Settings) error
	CreateSystemInfo(ctx context.Context, si *models.SystemInfo) error
	CreateActivity(ctx context.Context, a *models.Activity) error
	CreateStatistic(ctx context.Context, s *models.Statistic) error

	GetInfo(ctx context.Context, userID string) (*models.Info, error)
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)
	GetSystemInfo(ctx context.Context, userID string) (*models.SystemInfo, error)
	GetActivity(ctx context.Context, userID string) (*models.Activity, error)

	UpdateInfo(ctx context.Context, info *models.Info) error
	UpdateSettings(ctx context.Context, settings *models.Settings) error
	UpdateSystemInfo(ctx context.Context, si *models.SystemInfo) error
}
