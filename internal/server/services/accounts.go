package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/researchdt/internal/common"
	"github.com/dmitrijs2005/researchdt/internal/dbx"
	"github.com/dmitrijs2005/researchdt/internal/logging"
	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
	"github.com/dmitrijs2005/researchdt/internal/server/auth"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/dmitrijs2005/researchdt/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// CreateInput is a validated registration payload. The UserID fields of the
// profile records are ignored.
type CreateInput struct {
	Email      string
	Password   string
	IsResearch bool
	Info       models.Info
	Settings   models.Settings
	SystemInfo models.SystemInfo
}

type InfoPatch struct {
	Name               *string
	Age                *int
	Gender             *models.Gender
	Subscription       *string
	DeviceSerialNumber *string
}

type SettingsPatch struct {
	Locale   *models.Locale
	FCMToken *string
}

type SystemInfoPatch struct {
	OS              *models.OS
	PlatformVersion *string
	DeviceModel     *string
	Manufacturer    *string
}

// UpdateInput is a partial update; nil means "leave unchanged".
type UpdateInput struct {
	Email       *string
	IsResearch  *bool
	Password    *string
	Password2   *string
	OldPassword *string
	Info        *InfoPatch
	Settings    *SettingsPatch
	SystemInfo  *SystemInfoPatch
}

// AccountService creates, reads and updates accounts. Every write runs in a
// single transaction covering the user row, its roles and profile records.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AccountService {
	return &AccountService{db: db, repomanager: m, logger: logger}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new account with all five profile records.
func (s *AccountService) Create(ctx context.Context, in CreateInput) (*models.Account, error) {
	return s.create(ctx, in, false)
}

// CreateSuperuser registers a staff superuser with the same records an
// ordinary registration creates.
func (s *AccountService) CreateSuperuser(ctx context.Context, in CreateInput) (*models.Account, error) {
	return s.create(ctx, in, true)
}

func (s *AccountService) create(ctx context.Context, in CreateInput, superuser bool) (*models.Account, error) {
	email := NormalizeEmail(in.Email)
	fields := apierror.FieldErrors{}

	taken, err := s.repomanager.Users(s.db).EmailTaken(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		fields.Add("email", apierror.CodeEmailExist, "Email is exist")
	}
	checkPassword(fields, "password", in.Password, email)
	if err := fields.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
		Roles:        models.NewRoleSet(),
	}
	if in.IsResearch {
		user.Roles.Add(models.RoleResearch)
	}

	acc := &models.Account{
		Info:       in.Info,
		Settings:   in.Settings,
		SystemInfo: in.SystemInfo,
		Activity:   models.Activity{UserID: user.ID},
		Statistic:  models.Statistic{UserID: user.ID},
	}
	acc.Info.UserID = user.ID
	acc.Settings.UserID = user.ID
	acc.SystemInfo.UserID = user.ID

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.repomanager.Users(tx)
		profilesRepo := s.repomanager.Profiles(tx)

		if err := usersRepo.Create(ctx, user); err != nil {
			return err
		}
		if user.IsResearch() {
			if err := usersRepo.AddRole(ctx, user.ID, models.RoleResearch); err != nil {
				return err
			}
		}
		if err := profilesRepo.CreateInfo(ctx, &acc.Info); err != nil {
			return err
		}
		if err := profilesRepo.CreateSettings(ctx, &acc.Settings); err != nil {
			return err
		}
		if err := profilesRepo.CreateSystemInfo(ctx, &acc.SystemInfo); err != nil {
			return err
		}
		if err := profilesRepo.CreateActivity(ctx, &acc.Activity); err != nil {
			return err
		}
		return profilesRepo.CreateStatistic(ctx, &acc.Statistic)
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		// lost a race with a concurrent registration
		return nil, apierror.Field("email", apierror.CodeEmailExist, "Email is exist")
	}
	if err != nil {
		return nil, err
	}

	acc.User = *user
	s.logger.Info(ctx, "user registered", "user_id", user.ID, "research", user.IsResearch(), "superuser", superuser)
	return acc, nil
}

// Login checks credentials. Unknown emails, wrong passwords and inactive
// users are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.Account, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}
	return s.load(ctx, s.db, user)
}

// Get returns the account with id, or a user_not_found error.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, apierror.UserNotFound()
	}
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, user)
}

// Update applies a partial update to user. Field-level problems are reported
// together; password confirmation rules are checked only once every field is
// individually valid.
func (s *AccountService) Update(ctx context.Context, user *models.User, in UpdateInput) (*models.Account, error) {
	fields := apierror.FieldErrors{}

	email := user.Email
	emailChanged := false
	if in.Email != nil {
		email = NormalizeEmail(*in.Email)
		if email != user.Email {
			taken, err := s.repomanager.Users(s.db).EmailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				fields.Add("email", apierror.CodeEmailExist, "Email is exist")
			}
			emailChanged = true
		}
	}
	if in.OldPassword != nil && !auth.CheckPassword(user.PasswordHash, *in.OldPassword) {
		fields.Add("old_password", apierror.CodeOldPasswordIncorrect, "Old password is not correct")
	}
	if in.Password != nil {
		checkPassword(fields, "password", *in.Password, email)
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	if in.Password != nil {
		switch {
		case in.Password2 == nil:
			return nil, apierror.Field("password2", apierror.CodeRequired, "A password2 is required.")
		case in.OldPassword == nil:
			return nil, apierror.Field("old_password", apierror.CodeRequired, "Old password is required.")
		case *in.Password != *in.Password2:
			return nil, apierror.Field("password", apierror.CodeInvalid, "Password fields didn't match.")
		}
	}

	var hash string
	if in.Password != nil {
		var err error
		if hash, err = auth.HashPassword(*in.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := s.repomanager.Users(tx)
		profilesRepo := s.repomanager.Profiles(tx)

		if in.Info != nil {
			info, err := profilesRepo.GetInfo(ctx, user.ID)
			if err != nil {
				return err
			}
			in.Info.apply(info)
			if err := profilesRepo.UpdateInfo(ctx, info); err != nil {
				return err
			}
		}
		if in.Settings != nil {
			settings, err := profilesRepo.GetSettings(ctx, user.ID)
			if err != nil {
				return err
			}
			in.Settings.apply(settings)
			if err := profilesRepo.UpdateSettings(ctx, settings); err != nil {
				return err
			}
		}
		if in.SystemInfo != nil {
			si, err := profilesRepo.GetSystemInfo(ctx, user.ID)
			if err != nil {
				return err
			}
			in.SystemInfo.apply(si)
			if err := profilesRepo.UpdateSystemInfo(ctx, si); err != nil {
				return err
			}
		}

		if emailChanged {
			if err := usersRepo.UpdateEmail(ctx, user.ID, email); err != nil {
				return err
			}
		}
		if in.IsResearch != nil {
			if err := reconcileResearch(ctx, usersRepo, user, *in.IsResearch); err != nil {
				return err
			}
		}
		if in.Password != nil {
			if err := usersRepo.SetPassword(ctx, user.ID, hash); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		return nil, apierror.Field("email", apierror.CodeEmailExist, "Email is exist")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user updated", "user_id", user.ID)
	return s.Get(ctx, user.ID)
}

type roleWriter interface {
	AddRole(ctx context.Context, id string, role models.Role) error
	RemoveRole(ctx context.Context, id string, role models.Role) error
}

func reconcileResearch(ctx context.Context, repo roleWriter, user *models.User, research bool) error {
	if research {
		return repo.AddRole(ctx, user.ID, models.RoleResearch)
	}
	return repo.RemoveRole(ctx, user.ID, models.RoleResearch)
}

// load attaches the profile records to user.
func (s *AccountService) load(ctx context.Context, db dbx.DBTX, user *models.User) (*models.Account, error) {
	repo := s.repomanager.Profiles(db)
	acc := &models.Account{
		User:      *user,
		Activity:  models.Activity{UserID: user.ID},
		Statistic: models.Statistic{UserID: user.ID},
	}

	info, err := repo.GetInfo(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load info: %w", err)
	}
	settings, err := repo.GetSettings(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	si, err := repo.GetSystemInfo(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load system info: %w", err)
	}
	activity, err := repo.GetActivity(ctx, user.ID)
	switch {
	case err == nil:
		acc.Activity = *activity
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("load activity: %w", err)
	}

	acc.Info, acc.Settings, acc.SystemInfo = *info, *settings, *si
	return acc, nil
}

func (p *InfoPatch) apply(info *models.Info) {
	if p.Name != nil {
		info.Name = *p.Name
	}
	if p.Age != nil {
		info.Age = *p.Age
	}
	if p.Gender != nil {
		info.Gender = *p.Gender
	}
	if p.Subscription != nil {
		info.Subscription = *p.Subscription
	}
	if p.DeviceSerialNumber != nil {
		info.DeviceSerialNumber = *p.DeviceSerialNumber
	}
}

func (p *SettingsPatch) apply(s *models.Settings) {
	if p.Locale != nil {
		s.Locale = *p.Locale
	}
	if p.FCMToken != nil {
		s.FCMToken = *p.FCMToken
	}
}

func (p *SystemInfoPatch) apply(si *models.SystemInfo) {
	if p.OS != nil {
		si.OS = *p.OS
	}
	if p.PlatformVersion != nil {
		si.PlatformVersion = *p.PlatformVersion
	}
	if p.DeviceModel != nil {
		si.DeviceModel = *p.DeviceModel
	}
	if p.Manufacturer != nil {
		si.Manufacturer = *p.Manufacturer
	}
}
