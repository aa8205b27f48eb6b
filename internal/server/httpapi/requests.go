package httpapi

import (
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/dmitrijs2005/researchdt/internal/server/services"
)

type infoRequest struct {
	Name               *string `json:"name" validate:"required,min=1,max=255"`
	Age                *int    `json:"age" validate:"required,gte=0,lte=2147483647"`
	Gender             *string `json:"gender" validate:"required,oneof=male female"`
	Subscription       string  `json:"subscription" validate:"max=1000"`
	DeviceSerialNumber string  `json:"device_serial_number" validate:"max=255"`
}

type settingsRequest struct {
	Locale   *string `json:"locale" validate:"required,oneof=en ua ru"`
	FCMToken string  `json:"fcm_token" validate:"max=255"`
}

type systemInfoRequest struct {
	OS              *string `json:"os" validate:"required,oneof=ios android unknown"`
	PlatformVersion string  `json:"platform_version" validate:"max=255"`
	DeviceModel     string  `json:"device_model" validate:"max=255"`
	Manufacturer    string  `json:"manufacturer" validate:"max=255"`
}

type createUserRequest struct {
	Email      string             `json:"email" validate:"required,email,max=255"`
	Password   string             `json:"password" validate:"required,max=128"`
	IsResearch *bool              `json:"is_research" validate:"required"`
	Info       *infoRequest       `json:"info" validate:"required"`
	Settings   *settingsRequest   `json:"settings" validate:"required"`
	SystemInfo *systemInfoRequest `json:"system_info" validate:"required"`
}

func (r *createUserRequest) input() services.CreateInput {
	return services.CreateInput{
		Email:      r.Email,
		Password:   r.Password,
		IsResearch: *r.IsResearch,
		Info: models.Info{
			Name:               *r.Info.Name,
			Age:                *r.Info.Age,
			Gender:             models.Gender(*r.Info.Gender),
			Subscription:       r.Info.Subscription,
			DeviceSerialNumber: r.Info.DeviceSerialNumber,
		},
		Settings: models.Settings{
			Locale:   models.Locale(*r.Settings.Locale),
			FCMToken: r.Settings.FCMToken,
		},
		SystemInfo: models.SystemInfo{
			OS:              models.OS(*r.SystemInfo.OS),
			PlatformVersion: r.SystemInfo.PlatformVersion,
			DeviceModel:     r.SystemInfo.DeviceModel,
			Manufacturer:    r.SystemInfo.Manufacturer,
		},
	}
}

type infoPatch struct {
	Name               *string `json:"name" validate:"omitnil,min=1,max=255"`
	Age                *int    `json:"age" validate:"omitnil,gte=0,lte=2147483647"`
	Gender             *string `json:"gender" validate:"omitnil,oneof=male female"`
	Subscription       *string `json:"subscription" validate:"omitempty,max=1000"`
	DeviceSerialNumber *string `json:"device_serial_number" validate:"omitempty,max=255"`
}

type settingsPatch struct {
	Locale   *string `json:"locale" validate:"omitnil,oneof=en ua ru"`
	FCMToken *string `json:"fcm_token" validate:"omitempty,max=255"`
}

type systemInfoPatch struct {
	OS              *string `json:"os" validate:"omitnil,oneof=ios android unknown"`
	PlatformVersion *string `json:"platform_version" validate:"omitempty,max=255"`
	DeviceModel     *string `json:"device_model" validate:"omitempty,max=255"`
	Manufacturer    *string `json:"manufacturer" validate:"omitempty,max=255"`
}

type updateUserRequest struct {
	Email       *string          `json:"email" validate:"omitnil,email,max=255"`
	IsResearch  *bool            `json:"is_research"`
	Password    *string          `json:"password" validate:"omitempty,max=128"`
	Password2   *string          `json:"password2"`
	OldPassword *string          `json:"old_password"`
	Info        *infoPatch       `json:"info"`
	Settings    *settingsPatch   `json:"settings"`
	SystemInfo  *systemInfoPatch `json:"system_info"`
}

func (r *updateUserRequest) input() services.UpdateInput {
	in := services.UpdateInput{
		Email:       r.Email,
		IsResearch:  r.IsResearch,
		Password:    r.Password,
		Password2:   r.Password2,
		OldPassword: r.OldPassword,
	}
	if r.Info != nil {
		in.Info = &services.InfoPatch{
			Name:               r.Info.Name,
			Age:                r.Info.Age,
			Subscription:       r.Info.Subscription,
			DeviceSerialNumber: r.Info.DeviceSerialNumber,
		}
		if r.Info.Gender != nil {
			g := models.Gender(*r.Info.Gender)
			in.Info.Gender = &g
		}
	}
	if r.Settings != nil {
		in.Settings = &services.SettingsPatch{FCMToken: r.Settings.FCMToken}
		if r.Settings.Locale != nil {
			l := models.Locale(*r.Settings.Locale)
			in.Settings.Locale = &l
		}
	}
	if r.SystemInfo != nil {
		in.SystemInfo = &services.SystemInfoPatch{
			PlatformVersion: r.SystemInfo.PlatformVersion,
			DeviceModel:     r.SystemInfo.DeviceModel,
			Manufacturer:    r.SystemInfo.Manufacturer,
		}
		if r.SystemInfo.OS != nil {
			os := models.OS(*r.SystemInfo.OS)
			in.SystemInfo.OS = &os
		}
	}
	return in
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetConfirmRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,min=6,max=6"`
	Password string `json:"password" validate:"required,min=6,max=68"`
}
