package httpapi

import "github.com/dmitrijs2005/researchdt/internal/server/models"

type infoResponse struct {
	Name               string `json:"name"`
	Age                int    `json:"age"`
	Gender             string `json:"gender"`
	Subscription       string `json:"subscription"`
	DeviceSerialNumber string `json:"device_serial_number"`
}

type settingsResponse struct {
	Locale   string `json:"locale"`
	FCMToken string `json:"fcm_token"`
}

type systemInfoResponse struct {
	OS              string `json:"os"`
	PlatformVersion string `json:"platform_version"`
	DeviceModel     string `json:"device_model"`
	Manufacturer    string `json:"manufacturer"`
}

type userResponse struct {
	ID         string             `json:"id"`
	Email      string             `json:"email"`
	IsResearch bool               `json:"is_research"`
	Info       infoResponse       `json:"info"`
	Settings   settingsResponse   `json:"settings"`
	SystemInfo systemInfoResponse `json:"system_info"`
}

type tokensResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type userWithTokensResponse struct {
	userResponse
	Tokens tokensResponse `json:"tokens"`
}

type userDetailResponse struct {
	userResponse
	Groups []string `json:"groups"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type successResponse struct {
	Success string `json:"success"`
}

func newUserResponse(acc *models.Account) userResponse {
	return userResponse{
		ID:         acc.User.ID,
		Email:      acc.User.Email,
		IsResearch: acc.User.IsResearch(),
		Info: infoResponse{
			Name:               acc.Info.Name,
			Age:                acc.Info.Age,
			Gender:             string(acc.Info.Gender),
			Subscription:       acc.Info.Subscription,
			DeviceSerialNumber: acc.Info.DeviceSerialNumber,
		},
		Settings: settingsResponse{
			Locale:   string(acc.Settings.Locale),
			FCMToken: acc.Settings.FCMToken,
		},
		SystemInfo: systemInfoResponse{
			OS:              string(acc.SystemInfo.OS),
			PlatformVersion: acc.SystemInfo.PlatformVersion,
			DeviceModel:     acc.SystemInfo.DeviceModel,
			Manufacturer:    acc.SystemInfo.Manufacturer,
		},
	}
}

func newUserWithTokens(acc *models.Account, pair *models.TokenPair) userWithTokensResponse {
	return userWithTokensResponse{
		userResponse: newUserResponse(acc),
		Tokens:       tokensResponse{Refresh: pair.RefreshToken, Access: pair.AccessToken},
	}
}

func newUserDetail(acc *models.Account) userDetailResponse {
	return userDetailResponse{
		userResponse: newUserResponse(acc),
		Groups:       acc.User.Roles.Names(),
	}
}
