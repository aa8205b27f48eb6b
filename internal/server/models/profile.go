package models

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type Locale string

const (
	LocaleEN Locale = "en"
	LocaleUA Locale = "ua"
	LocaleRU Locale = "ru"
)

func (l Locale) Valid() bool {
	return l == LocaleEN || l == LocaleUA || l == LocaleRU
}

type OS string

const (
	OSIOS     OS = "ios"
	OSAndroid OS = "android"
	OSUnknown OS = "unknown"
)

func (o OS) Valid() bool {
	return o == OSIOS || o == OSAndroid || o == OSUnknown
}

// Info holds personal details.
type Info struct {
	UserID             string
	Name               string
	Age                int
	Gender             Gender
	Subscription       string
	DeviceSerialNumber string
}

// Settings holds client preferences.
type Settings struct {
	UserID   string
	Locale   Locale
	FCMToken string
}

// SystemInfo describes the device the account was registered from.
type SystemInfo struct {
	UserID          string
	OS              OS
	PlatformVersion string
	DeviceModel     string
	Manufacturer    string
}

// Activity is maintained by the engagement tracker.
type Activity struct {
	UserID         string
	LastEngagement *time.Time
}

// Statistic is maintained by the analytics pipeline.
type Statistic struct {
	UserID string
}
