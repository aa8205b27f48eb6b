package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/researchdt/internal/flagx"
)

// Duration unmarshals from either a Go duration string ("3m") or an integer
// number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// JsonConfig mirrors Config for JSON files. Pointer fields distinguish
// "absent" from "zero" so a partial file only overrides what it names.
type JsonConfig struct {
	EndpointAddrHTTP             *string   `json:"endpoint_addr_http"`
	EndpointAddrGRPC             *string   `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string   `json:"database_dsn"`
	SecretKey                    *string   `json:"secret_key"`
	AccessTokenValidityDuration  *Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *Duration `json:"refresh_token_validity_duration"`
	RotateRefreshTokens          *bool     `json:"rotate_refresh_tokens"`
	RedisAddr                    *string   `json:"redis_addr"`
	RedisPassword                *string   `json:"redis_password"`
	ResetCodeTTL                 *Duration `json:"reset_code_ttl"`
	SMTPHost                     *string   `json:"smtp_host"`
	SMTPPort                     *int      `json:"smtp_port"`
	SMTPUser                     *string   `json:"smtp_user"`
	SMTPPassword                 *string   `json:"smtp_password"`
	FromEmail                    *string   `json:"from_email"`
	LogLevel                     *string   `json:"log_level"`
}

// parseJSON loads the file named by -c/-config, if any, and copies every
// field present in it onto config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	if c.RotateRefreshTokens != nil {
		config.RotateRefreshTokens = *c.RotateRefreshTokens
	}
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setDuration(&config.ResetCodeTTL, c.ResetCodeTTL)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != nil {
		config.SMTPPort = *c.SMTPPort
	}
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.FromEmail, c.FromEmail)
	setString(&config.LogLevel, c.LogLevel)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
