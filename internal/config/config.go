// Package config loads site configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "HH"

// Config holds all runtime settings for the site.
type Config struct {
	DBPath  string
	Port    int
	DevMode bool
	BaseURL string

	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Enable only behind a reverse proxy that sets those headers.
	TrustProxy bool

	Recaptcha Recaptcha
	Map       Map
	SMTP      SMTP

	// LeadNotifyTo receives a copy of every captured lead when SMTP is configured.
	LeadNotifyTo []string
}

// Recaptcha holds reCAPTCHA keys and the verification endpoint.
type Recaptcha struct {
	SiteKey   string
	SecretKey string
	VerifyURL string
	Timeout   time.Duration
}

// Map holds third-party map keys and the map-data feature flags.
type Map struct {
	GoogleMapsAPIKey  string
	MapboxAccessToken string
	IncludeGallery    bool
	IncludeMapbox     bool
}

// SMTP holds outbound mail settings.
type SMTP struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// Load reads envFile if it exists, then resolves every setting from
// HH_-prefixed environment variables, falling back to defaults.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	timeout := v.GetDuration("recaptcha_timeout")
	if timeout <= 0 {
		return Config{}, fmt.Errorf("%s_RECAPTCHA_TIMEOUT must be a positive duration", envPrefix)
	}

	return Config{
		DBPath:  v.GetString("db_path"),
		Port:    v.GetInt("port"),
		DevMode: v.GetBool("dev_mode"),
		BaseURL: v.GetString("base_url"),

		TrustProxy: v.GetBool("trust_proxy"),
		Recaptcha: Recaptcha{
			SiteKey:   v.GetString("recaptcha_site_key"),
			SecretKey: v.GetString("recaptcha_secret_key"),
			VerifyURL: v.GetString("recaptcha_verify_url"),
			Timeout:   timeout,
		},
		Map: Map{
			GoogleMapsAPIKey:  v.GetString("google_maps_api_key"),
			MapboxAccessToken: v.GetString("mapbox_access_token"),
			IncludeGallery:    v.GetBool("map_include_gallery"),
			IncludeMapbox:     v.GetBool("map_include_mapbox"),
		},
		SMTP: SMTP{
			Host: v.GetString("smtp_host"),
			Port: v.GetString("smtp_port"),
			User: v.GetString("smtp_user"),
			Pass: v.GetString("smtp_pass"),
			From: v.GetString("smtp_from"),
		},
		LeadNotifyTo: splitList(v.GetString("lead_notify_to")),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("port", 8080)
	v.SetDefault("dev_mode", false)
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("trust_proxy", false)
	v.SetDefault("recaptcha_site_key", "")
	v.SetDefault("recaptcha_secret_key", "")
	v.SetDefault("recaptcha_verify_url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("recaptcha_timeout", "5s")
	v.SetDefault("google_maps_api_key", "")
	v.SetDefault("mapbox_access_token", "")
	v.SetDefault("map_include_gallery", true)
	v.SetDefault("map_include_mapbox", true)
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", "587")
	v.SetDefault("smtp_user", "")
	v.SetDefault("smtp_pass", "")
	v.SetDefault("smtp_from", "")
	v.SetDefault("lead_notify_to", "")
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
