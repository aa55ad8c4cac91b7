package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting, populated from the environment
type Config struct {
	Port      int
	Env       string
	PublicURL string

	DatabaseURL string

	JWT    JWTConfig
	Google GoogleConfig
	S3     S3Config
}

// JWTConfig holds signing and expiry settings
type JWTConfig struct {
	Secret             string
	AccessExpiration   time.Duration
	RefreshExpiration  time.Duration
	VerifyEmailExpires time.Duration
}

// GoogleConfig holds the OAuth client settings
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// S3Config holds the object storage settings. Endpoint is optional
// and only set for S3-compatible stores.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 3000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("JWT_ACCESS_EXPIRATION_MINUTES", 30)
	v.SetDefault("JWT_REFRESH_EXPIRATION_DAYS", 30)
	v.SetDefault("JWT_VERIFY_EMAIL_EXPIRATION_MINUTES", 60)
	v.SetDefault("S3_REGION", "us-east-1")

	cfg := &Config{
		Port:        v.GetInt("PORT"),
		Env:         v.GetString("APP_ENV"),
		PublicURL:   v.GetString("PUBLIC_URL"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		JWT: JWTConfig{
			Secret:             v.GetString("JWT_SECRET"),
			AccessExpiration:   time.Duration(v.GetInt("JWT_ACCESS_EXPIRATION_MINUTES")) * time.Minute,
			RefreshExpiration:  time.Duration(v.GetInt("JWT_REFRESH_EXPIRATION_DAYS")) * 24 * time.Hour,
			VerifyEmailExpires: time.Duration(v.GetInt("JWT_VERIFY_EMAIL_EXPIRATION_MINUTES")) * time.Minute,
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  v.GetString("GOOGLE_CALLBACK_URL"),
		},
		S3: S3Config{
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required settings are present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	return nil
}
