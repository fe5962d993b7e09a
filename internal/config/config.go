package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	PatientsDatabaseURL string        `mapstructure:"PATIENTS_DATABASE_URL"`
	UsersDatabaseURL    string        `mapstructure:"USERS_DATABASE_URL"`
	ClinicalDatabaseURL string        `mapstructure:"CLINICAL_DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	DBConnectTimeout    time.Duration `mapstructure:"DB_CONNECT_TIMEOUT"`
	BodyLimit           string        `mapstructure:"BODY_LIMIT"`
	ShutdownTimeout     time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DB_CONNECT_TIMEOUT", "10s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("PATIENTS_DATABASE_URL")
	v.BindEnv("USERS_DATABASE_URL")
	v.BindEnv("CLINICAL_DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DB_CONNECT_TIMEOUT")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("SHUTDOWN_TIMEOUT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Each collection may live on its own server; DATABASE_URL fills any gap.
	if cfg.PatientsDatabaseURL == "" {
		cfg.PatientsDatabaseURL = cfg.DatabaseURL
	}
	if cfg.UsersDatabaseURL == "" {
		cfg.UsersDatabaseURL = cfg.DatabaseURL
	}
	if cfg.ClinicalDatabaseURL == "" {
		cfg.ClinicalDatabaseURL = cfg.DatabaseURL
	}

	if cfg.PatientsDatabaseURL == "" || cfg.UsersDatabaseURL == "" || cfg.ClinicalDatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required unless PATIENTS_DATABASE_URL, USERS_DATABASE_URL and CLINICAL_DATABASE_URL are all set")
	}

	if cfg.IsDev() {
		log.Println("WARNING: server is running in DEVELOPMENT mode (ENV=development); logs are human-readable")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the pool and timeout settings are usable.
func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
	}
	if c.DBConnectTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive, got %s", c.DBConnectTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
