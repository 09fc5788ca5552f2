// Package config loads runtime settings from TAXMAN_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/warp/taxman/generic"
)

const prefix = "TAXMAN"

type Config struct {
	Server struct {
		Port            int           `envconfig:"TAXMAN_PORT" default:"8080"`
		ReadTimeout     time.Duration `envconfig:"TAXMAN_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"TAXMAN_WRITE_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"TAXMAN_SHUTDOWN_TIMEOUT" default:"10s"`
		CORSOrigins     []string      `envconfig:"TAXMAN_CORS_ORIGINS" default:"*"`
	}

	DB struct {
		Path string `envconfig:"TAXMAN_DB_PATH" default:"taxman.db"`
	}

	Log struct {
		Level  string `envconfig:"TAXMAN_LOG_LEVEL" default:"info"`
		Format string `envconfig:"TAXMAN_LOG_FORMAT" default:"console"`
	}

	Scheduler struct {
		Enabled bool   `envconfig:"TAXMAN_SCHEDULER_ENABLED" default:"true"`
		Spec    string `envconfig:"TAXMAN_SCHEDULER_SPEC" default:"@daily"`
	}

	// Report holds the fallbacks used when no company settings are stored.
	Report struct {
		Basis        string `envconfig:"TAXMAN_REPORT_BASIS" default:"accrual"`
		Frequency    string `envconfig:"TAXMAN_REPORT_FREQUENCY" default:"quarterly"`
		FYStartMonth int    `envconfig:"TAXMAN_REPORT_FY_START_MONTH" default:"7"`
		Parallelism  int    `envconfig:"TAXMAN_REPORT_PARALLELISM" default:"4"`
	}
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	v := generic.NewValidationError()
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		v.Add(prefix+"_PORT", "must be between 1 and 65535")
	}
	if strings.TrimSpace(c.DB.Path) == "" {
		v.Add(prefix+"_DB_PATH", "is required")
	}
	if !generic.Basis(c.Report.Basis).Valid() {
		v.Add(prefix+"_REPORT_BASIS", "must be cash or accrual")
	}
	if !generic.Frequency(c.Report.Frequency).Valid() {
		v.Add(prefix+"_REPORT_FREQUENCY", "must be monthly, quarterly or annual")
	}
	if c.Report.FYStartMonth < 1 || c.Report.FYStartMonth > 12 {
		v.Add(prefix+"_REPORT_FY_START_MONTH", "must be between 1 and 12")
	}
	if c.Report.Parallelism < 1 {
		v.Add(prefix+"_REPORT_PARALLELISM", "must be at least 1")
	}
	return v.OrNil()
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ReportDefaults returns the configured fallbacks for BAS requests.
func (c *Config) ReportDefaults() (generic.Basis, generic.Frequency, time.Month) {
	return generic.Basis(c.Report.Basis), generic.Frequency(c.Report.Frequency), time.Month(c.Report.FYStartMonth)
}
