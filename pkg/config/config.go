package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"
)

type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

type Config struct {
	// Environment is selected explicitly instead of being inferred from the
	// runtime host. The dev login fallback refuses to activate outside
	// development even when its flag is set.
	Environment Environment `env:"APP_ENV" envDefault:"development"`

	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StatePath string `env:"STATE_PATH" envDefault:".etd-session.json"`

	API      APIConfig
	Session  SessionConfig
	NADRA    VerifierConfig `envPrefix:"NADRA_"`
	Passport VerifierConfig `envPrefix:"PASSPORT_"`
	Upload   UploadConfig
}

type APIConfig struct {
	// BaseURL is fixed once at startup; it is never re-derived per request.
	BaseURL       string        `env:"API_BASE_URL"`
	Timeout       time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	RetryAttempts int           `env:"API_RETRY_ATTEMPTS" envDefault:"3"`
	RetryDelay    time.Duration `env:"API_RETRY_DELAY" envDefault:"1s"`
}

type SessionConfig struct {
	// AllowDevFallback gates the simulated login used when the backend is
	// unreachable during UI development. It never produces a verified
	// session and is rejected outside development against a loopback base.
	AllowDevFallback bool          `env:"AUTH_ALLOW_DEV_FALLBACK" envDefault:"false"`
	RefreshInterval  time.Duration `env:"SESSION_REFRESH_INTERVAL" envDefault:"5m"`
	RefreshLeeway    time.Duration `env:"SESSION_REFRESH_LEEWAY" envDefault:"10m"`
}

type VerifierConfig struct {
	URL           string        `env:"API_URL"`
	APIKey        string        `env:"API_KEY"`
	RequesterID   string        `env:"REQUESTER_ID" envDefault:"ministry_interior"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"30s"`
	RetryAttempts int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	UseSimulation bool          `env:"USE_SIMULATION" envDefault:"true"`
	SimDelay      time.Duration `env:"SIM_DELAY" envDefault:"1500ms"`
}

type UploadConfig struct {
	MaxFileSize    int64 `env:"UPLOAD_MAX_FILE_SIZE" envDefault:"10485760"`
	MaxConcurrency int   `env:"UPLOAD_MAX_CONCURRENCY" envDefault:"3"`
}

func New(envPath string) (Config, error) {
	var c Config

	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	err = env.Parse(&c)
	if err != nil {
		return Config{}, err
	}

	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return Config{}, fmt.Errorf("unknown APP_ENV %q", c.Environment)
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL(c.Environment)
	}

	if c.NADRA.URL == "" {
		c.NADRA.URL = defaultVerifierURL("nadra", c.Environment)
	}

	if c.Passport.URL == "" {
		c.Passport.URL = defaultVerifierURL("passport", c.Environment)
	}

	// Real credentials switch simulation off in production.
	if c.Environment == EnvProduction {
		c.NADRA.UseSimulation = c.NADRA.UseSimulation && c.NADRA.APIKey == ""
		c.Passport.UseSimulation = c.Passport.UseSimulation && c.Passport.APIKey == ""
	}

	return c, nil
}

func defaultBaseURL(environment Environment) string {
	switch environment {
	case EnvStaging:
		return "https://staging-etd.gov.pk/api/v1"
	case EnvProduction:
		return "https://etd.gov.pk/api/v1"
	default:
		return "http://localhost:3837/v1/api"
	}
}

func defaultVerifierURL(service string, environment Environment) string {
	if environment == EnvStaging {
		return fmt.Sprintf("https://staging-api.%s.gov.pk/v1/verify", service)
	}

	return fmt.Sprintf("https://api.%s.gov.pk/v1/verify", service)
}

// IsLoopback reports whether the configured API base points at the local host.
func (a APIConfig) IsLoopback() bool {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return false
	}

	host := u.Hostname()

	return host == "localhost" || strings.HasPrefix(host, "127.") || host == "::1"
}
