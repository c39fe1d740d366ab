package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names read by Load.
const (
	EnvTargetURL     = "EXPLORATION_TEST_TARGET_URL"
	EnvUsername      = "EXPLORATION_BASIC_AUTH_USERNAME"
	EnvPassword      = "EXPLORATION_BASIC_AUTH_PASSWORD"
	EnvTimeout       = "EXPLORATION_TIMEOUT"
	EnvActionTimeout = "EXPLORATION_ACTION_TIMEOUT"
	EnvOutputDir     = "PAGESCOUT_OUTPUT_DIR"
	EnvLogLevel      = "PAGESCOUT_LOG_LEVEL"
)

// DefaultOutputDir holds reports, screenshots and generated tests when
// PAGESCOUT_OUTPUT_DIR is unset.
const DefaultOutputDir = "./outputs"

var (
	ErrMissingUsername = errors.New("config: " + EnvUsername + " is not set, check your .env file")
	ErrMissingPassword = errors.New("config: " + EnvPassword + " is not set, check your .env file")
	ErrMissingURL      = errors.New("config: " + EnvTargetURL + " is not set, check your .env file")
	ErrInvalidURL      = errors.New("config: " + EnvTargetURL + " is not a valid URL")
	ErrInvalidTimeout  = errors.New("config: timeout must be a positive number of milliseconds")
)

// Config is the run configuration shared by every command. It is read once
// and handed to each component.
type Config struct {
	TargetURL     string
	Username      string
	Password      string
	Timeout       time.Duration
	ActionTimeout time.Duration
	OutputDir     string
	LogLevel      string
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		TargetURL: strings.TrimSpace(os.Getenv(EnvTargetURL)),
		Username:  os.Getenv(EnvUsername),
		Password:  os.Getenv(EnvPassword),
		OutputDir: OutputDir(),
		LogLevel:  getEnv(EnvLogLevel, "INFO"),
	}

	var err error
	if cfg.Timeout, err = getEnvAsMillis(EnvTimeout, 30000); err != nil {
		return cfg, err
	}
	if cfg.ActionTimeout, err = getEnvAsMillis(EnvActionTimeout, 30000); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate checks that every required value is present and well formed.
func (c Config) Validate() error {
	if c.Username == "" {
		return ErrMissingUsername
	}
	if c.Password == "" {
		return ErrMissingPassword
	}
	if c.TargetURL == "" {
		return ErrMissingURL
	}

	u, err := url.Parse(c.TargetURL)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidURL, c.TargetURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, c.TargetURL)
	}

	if c.Timeout <= 0 || c.ActionTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Summary renders the configuration with credentials masked.
func (c Config) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "  - Target URL: %s\n", c.TargetURL)
	fmt.Fprintf(&b, "  - Username: %s\n", mask(c.Username))
	fmt.Fprintf(&b, "  - Password: %s\n", mask(c.Password))
	fmt.Fprintf(&b, "  - Timeout: %dms\n", c.Timeout.Milliseconds())
	fmt.Fprintf(&b, "  - Action timeout: %dms\n", c.ActionTimeout.Milliseconds())
	fmt.Fprintf(&b, "  - Output dir: %s\n", c.OutputDir)
	return b.String()
}

func mask(s string) string {
	return strings.Repeat("*", len([]rune(s)))
}

// OutputDir reads the output directory alone, for commands that only read
// reports and need no credentials.
func OutputDir() string {
	return getEnv(EnvOutputDir, DefaultOutputDir)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsMillis(key string, fallback int) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return time.Duration(fallback) * time.Millisecond, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidTimeout, key, s)
	}
	return time.Duration(v) * time.Millisecond, nil
}
