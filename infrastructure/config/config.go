package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnginePlaywright = "playwright"
	EngineSelenium   = "selenium"
)

// Config holds everything a scenario run needs
type Config struct {
	StartURL        string
	Engine          string
	Headless        bool
	SlowMo          time.Duration
	ResultsDir      string
	DefaultTimeout  time.Duration
	DefaultDelay    time.Duration
	LogLevel        string
	TravelStartDate string
	TravelEndDate   string
	DriverPath      string
	ChromeBinary    string
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		StartURL:        "https://www.rentalcover.com/en",
		Engine:          EnginePlaywright,
		Headless:        true,
		ResultsDir:      "test-results",
		DefaultTimeout:  60 * time.Second,
		DefaultDelay:    2 * time.Second,
		LogLevel:        "debug",
		TravelStartDate: "September 25, 2025",
		TravelEndDate:   "September 28, 2025",
	}
}

// Load reads an optional .env file (or the given files) and overlays the
// environment on top of the defaults
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		// .env file is optional
		if len(files) > 0 {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
		logrus.Debug(".env file not found, using environment variables")
	}
	return FromEnv()
}

// FromEnv overlays environment variables on the defaults
func FromEnv() (Config, error) {
	cfg := Default()

	setString(&cfg.StartURL, "QUOTE_START_URL")
	setString(&cfg.Engine, "BROWSER_ENGINE")
	setString(&cfg.ResultsDir, "RESULTS_DIR")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.TravelStartDate, "TRAVEL_START_DATE")
	setString(&cfg.TravelEndDate, "TRAVEL_END_DATE")
	setString(&cfg.DriverPath, "BROWSER_DRIVER_PATH")
	setString(&cfg.ChromeBinary, "CHROME_BINARY_PATH")

	if err := setBool(&cfg.Headless, "HEADLESS"); err != nil {
		return Config{}, err
	}
	if err := setMillis(&cfg.SlowMo, "SLOW_MO_MS"); err != nil {
		return Config{}, err
	}
	if err := setMillis(&cfg.DefaultTimeout, "DEFAULT_TIMEOUT_MS"); err != nil {
		return Config{}, err
	}
	if err := setMillis(&cfg.DefaultDelay, "DEFAULT_DELAY_MS"); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate checks the combination of settings
func (c Config) Validate() error {
	switch c.Engine {
	case EnginePlaywright, EngineSelenium:
	default:
		return fmt.Errorf("unsupported browser engine %q (want %s or %s)", c.Engine, EnginePlaywright, EngineSelenium)
	}
	if c.StartURL == "" {
		return fmt.Errorf("start URL is required")
	}
	if c.ResultsDir == "" {
		return fmt.Errorf("results directory is required")
	}
	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("default timeout must be positive, got %s", c.DefaultTimeout)
	}
	if c.DefaultDelay <= 0 {
		return fmt.Errorf("default delay must be positive, got %s", c.DefaultDelay)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setMillis(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = time.Duration(ms) * time.Millisecond
	return nil
}
