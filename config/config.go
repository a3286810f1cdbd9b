package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

type AppConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Environment string `mapstructure:"environment"`
	CI          bool   `mapstructure:"ci"`
}

type UsersConfig struct {
	ValidUsername string `mapstructure:"valid_username"`
	ValidPassword string `mapstructure:"valid_password"`
	LockedOut     string `mapstructure:"locked_out"`
	Performance   string `mapstructure:"performance"`
	Problem       string `mapstructure:"problem"`
}

type CheckoutConfig struct {
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
	ZipCode   string `mapstructure:"zip_code"`
}

type TimeoutsConfig struct {
	Default    string `mapstructure:"default"`
	Navigation string `mapstructure:"navigation"`
	Element    string `mapstructure:"element"`
}

type RetryConfig struct {
	MaxAttempts    int    `mapstructure:"max_attempts"`
	Backoff        string `mapstructure:"backoff"`
	VisibleTimeout string `mapstructure:"visible_timeout"`
}

type BrowserConfig struct {
	Driver   string `mapstructure:"driver"`
	Headless bool   `mapstructure:"headless"`
	SlowMo   string `mapstructure:"slow_mo"`
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
	Install  bool   `mapstructure:"install"`
}

type PathsConfig struct {
	Logs        string `mapstructure:"logs"`
	Screenshots string `mapstructure:"screenshots"`
	Snapshots   string `mapstructure:"snapshots"`
}

type VisualConfig struct {
	MaxDiffPixels int     `mapstructure:"max_diff_pixels"`
	Threshold     float64 `mapstructure:"threshold"`
}

type ReporterConfig struct {
	Type string `mapstructure:"type"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Users    UsersConfig    `mapstructure:"users"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Visual   VisualConfig   `mapstructure:"visual"`
	Reporter ReporterConfig `mapstructure:"reporter"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// envKeys maps config keys to the environment variables the suite has always
// recognised. Keys not listed here still resolve through AutomaticEnv
// (e.g. APP_ENVIRONMENT).
var envKeys = map[string]string{
	"app.base_url":           "BASE_URL",
	"app.ci":                 "CI",
	"users.valid_username":   "TEST_USER_VALID_USERNAME",
	"users.valid_password":   "TEST_USER_VALID_PASSWORD",
	"users.locked_out":       "TEST_USER_LOCKED_OUT",
	"users.performance":      "TEST_USER_PERFORMANCE",
	"users.problem":          "TEST_USER_PROBLEM",
	"checkout.first_name":    "TEST_CHECKOUT_FIRST_NAME",
	"checkout.last_name":     "TEST_CHECKOUT_LAST_NAME",
	"checkout.zip_code":      "TEST_CHECKOUT_ZIP_CODE",
	"timeouts.default":       "DEFAULT_TIMEOUT",
	"timeouts.navigation":    "NAVIGATION_TIMEOUT",
	"timeouts.element":       "ELEMENT_TIMEOUT",
	"retry.max_attempts":     "RETRY_MAX_ATTEMPTS",
	"retry.backoff":          "RETRY_BACKOFF",
	"retry.visible_timeout":  "RETRY_VISIBLE_TIMEOUT",
	"browser.driver":         "BROWSER_DRIVER",
	"browser.headless":       "HEADLESS",
	"browser.slow_mo":        "SLOW_MO",
	"paths.logs":             "LOG_DIR",
	"paths.screenshots":      "SCREENSHOT_DIR",
	"paths.snapshots":        "SNAPSHOT_DIR",
	"visual.max_diff_pixels": "VISUAL_MAX_DIFF_PIXELS",
	"visual.threshold":       "VISUAL_THRESHOLD",
	"reporter.type":          "REPORTER_TYPE",
	"logging.level":          "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.base_url", "https://www.saucedemo.com")
	v.SetDefault("app.environment", EnvDev)
	v.SetDefault("app.ci", false)

	v.SetDefault("users.valid_username", "standard_user")
	v.SetDefault("users.valid_password", "secret_sauce")
	v.SetDefault("users.locked_out", "locked_out_user")
	v.SetDefault("users.performance", "performance_glitch_user")
	v.SetDefault("users.problem", "problem_user")

	v.SetDefault("checkout.first_name", "John")
	v.SetDefault("checkout.last_name", "Doe")
	v.SetDefault("checkout.zip_code", "12345")

	v.SetDefault("timeouts.default", "30s")
	v.SetDefault("timeouts.navigation", "30s")
	v.SetDefault("timeouts.element", "10s")

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.backoff", "500ms")
	v.SetDefault("retry.visible_timeout", "5s")

	v.SetDefault("browser.driver", DriverPlaywright)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", "0")
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 720)
	v.SetDefault("browser.install", false)

	v.SetDefault("paths.logs", "logs")
	v.SetDefault("paths.screenshots", "screenshots")
	v.SetDefault("paths.snapshots", "snapshots")

	v.SetDefault("visual.max_diff_pixels", 100)
	v.SetDefault("visual.threshold", 0.2)

	v.SetDefault("reporter.type", "html")
	v.SetDefault("logging.level", LogLevelInfo)
}

// Load reads config.yaml from ./config or the working directory, then the
// environment. A missing file is not an error.
func Load() (*Config, error) {
	return load("")
}

// LoadFile is Load with an explicit config file, which must exist.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	if err := gotenv.Load(".env"); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("failed to read .env file", slog.String("error", err.Error()))
			return nil, err
		}
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.App),
		validation.Field(&c.Users),
		validation.Field(&c.Timeouts),
		validation.Field(&c.Retry),
		validation.Field(&c.Browser),
		validation.Field(&c.Paths),
		validation.Field(&c.Visual),
		validation.Field(&c.Logging),
	)
}

func (a AppConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BaseURL, validation.Required, validation.By(validateBaseURL)),
		validation.Field(&a.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
	)
}

func (u UsersConfig) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.ValidUsername, validation.Required),
		validation.Field(&u.ValidPassword, validation.Required),
	)
}

func (t TimeoutsConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Default, validation.Required, validation.By(validateDuration)),
		validation.Field(&t.Navigation, validation.Required, validation.By(validateDuration)),
		validation.Field(&t.Element, validation.Required, validation.By(validateDuration)),
	)
}

func (r RetryConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&r.Backoff, validation.Required, validation.By(validateDuration)),
		validation.Field(&r.VisibleTimeout, validation.Required, validation.By(validateDuration)),
	)
}

func (b BrowserConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Driver,
			validation.Required,
			validation.In(DriverPlaywright, DriverChromedp),
		),
		validation.Field(&b.SlowMo, validation.By(validateOptionalDuration)),
		validation.Field(&b.Width, validation.Required, validation.Min(320)),
		validation.Field(&b.Height, validation.Required, validation.Min(240)),
	)
}

func (p PathsConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Logs, validation.Required),
		validation.Field(&p.Screenshots, validation.Required),
		validation.Field(&p.Snapshots, validation.Required),
	)
}

func (v VisualConfig) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.MaxDiffPixels, validation.Min(0)),
		validation.Field(&v.Threshold, validation.Min(0.0), validation.Max(1.0)),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
	)
}

// ParseDuration accepts Go duration strings ("5s", "500ms") and bare integers,
// which are read as milliseconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

func mustDuration(s string) time.Duration {
	d, err := ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func (t TimeoutsConfig) DefaultTimeout() time.Duration    { return mustDuration(t.Default) }
func (t TimeoutsConfig) NavigationTimeout() time.Duration { return mustDuration(t.Navigation) }
func (t TimeoutsConfig) ElementTimeout() time.Duration    { return mustDuration(t.Element) }

func (r RetryConfig) BackoffDuration() time.Duration        { return mustDuration(r.Backoff) }
func (r RetryConfig) VisibleTimeoutDuration() time.Duration { return mustDuration(r.VisibleTimeout) }

func (b BrowserConfig) SlowMoDuration() time.Duration { return mustDuration(b.SlowMo) }

// URL joins path onto the configured base URL.
func (a AppConfig) URL(path string) string {
	return strings.TrimRight(a.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 500ms, 5s) or milliseconds")
	}
	if d <= 0 {
		return validation.NewError("validation_nonpositive_duration", "must be greater than zero")
	}

	return nil
}

func validateOptionalDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if durationStr == "" {
		return nil
	}

	d, err := ParseDuration(durationStr)
	if err != nil || d < 0 {
		return validation.NewError("validation_invalid_duration", "must be a non-negative duration or milliseconds")
	}

	return nil
}

func validateBaseURL(value interface{}) error {
	baseURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
