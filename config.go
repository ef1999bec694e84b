package taskmaster

import (
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/GoCodeAlone/taskmaster/feeders"
)

// EnvPrefix is prepended to every `env` tag when reading the environment.
const EnvPrefix = "TASKMASTER"

// Defaults applied by Config.Validate.
const (
	DefaultAPIURL              = "http://localhost:8000"
	DefaultUserID              = int64(1)
	DefaultNotificationTimeout = 3 * time.Second
	DefaultLogFile             = "taskmaster.log"
	DefaultLogLevel            = "info"
	DefaultMaxBodyLogSize      = 10000
)

// Feeder populates a configuration struct from one source.
type Feeder interface {
	Feed(structure any) error
}

// Config is the client configuration.
//
// Example YAML configuration:
//
//	api_url: http://localhost:8000
//	user_id: 1
//	notification_timeout: 3s
//	refresh_schedule: "@every 30s"
//	verbose: true
//	verbose_options:
//	  log_headers: true
//	  log_body: true
//
// Example environment variables:
//
//	TASKMASTER_API_URL=http://tasks.internal:8000
//	TASKMASTER_USER_ID=7
type Config struct {
	// APIURL is the backend host. The client appends /api/v1.
	APIURL string `yaml:"api_url" toml:"api_url" json:"api_url" env:"API_URL"`

	// UserID is threaded through every request in place of a real session.
	UserID int64 `yaml:"user_id" toml:"user_id" json:"user_id" env:"USER_ID"`

	// NotificationTimeout is how long a toast stays visible.
	NotificationTimeout time.Duration `yaml:"notification_timeout" toml:"notification_timeout" json:"notification_timeout" env:"NOTIFICATION_TIMEOUT"`

	// RequestTimeout bounds each HTTP round trip. Zero means no timeout.
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout" json:"request_timeout" env:"REQUEST_TIMEOUT"`

	// RefreshSchedule is a cron spec ("@every 30s", "*/5 * * * *") for
	// automatic reloads in the TUI. Empty disables auto refresh.
	RefreshSchedule string `yaml:"refresh_schedule" toml:"refresh_schedule" json:"refresh_schedule" env:"REFRESH_SCHEDULE"`

	// Search and ListLimit are passed through to the list endpoint when set.
	Search    string `yaml:"search" toml:"search" json:"search" env:"SEARCH"`
	ListLimit int    `yaml:"list_limit" toml:"list_limit" json:"list_limit" env:"LIST_LIMIT"`

	LogFile  string `yaml:"log_file" toml:"log_file" json:"log_file" env:"LOG_FILE"`
	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level" env:"LOG_LEVEL"`

	// Verbose enables request/response logging in the api client.
	Verbose        bool            `yaml:"verbose" toml:"verbose" json:"verbose" env:"VERBOSE"`
	VerboseOptions *VerboseOptions `yaml:"verbose_options" toml:"verbose_options" json:"verbose_options"`
}

// VerboseOptions controls what verbose request logging includes.
type VerboseOptions struct {
	LogHeaders     bool `yaml:"log_headers" toml:"log_headers" json:"log_headers" env:"LOG_HEADERS"`
	LogBody        bool `yaml:"log_body" toml:"log_body" json:"log_body" env:"LOG_BODY"`
	MaxBodyLogSize int  `yaml:"max_body_log_size" toml:"max_body_log_size" json:"max_body_log_size" env:"MAX_BODY_LOG_SIZE"`
}

// DefaultConfig returns a validated configuration with every default set.
func DefaultConfig() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// Validate fills defaults and checks the values.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAPIURL, c.APIURL)
	}

	if c.UserID == 0 {
		c.UserID = DefaultUserID
	}
	if c.UserID < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidUserID, c.UserID)
	}

	if c.NotificationTimeout < 0 || c.RequestTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.NotificationTimeout == 0 {
		c.NotificationTimeout = DefaultNotificationTimeout
	}

	if c.ListLimit < 0 {
		c.ListLimit = 0
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	if c.Verbose && c.VerboseOptions == nil {
		c.VerboseOptions = &VerboseOptions{
			LogHeaders:     true,
			LogBody:        true,
			MaxBodyLogSize: DefaultMaxBodyLogSize,
		}
	}
	return nil
}

// LoadConfig applies feeders in order onto a zero Config and validates the
// result. Later feeders override earlier ones.
func LoadConfig(fs ...Feeder) (*Config, error) {
	cfg := &Config{}
	if err := FeedConfig(cfg, fs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// FeedConfig runs every feeder against cfg.
func FeedConfig(cfg any, fs ...Feeder) error {
	if cfg == nil {
		return ErrConfigNil
	}
	if reflect.ValueOf(cfg).Kind() != reflect.Pointer {
		return ErrConfigNotPointer
	}
	for _, f := range fs {
		if f == nil {
			continue
		}
		if err := f.Feed(cfg); err != nil {
			return fmt.Errorf("%w: %T: %w", ErrConfigFeederError, f, err)
		}
	}
	return nil
}

// FileFeeder picks the feeder for a config file by extension.
func FileFeeder(path string) (Feeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return feeders.NewYamlFeeder(path), nil
	case ".toml":
		return feeders.NewTomlFeeder(path), nil
	case ".env":
		return feeders.NewDotEnvFeeder(path, EnvPrefix), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// StandardFeeders returns the usual chain: config files in the given order,
// then an optional .env file, then the process environment.
func StandardFeeders(configPaths []string, dotEnvPath string) ([]Feeder, error) {
	fs := make([]Feeder, 0, len(configPaths)+2)
	for _, p := range configPaths {
		if p == "" {
			continue
		}
		f, err := FileFeeder(p)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	if dotEnvPath != "" {
		fs = append(fs, feeders.NewDotEnvFeeder(dotEnvPath, EnvPrefix))
	}
	fs = append(fs, feeders.NewEnvFeeder(EnvPrefix))
	return fs, nil
}
