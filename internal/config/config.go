package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/hostelhub/pkg/core/model"
)

const (
	configFilePrefix = "hostel_config"
	envVarPrefix     = "HOSTEL_"

	DefaultRetryDelay      = 500 * time.Millisecond
	DefaultLaundryMachines = 2
	DefaultServerAddr      = ":8080"
	DefaultServiceName     = "hostelhub"
)

// Store backends
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMongoDB   = "mongodb"
	BackendSheets    = "sheets"
)

// StoreConfig selects and locates the document store
type StoreConfig struct {
	Backend   string `yaml:"backend" env:"STORE_BACKEND" validate:"required,oneof=memory sqlite postgres firestore mongodb sheets"`
	DSN       string `yaml:"dsn,omitempty" env:"STORE_DSN" validate:"required_if=Backend postgres,required_if=Backend mongodb"`
	Path      string `yaml:"path,omitempty" env:"STORE_PATH" validate:"required_if=Backend sqlite"`
	ProjectID string `yaml:"projectID,omitempty" env:"STORE_PROJECT_ID" validate:"required_if=Backend firestore"`
	Database  string `yaml:"database,omitempty" env:"STORE_DATABASE" validate:"required_if=Backend mongodb"`
	// SheetID is the spreadsheet used as the database by the sheets backend
	SheetID string `yaml:"sheetID,omitempty" env:"STORE_SHEET_ID" validate:"required_if=Backend sheets"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr,omitempty" env:"SERVER_ADDR"`
	JWTSecret    string        `yaml:"jwtSecret,omitempty" env:"JWT_SECRET"`
	ReadTimeout  time.Duration `yaml:"readTimeout,omitempty" env:"SERVER_READ_TIMEOUT" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"writeTimeout,omitempty" env:"SERVER_WRITE_TIMEOUT" validate:"gte=0"`
}

// ScheduleConfig tunes schedule table write-back
type ScheduleConfig struct {
	// RetryDelay is the pause before the single retry of a failed write-back
	RetryDelay time.Duration `yaml:"retryDelay,omitempty" env:"SCHEDULE_RETRY_DELAY" validate:"gte=0"`
}

// ScheduleOverride marks dates matched by an RRULE, e.g. closing the hostel on public holidays
type ScheduleOverride struct {
	RRule  string `yaml:"rrule" validate:"required"`
	Closed bool   `yaml:"closed,omitempty"`
	Reason string `yaml:"reason,omitempty"`
}

type LaundryConfig struct {
	Machines int `yaml:"machines,omitempty" env:"LAUNDRY_MACHINES" validate:"gte=1"`
}

// GoogleConfig holds the optional Sheets / Gmail integration settings
type GoogleConfig struct {
	PublishSheetID string `yaml:"publishSheetID,omitempty" env:"PUBLISH_SHEET_ID"`
	GmailUserID    string `yaml:"gmailUserID,omitempty" env:"GMAIL_USER_ID"`
	GmailSender    string `yaml:"gmailSender,omitempty" env:"GMAIL_SENDER" validate:"omitempty,email"`
	NotifyByEmail  bool   `yaml:"notifyByEmail,omitempty" env:"NOTIFY_BY_EMAIL"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty" env:"OTLP_ENDPOINT"`
	ServiceName  string `yaml:"serviceName,omitempty" env:"SERVICE_NAME"`
}

// Config represents the application configuration
type Config struct {
	HostelName        string             `yaml:"hostelName" env:"NAME" validate:"required"`
	Store             StoreConfig        `yaml:"store"`
	Server            ServerConfig       `yaml:"server,omitempty"`
	Schedule          ScheduleConfig     `yaml:"schedule,omitempty"`
	ScheduleOverrides []ScheduleOverride `yaml:"scheduleOverrides,omitempty" validate:"dive"`
	Laundry           LaundryConfig      `yaml:"laundry,omitempty"`
	Google            GoogleConfig       `yaml:"google,omitempty"`
	Telemetry         TelemetryConfig    `yaml:"telemetry,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from hostel_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads hostel_config.<env>.yaml, falling back to hostel_config.yaml.
// An optional .env.<env> (or .env) file in the working directory is loaded into the
// process environment first; variables already set take precedence over it.
func LoadWithEnv(envName string) (*Config, error) {
	if err := loadDotEnv(envName); err != nil {
		return nil, err
	}

	configPath, err := findConfigFile(envName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads the YAML file at path, applies defaults and HOSTEL_* environment
// overrides, and validates the result
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envVarPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Schedule.RetryDelay == 0 {
		cfg.Schedule.RetryDelay = DefaultRetryDelay
	}
	if cfg.Laundry.Machines == 0 {
		cfg.Laundry.Machines = DefaultLaundryMachines
	}
	if cfg.Google.GmailUserID == "" {
		cfg.Google.GmailUserID = "me"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = DefaultServiceName
	}
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, override := range cfg.ScheduleOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in scheduleOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

// ClosedReason reports whether date (a calendar day) falls on a closed schedule override,
// returning the override's reason
func (c *Config) ClosedReason(date time.Time) (bool, string) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	for _, override := range c.ScheduleOverrides {
		if !override.Closed {
			continue
		}

		opts, err := rrule.StrToROption(override.RRule)
		if err != nil {
			// Rejected by Validate; a hand-built config may still carry one
			continue
		}
		if opts.Dtstart.IsZero() {
			opts.Dtstart = dayStart.AddDate(0, 0, -7)
		}
		rule, err := rrule.NewRRule(*opts)
		if err != nil {
			continue
		}

		if len(rule.Between(dayStart, dayEnd, true)) > 0 {
			return true, override.Reason
		}
	}

	return false, ""
}

// IsClosed reports whether the given YYYY-MM-DD date is closed for scheduling
func (c *Config) IsClosed(date string) (bool, string, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return false, "", err
	}
	closed, reason := c.ClosedReason(day)
	return closed, reason, nil
}

func loadDotEnv(envName string) error {
	name := ".env"
	if envName != "" {
		name = ".env." + envName
	}

	if err := godotenv.Load(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	return nil
}

// findConfigFile searches for hostel_config.<env>.yaml, then hostel_config.yaml, in the
// current directory and then the home directory
func findConfigFile(envName string) (string, error) {
	names := []string{configFilePrefix + ".yaml"}
	if envName != "" {
		names = append([]string{configFilePrefix + "." + envName + ".yaml"}, names...)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	for _, dir := range []string{"", homeDir} {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
