package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		HostelName: "Harbour House",
		Store: StoreConfig{
			Backend: BackendSQLite,
			Path:    "hostel.db",
		},
		Laundry: LaundryConfig{Machines: 2},
		ScheduleOverrides: []ScheduleOverride{
			{RRule: "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25", Closed: true, Reason: "Christmas"},
		},
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hostel_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_MissingHostelName(t *testing.T) {
	cfg := validConfig()
	cfg.HostelName = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_BackendRequirements(t *testing.T) {
	tests := []struct {
		name    string
		store   StoreConfig
		wantErr bool
	}{
		{"memory needs nothing", StoreConfig{Backend: BackendMemory}, false},
		{"sqlite needs path", StoreConfig{Backend: BackendSQLite}, true},
		{"postgres needs dsn", StoreConfig{Backend: BackendPostgres}, true},
		{"postgres with dsn", StoreConfig{Backend: BackendPostgres, DSN: "postgres://localhost/hostel"}, false},
		{"firestore needs project", StoreConfig{Backend: BackendFirestore}, true},
		{"mongodb needs database", StoreConfig{Backend: BackendMongoDB, DSN: "mongodb://localhost"}, true},
		{"mongodb complete", StoreConfig{Backend: BackendMongoDB, DSN: "mongodb://localhost", Database: "hostel"}, false},
		{"sheets needs sheet id", StoreConfig{Backend: BackendSheets}, true},
		{"sheets with sheet id", StoreConfig{Backend: BackendSheets, SheetID: "1AbC"}, false},
		{"unknown backend", StoreConfig{Backend: "redis"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Store = tt.store

			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_InvalidRRule(t *testing.T) {
	cfg := validConfig()
	cfg.ScheduleOverrides = append(cfg.ScheduleOverrides, ScheduleOverride{RRule: "INVALID_RRULE_SYNTAX", Closed: true})

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule in scheduleOverrides[1]")
}

func TestValidate_EmptyRRule(t *testing.T) {
	cfg := validConfig()
	cfg.ScheduleOverrides = []ScheduleOverride{{RRule: ""}}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidSender(t *testing.T) {
	cfg := validConfig()
	cfg.Google.GmailSender = "not-an-email"

	assert.Error(t, Validate(cfg))
}

func TestLoadFromPath_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
hostelName: Harbour House
store:
  backend: memory
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "Harbour House", cfg.HostelName)
	assert.Equal(t, DefaultRetryDelay, cfg.Schedule.RetryDelay)
	assert.Equal(t, DefaultLaundryMachines, cfg.Laundry.Machines)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, "me", cfg.Google.GmailUserID)
	assert.Equal(t, DefaultServiceName, cfg.Telemetry.ServiceName)
}

func TestLoadFromPath_ParsesEverything(t *testing.T) {
	path := writeConfig(t, `
hostelName: Harbour House
store:
  backend: postgres
  dsn: postgres://localhost/hostel
server:
  addr: ":9090"
  readTimeout: 5s
schedule:
  retryDelay: 250ms
scheduleOverrides:
  - rrule: "FREQ=WEEKLY;BYDAY=SU"
    closed: true
    reason: Deep clean
laundry:
  machines: 4
google:
  publishSheetID: sheet123
  gmailSender: desk@example.com
  notifyByEmail: true
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Schedule.RetryDelay)
	require.Len(t, cfg.ScheduleOverrides, 1)
	assert.Equal(t, "Deep clean", cfg.ScheduleOverrides[0].Reason)
	assert.Equal(t, 4, cfg.Laundry.Machines)
	assert.True(t, cfg.Google.NotifyByEmail)
}

func TestLoadFromPath_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
hostelName: Harbour House
store:
  backend: sqlite
  path: hostel.db
`)

	t.Setenv("HOSTEL_STORE_BACKEND", "postgres")
	t.Setenv("HOSTEL_STORE_DSN", "postgres://db/hostel")
	t.Setenv("HOSTEL_JWT_SECRET", "s3cret")
	t.Setenv("HOSTEL_SCHEDULE_RETRY_DELAY", "1s")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://db/hostel", cfg.Store.DSN)
	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, time.Second, cfg.Schedule.RetryDelay)
	// Untouched by the environment
	assert.Equal(t, "hostel.db", cfg.Store.Path)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "hostelName: [unclosed")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadWithEnv_PrefersEnvFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	require.NoError(t, os.WriteFile("hostel_config.yaml", []byte("hostelName: Generic\nstore:\n  backend: memory\n"), 0644))
	require.NoError(t, os.WriteFile("hostel_config.test.yaml", []byte("hostelName: Test House\nstore:\n  backend: memory\n"), 0644))
	require.NoError(t, os.WriteFile(".env.test", []byte("HOSTEL_LAUNDRY_MACHINES=3\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("HOSTEL_LAUNDRY_MACHINES") })

	cfg, err := LoadWithEnv("test")
	require.NoError(t, err)
	assert.Equal(t, "Test House", cfg.HostelName)
	assert.Equal(t, 3, cfg.Laundry.Machines)

	cfg, err = LoadWithEnv("prod")
	require.NoError(t, err)
	assert.Equal(t, "Generic", cfg.HostelName)
}

func TestClosedReason(t *testing.T) {
	cfg := validConfig()
	cfg.ScheduleOverrides = append(cfg.ScheduleOverrides,
		ScheduleOverride{RRule: "FREQ=WEEKLY;BYDAY=SU", Closed: false, Reason: "not a closure"},
	)

	closed, reason := cfg.ClosedReason(time.Date(2024, 12, 25, 15, 0, 0, 0, time.UTC))
	assert.True(t, closed)
	assert.Equal(t, "Christmas", reason)

	closed, _ = cfg.ClosedReason(time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC))
	assert.False(t, closed)

	// Sunday matches only a non-closing override
	closed, _ = cfg.ClosedReason(time.Date(2024, 12, 22, 0, 0, 0, 0, time.UTC))
	assert.False(t, closed)
}

func TestIsClosed_InvalidDate(t *testing.T) {
	_, _, err := validConfig().IsClosed("25/12/2024")
	assert.Error(t, err)
}
