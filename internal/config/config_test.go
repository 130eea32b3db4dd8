package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/picker-performance-service/pkg/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "picker_performance", cfg.MongoDB.Database)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "@every 1m", cfg.Scheduler.Schedule)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.True(t, cfg.SeedDefaults)
	assert.NotNil(t, cfg.Location)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "viewer", cfg.Auth.DevRole)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server_addr: ":9100"
seed_defaults: false
mongodb:
  database: shift_floor
shift:
  timezone: UTC
  lunch_hour: 13
scheduler:
  schedule: "*/5 * * * *"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.ServerAddr)
	assert.False(t, cfg.SeedDefaults)
	assert.Equal(t, "shift_floor", cfg.MongoDB.Database)
	// keys absent from the file keep their defaults
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 15, cfg.Shift.ShortBreakHour)

	sched := cfg.ShiftSchedule()
	assert.Equal(t, 13, sched.LunchHour)
	assert.Equal(t, time.UTC, sched.Location)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server_addr: \":9100\"\n")
	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ServerAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, logging.LevelDebug, cfg.LoggingOptions("svc").Level)
	assert.True(t, cfg.TracingOptions("svc").Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaOptions().Brokers)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	path := writeConfig(t, "environment: staging\nauth:\n  jwt_secret: staging-secret\n")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoad_SecretRequiredOutsideDevelopment(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr bool
	}{
		{name: "production without secret", env: map[string]string{"ENVIRONMENT": "production"}, wantErr: true},
		{name: "staging file without secret", body: "environment: staging\n", wantErr: true},
		{name: "production dev role admin without secret", env: map[string]string{"ENVIRONMENT": "production", "AUTH_DEV_ROLE": "admin"}, wantErr: true},
		{name: "production with env secret", env: map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "prod-secret"}},
		{name: "production with file secret", body: "environment: production\nauth:\n  jwt_secret: prod-secret\n"},
		{name: "development without secret", env: map[string]string{"ENVIRONMENT": "development"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(writeConfig(t, tt.body))
			if tt.wantErr {
				assert.ErrorContains(t, err, "jwt_secret")
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cfg)
		})
	}
}

func TestLoad_MissingFileInProductionFails(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "malformed yaml", body: "server_addr: [unterminated"},
		{name: "bad timezone", body: "shift:\n  timezone: Mars/Olympus\n"},
		{name: "breaks out of order", body: "shift:\n  lunch_hour: 15\n  short_break_hour: 12\n"},
		{name: "bad cron", body: "scheduler:\n  schedule: every minute\n"},
		{name: "bad dev role", body: "auth:\n  dev_role: root\n"},
		{name: "empty brokers", body: "kafka:\n  brokers: []\n"},
		{name: "bad boolean env", body: "", env: map[string]string{"SEED_DEFAULTS": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestMongoDBOptions(t *testing.T) {
	cfg := Default()
	opts := cfg.MongoDBOptions()
	assert.Equal(t, 10*time.Second, opts.ConnectTimeout)
	assert.Equal(t, uint64(50), opts.MaxPoolSize)
	assert.Equal(t, time.Second, cfg.OutboxPollInterval())
}
