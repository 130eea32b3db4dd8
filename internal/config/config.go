// Package config loads service configuration from a YAML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/wms-platform/picker-performance-service/internal/analytics"
	"github.com/wms-platform/picker-performance-service/internal/domain"
	"github.com/wms-platform/picker-performance-service/pkg/kafka"
	"github.com/wms-platform/picker-performance-service/pkg/logging"
	"github.com/wms-platform/picker-performance-service/pkg/mongodb"
	"github.com/wms-platform/picker-performance-service/pkg/tracing"
)

const defaultConfigPath = "config.yaml"

type Config struct {
	ServerAddr   string `yaml:"server_addr"`
	Environment  string `yaml:"environment"`
	LogLevel     string `yaml:"log_level"`
	SeedDefaults bool   `yaml:"seed_defaults"`

	MongoDB   MongoDBConfig   `yaml:"mongodb"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Auth      AuthConfig      `yaml:"auth"`
	Shift     ShiftConfig     `yaml:"shift"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Outbox    OutboxConfig    `yaml:"outbox"`
	Tracing   TracingConfig   `yaml:"tracing"`

	Location *time.Location `yaml:"-"` // resolved from Shift.Timezone
}

type MongoDBConfig struct {
	URI                   string `yaml:"uri"`
	Database              string `yaml:"database"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	MaxPoolSize           uint64 `yaml:"max_pool_size"`
	MinPoolSize           uint64 `yaml:"min_pool_size"`
}

type KafkaConfig struct {
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"client_id"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	// DevRole is granted to every caller when JWTSecret is empty
	DevRole string `yaml:"dev_role"`
}

// ShiftConfig places the 09:00-17:00 shift in a timezone and sets its break hours
type ShiftConfig struct {
	Timezone       string `yaml:"timezone"`
	LunchHour      int    `yaml:"lunch_hour"`
	ShortBreakHour int    `yaml:"short_break_hour"`
}

type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

type OutboxConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	BatchSize           int `yaml:"batch_size"`
}

type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`
	SampleRate float64 `yaml:"sample_rate"`
}

// Default returns the configuration used when no file or env value says otherwise
func Default() Config {
	sched := analytics.DefaultSchedule()
	return Config{
		ServerAddr:   ":8080",
		Environment:  "development",
		LogLevel:     "info",
		SeedDefaults: true,
		MongoDB: MongoDBConfig{
			URI:                   "mongodb://localhost:27017",
			Database:              "picker_performance",
			ConnectTimeoutSeconds: 10,
			MaxPoolSize:           50,
			MinPoolSize:           5,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{"localhost:9092"},
			ClientID: "picker-performance-service",
		},
		Auth: AuthConfig{
			Issuer:  "picker-performance-service",
			DevRole: "viewer",
		},
		Shift: ShiftConfig{
			Timezone:       "Local",
			LunchHour:      sched.LunchHour,
			ShortBreakHour: sched.ShortBreakHour,
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "@every 1m",
		},
		Outbox: OutboxConfig{
			PollIntervalSeconds: 1,
			BatchSize:           100,
		},
		Tracing: TracingConfig{
			Endpoint:   "localhost:4317",
			SampleRate: 1.0,
		},
	}
}

// Load reads the YAML file at path over the defaults, applies env overrides and validates.
// An empty path falls back to CONFIG_PATH, then config.yaml. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.ServerAddr, "SERVER_ADDR")
	envOverride(&cfg.Environment, "ENVIRONMENT")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.MongoDB.URI, "MONGODB_URI")
	envOverride(&cfg.MongoDB.Database, "MONGODB_DATABASE")
	envOverride(&cfg.Auth.JWTSecret, "JWT_SECRET")
	envOverride(&cfg.Auth.DevRole, "AUTH_DEV_ROLE")
	envOverride(&cfg.Scheduler.Schedule, "SNAPSHOT_SCHEDULE")
	envOverride(&cfg.Shift.Timezone, "SHIFT_TIMEZONE")
	envOverride(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = nil
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	for key, target := range map[string]*bool{
		"TRACING_ENABLED":   &cfg.Tracing.Enabled,
		"SCHEDULER_ENABLED": &cfg.Scheduler.Enabled,
		"SEED_DEFAULTS":     &cfg.SeedDefaults,
	} {
		if err := envOverrideBool(target, key); err != nil {
			return err
		}
	}
	return nil
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideBool(target *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %q is not a boolean", key, v)
	}
	*target = b
	return nil
}

// Validate checks the configuration and resolves the shift location
func (c *Config) Validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("server_addr is required")
	}
	if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
		return fmt.Errorf("mongodb uri and database are required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one kafka broker is required")
	}

	s := c.Shift
	if s.LunchHour <= domain.FirstHour || s.ShortBreakHour <= s.LunchHour || s.ShortBreakHour >= domain.LastHour {
		return fmt.Errorf("shift breaks must fall inside the shift, lunch before the short break")
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fmt.Errorf("shift timezone %q: %w", s.Timezone, err)
	}
	c.Location = loc

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.Schedule); err != nil {
			return fmt.Errorf("scheduler schedule %q: %w", c.Scheduler.Schedule, err)
		}
	}

	if c.Auth.JWTSecret == "" && c.Environment != "development" {
		return fmt.Errorf("auth jwt_secret is required outside development, environment is %q", c.Environment)
	}
	switch c.Auth.DevRole {
	case "admin", "viewer":
	default:
		return fmt.Errorf("auth dev_role must be admin or viewer, got %q", c.Auth.DevRole)
	}
	return nil
}

// ShiftSchedule returns the analytics schedule for the configured shift
func (c *Config) ShiftSchedule() analytics.Schedule {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	sched := analytics.DefaultSchedule()
	sched.LunchHour = c.Shift.LunchHour
	sched.ShortBreakHour = c.Shift.ShortBreakHour
	sched.Location = loc
	return sched
}

func (c *Config) MongoDBOptions() *mongodb.Config {
	return &mongodb.Config{
		URI:            c.MongoDB.URI,
		Database:       c.MongoDB.Database,
		ConnectTimeout: time.Duration(c.MongoDB.ConnectTimeoutSeconds) * time.Second,
		MaxPoolSize:    c.MongoDB.MaxPoolSize,
		MinPoolSize:    c.MongoDB.MinPoolSize,
	}
}

func (c *Config) KafkaOptions() *kafka.Config {
	kc := kafka.DefaultConfig()
	kc.Brokers = c.Kafka.Brokers
	if c.Kafka.ClientID != "" {
		kc.ClientID = c.Kafka.ClientID
	}
	return kc
}

func (c *Config) TracingOptions(serviceName string) *tracing.Config {
	tc := tracing.DefaultConfig(serviceName)
	tc.Enabled = c.Tracing.Enabled
	tc.OTLPEndpoint = c.Tracing.Endpoint
	tc.SampleRate = c.Tracing.SampleRate
	tc.Environment = c.Environment
	return tc
}

func (c *Config) LoggingOptions(serviceName string) *logging.Config {
	lc := logging.DefaultConfig(serviceName)
	lc.Level = logging.ParseLevel(c.LogLevel)
	lc.Environment = c.Environment
	return lc
}

func (c *Config) OutboxPollInterval() time.Duration {
	if c.Outbox.PollIntervalSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.Outbox.PollIntervalSeconds) * time.Second
}
