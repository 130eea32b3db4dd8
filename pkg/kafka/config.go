package kafka

import (
	"time"
)

// Config holds Kafka producer configuration
type Config struct {
	Brokers      []string
	ClientID     string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: none, 1: leader, -1: all replicas
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "picker-performance-service",
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
		WriteTimeout: 10 * time.Second,
	}
}

// Topics the service writes to
var Topics = struct {
	LaborEvents        string
	DashboardSnapshots string
}{
	LaborEvents:        "wms.labor.events",
	DashboardSnapshots: "wms.labor.dashboard",
}
