package concurrency

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// ConfigSource indicates where the configuration came from.
type ConfigSource string

const (
	ConfigSourceEnvVar     ConfigSource = "environment_variable"
	ConfigSourceAutoDetect ConfigSource = "auto_detect"
)

// Config holds scheduler and runtime tuning parameters.
type Config struct {
	// MaxConcurrent caps the number of simultaneously live node tasks when
	// the limited scheduler is used.
	MaxConcurrent int

	// QueueCapacity is the default capacity for queues created by
	// generator-shaped runtimes.
	QueueCapacity int

	// WakeInterval bounds each pause-gate wait in the runtimes.
	WakeInterval time.Duration

	Source        ConfigSource
	IsKubernetes  bool
	EffectiveCPUs int
}

// LoadConfig loads configuration with priority: env vars > auto-detection.
//
// Recognized variables: FLOW_MAX_CONCURRENT, FLOW_CONCURRENCY_MULTIPLIER,
// FLOW_QUEUE_CAPACITY, FLOW_GATE_WAKE_INTERVAL_MS.
func LoadConfig() *Config {
	config := &Config{}

	config.IsKubernetes = isKubernetes()
	config.EffectiveCPUs = runtime.GOMAXPROCS(0)

	if maxConcurrent := getEnvInt("FLOW_MAX_CONCURRENT", 0); maxConcurrent > 0 {
		config.MaxConcurrent = maxConcurrent
		config.Source = ConfigSourceEnvVar
	} else if multiplier := getEnvInt("FLOW_CONCURRENCY_MULTIPLIER", 0); multiplier > 0 {
		config.MaxConcurrent = config.EffectiveCPUs * multiplier
		config.Source = ConfigSourceEnvVar
	} else {
		config.MaxConcurrent = defaultMaxConcurrent(config.IsKubernetes, config.EffectiveCPUs)
		config.Source = ConfigSourceAutoDetect
	}
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}

	config.QueueCapacity = getEnvInt("FLOW_QUEUE_CAPACITY", DefaultQueueCapacity)
	if config.QueueCapacity < 0 {
		config.QueueCapacity = DefaultQueueCapacity
	}

	if ms := getEnvInt("FLOW_GATE_WAKE_INTERVAL_MS", 0); ms > 0 {
		config.WakeInterval = time.Duration(ms) * time.Millisecond
	} else {
		config.WakeInterval = DefaultWakeInterval
	}

	return config
}

const (
	// DefaultQueueCapacity is the capacity for generator-owned queues when
	// neither the caller nor the environment specifies one.
	DefaultQueueCapacity = 16

	// DefaultWakeInterval bounds pause-gate waits when unconfigured.
	DefaultWakeInterval = 25 * time.Millisecond
)

// isKubernetes detects if the application is running in Kubernetes.
func isKubernetes() bool {
	// Kubernetes sets this environment variable in all containers
	return os.Getenv("KUBERNETES_SERVICE_HOST") != ""
}

// defaultMaxConcurrent returns sensible defaults based on environment.
// Flows routinely have more nodes than CPUs and every node task spends most
// of its life parked on a queue, so the multipliers are generous.
func defaultMaxConcurrent(isK8s bool, cpus int) int {
	if isK8s {
		return cpus * 8
	}
	return cpus * 16
}

// getEnvInt retrieves an integer from an environment variable with default
// fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// String returns a formatted representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{MaxConcurrent: %d, QueueCapacity: %d, WakeInterval: %s, IsK8s: %t, CPUs: %d, Source: %s}",
		c.MaxConcurrent,
		c.QueueCapacity,
		c.WakeInterval,
		c.IsKubernetes,
		c.EffectiveCPUs,
		c.Source,
	)
}
