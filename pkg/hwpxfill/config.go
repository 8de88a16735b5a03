package hwpxfill

import (
	"os"
	"strconv"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config contains the tunable options of the engine.
type Config struct {
	// StrictMode fails the run on unknown anchors and on indexed
	// anchors left without a payload entry, instead of blanking them.
	StrictMode bool
	// MinDetailLines is the recommended number of detail lines per
	// outline heading. Fewer (but at least one) is a warning; zero is
	// fatal for fields whose schema requires detail.
	MinDetailLines int
	// LogLevel controls logging verbosity (debug, info, warn, error, off).
	LogLevel string
	// SchemaPath optionally points at a YAML anchor schema overriding
	// the embedded default.
	SchemaPath string
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		StrictMode:     false,
		MinDetailLines: 3,
		LogLevel:       "info",
	}
}

// ConfigFromEnvironment creates a configuration from HWPXFILL_*
// environment variables, falling back to defaults.
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	if val := os.Getenv("HWPXFILL_STRICT"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.StrictMode = parsed
		}
	}
	if val := os.Getenv("HWPXFILL_MIN_DETAIL_LINES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.MinDetailLines = parsed
		}
	}
	if val := os.Getenv("HWPXFILL_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}
	if val := os.Getenv("HWPXFILL_SCHEMA"); val != "" {
		config.SchemaPath = val
	}

	return config
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MinDetailLines, validation.Required, validation.Min(1), validation.Max(10)),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error", "off")),
	)
}

// GetGlobalConfig returns the global configuration, initializing it
// from the environment on first use.
func GetGlobalConfig() *Config {
	configOnce.Do(func() {
		globalConfigMutex.Lock()
		defer globalConfigMutex.Unlock()
		if globalConfig == nil {
			globalConfig = ConfigFromEnvironment()
		}
	})
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()
	return globalConfig
}

// SetGlobalConfig replaces the global configuration.
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	defer globalConfigMutex.Unlock()
	globalConfig = config
}
