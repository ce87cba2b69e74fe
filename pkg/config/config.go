package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults applied by DefaultServerConfiguration and Normalize.
const (
	DefaultPort         = 4280
	DefaultReadTimeout  = 30
	DefaultWriteTimeout = 30
	DefaultMaxBodyBytes = 10 << 20
)

// ServerConfiguration holds the settings for one stub server instance.
type ServerConfiguration struct {
	// Port is the TCP port the server listens on.
	Port int `json:"port" yaml:"port"`
	// ReadTimeout is the HTTP read timeout in seconds.
	ReadTimeout int `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	// WriteTimeout is the HTTP write timeout in seconds.
	WriteTimeout int `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	// MaxBodyBytes caps the size of recorded request bodies.
	MaxBodyBytes int64 `json:"maxBodyBytes,omitempty" yaml:"maxBodyBytes,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	// LogFormat is text or json.
	LogFormat string `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	// LogFile, when set, routes operational logs to a rotated file.
	LogFile string `json:"logFile,omitempty" yaml:"logFile,omitempty"`

	// StubDirs are directories scanned at startup for stub definition
	// files (*.yaml, *.yml, *.json, recursively).
	StubDirs []string `json:"stubDirs,omitempty" yaml:"stubDirs,omitempty"`
}

// DefaultServerConfiguration returns a configuration with all defaults set.
func DefaultServerConfiguration() *ServerConfiguration {
	return &ServerConfiguration{
		Port:         DefaultPort,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Normalize fills zero values with defaults.
func (c *ServerConfiguration) Normalize() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Validate checks the configuration for invalid values.
func (c *ServerConfiguration) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// ApplyEnv overrides settings from the environment. STUBD_PORT takes
// precedence over PORT.
func (c *ServerConfiguration) ApplyEnv() error {
	for _, key := range []string{"PORT", "STUBD_PORT"} {
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", key, val, err)
		}
		c.Port = port
	}
	return nil
}
