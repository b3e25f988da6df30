package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Ping methods
const (
	MethodExec = "exec"
	MethodICMP = "icmp"
)

var logLevels = []string{"debug", "info", "warn", "error", "fatal"}

// Config holds all configuration for the sampler
type Config struct {
	Target   string
	Interval time.Duration
	// Timeout bounds one attempt; zero means twice the interval.
	Timeout time.Duration
	Output  string
	Method  string
	Bind4   string
	Bind6   string

	DatabasePath string
	Retention    time.Duration
	Listen       string
	ChartDir     string
	LogLevel     string
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() Config {
	return Config{
		Target:    "1.1.1.1",
		Interval:  time.Second,
		Method:    MethodExec,
		Bind4:     "0.0.0.0",
		Bind6:     "::",
		Retention: 30 * 24 * time.Hour,
		LogLevel:  "info",
	}
}

// AttemptTimeout returns the per-attempt timeout in effect
func (c *Config) AttemptTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 2 * c.Interval
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("%w: target must not be empty", ErrInvalid)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalid)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalid)
	}
	switch c.Method {
	case MethodExec:
	case MethodICMP:
		if c.Bind4 == "" && c.Bind6 == "" {
			return fmt.Errorf("%w: icmp method needs a bind4 or bind6 address", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown method %q (available: exec, icmp)", ErrInvalid, c.Method)
	}
	if c.DatabasePath != "" && c.Retention <= 0 {
		return fmt.Errorf("%w: retention must be positive", ErrInvalid)
	}
	if !validLogLevel(c.LogLevel) {
		return fmt.Errorf("%w: log level must be one of %s", ErrInvalid, strings.Join(logLevels, ", "))
	}
	return nil
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}
