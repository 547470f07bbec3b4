package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the limit order book service.
type Config struct {
	Port            int
	LogLevel        string
	ExpiryHour      int
	ExpiryMargin    time.Duration
	ExpiryTZ        *time.Location
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	expiryHour, err := getInt("EXPIRY_HOUR", 16)
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_HOUR: %w", err)
	}
	if expiryHour < 0 || expiryHour > 23 {
		return nil, fmt.Errorf("invalid EXPIRY_HOUR: %d, must be in 0..23", expiryHour)
	}

	expiryMargin, err := getDuration("EXPIRY_MARGIN", 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_MARGIN: %w", err)
	}

	expiryTZ := time.Local
	if name := getStr("EXPIRY_TZ", ""); name != "" {
		expiryTZ, err = time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPIRY_TZ: %w", err)
		}
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		ExpiryHour:      expiryHour,
		ExpiryMargin:    expiryMargin,
		ExpiryTZ:        expiryTZ,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
