// Package config loads and validates the server's environment, per §6.1:
// DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASS are required, MAX_DB_CONN,
// API_PORT and DEFAULT_TIMEZONE are optional with the frozen defaults.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully resolved, validated process configuration.
type Config struct {
	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	MaxDBConn       int
	APIPort         int
	DefaultTimezone string

	LogLevel      string
	SecureCookies bool
}

var requiredVars = []string{"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASS"}

// Load reads the environment via viper, applies the optional-variable
// defaults, and fails fast if a required variable is absent.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("MAX_DB_CONN", runtime.NumCPU())
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("DEFAULT_TIMEZONE", "Europe/Madrid")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SECURE_COOKIES", false)

	var missing []string
	for _, name := range requiredVars {
		if v.GetString(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}

	maxConn := v.GetInt("MAX_DB_CONN")
	if maxConn <= 0 {
		maxConn = 1
	}

	return &Config{
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBName:          v.GetString("DB_NAME"),
		DBUser:          v.GetString("DB_USER"),
		DBPass:          v.GetString("DB_PASS"),
		MaxDBConn:       maxConn,
		APIPort:         v.GetInt("API_PORT"),
		DefaultTimezone: v.GetString("DEFAULT_TIMEZONE"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		SecureCookies:   v.GetBool("SECURE_COOKIES"),
	}, nil
}

// DSN renders the lib/pq connection string for the pool.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass)
}
