package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Store backends
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds the server settings. Every key can be set with a SURVEY_
// prefixed environment variable, dashes becoming underscores.
type Config struct {
	HTTPAddr        string
	Store           string
	MongoURI        string
	MongoDB         string
	RedisAddr       string
	JWTSecret       string
	AdminUsername   string
	AdminPassword   string
	LogLevel        string
	LogFormat       string
	Timezone        string
	ShutdownTimeout time.Duration
}

// Defaults applied when nothing else sets a key
var defaults = map[string]interface{}{
	"http-addr":        ":8080",
	"store":            StoreMongo,
	"mongo-uri":        "mongodb://localhost:27017",
	"mongo-db":         "surveys",
	"redis-addr":       "localhost:6379",
	"jwt-secret":       "change-me",
	"admin-username":   "admin",
	"admin-password":   "password123",
	"log-level":        "info",
	"log-format":       "json",
	"timezone":         "UTC",
	"shutdown-timeout": 30 * time.Second,
}

var usage = map[string]string{
	"http-addr":        "address the HTTP server listens on",
	"store":            "persistence backend: mongo or memory",
	"mongo-uri":        "MongoDB connection string",
	"mongo-db":         "MongoDB database name",
	"redis-addr":       "Redis address for response statistics, empty disables them",
	"jwt-secret":       "HMAC secret for admin and responder tokens",
	"admin-username":   "admin login name",
	"admin-password":   "admin login password",
	"log-level":        "log level: debug, info, warn or error",
	"log-format":       "log format: json or console",
	"timezone":         "IANA time zone in which cycle dates are evaluated",
	"shutdown-timeout": "graceful shutdown timeout",
}

// BindFlags registers one flag per configuration key on cmd and binds them
// to v. A flag that is set wins over the environment.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	fs := cmd.Flags()
	for k, desc := range usage {
		if k == "shutdown-timeout" {
			fs.Duration(k, defaults[k].(time.Duration), desc)
		} else {
			fs.String(k, fmt.Sprint(defaults[k]), desc)
		}
		if err := v.BindPFlag(k, fs.Lookup(k)); err != nil {
			return err
		}
	}
	return nil
}

// NewViper returns a viper instance bound to the environment with defaults set
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("SURVEY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// An empty SURVEY_REDIS_ADDR must be able to turn statistics off.
	v.AllowEmptyEnv(true)
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	return v
}

// Load reads the configuration from v and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:        v.GetString("http-addr"),
		Store:           v.GetString("store"),
		MongoURI:        v.GetString("mongo-uri"),
		MongoDB:         v.GetString("mongo-db"),
		RedisAddr:       strings.TrimPrefix(v.GetString("redis-addr"), "redis://"),
		JWTSecret:       v.GetString("jwt-secret"),
		AdminUsername:   v.GetString("admin-username"),
		AdminPassword:   v.GetString("admin-password"),
		LogLevel:        v.GetString("log-level"),
		LogFormat:       v.GetString("log-format"),
		Timezone:        v.GetString("timezone"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
	}

	switch cfg.Store {
	case StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown store %q (want %s or %s)", cfg.Store, StoreMongo, StoreMemory)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt-secret must not be empty")
	}
	return cfg, nil
}

// Warnings lists settings that still carry their built-in development
// values
func (c *Config) Warnings() []string {
	var warnings []string
	if c.JWTSecret == defaults["jwt-secret"] {
		warnings = append(warnings, "jwt-secret is the built-in default, tokens can be forged")
	}
	if c.AdminPassword == defaults["admin-password"] {
		warnings = append(warnings, "admin-password is the built-in default")
	}
	return warnings
}

// Location returns the time zone in which cycle dates are evaluated
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
