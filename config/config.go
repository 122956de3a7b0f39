// Package config builds the application's immutable configuration from the
// environment. Load it once at startup and pass the result to each component.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Development defaults. Production deployments must override them.
const (
	DefaultSecretKey      = "trust_tracker_secret_key_2024"
	DefaultDatabaseURL    = "trust_tracker.db"
	DefaultMasterUsername = "admin"
	DefaultMasterPassword = "admin123"
	DefaultHTTPAddr       = ":5000"
	DefaultSessionTTL     = 24 * time.Hour
)

type Config struct {
	Debug     bool
	LogFormat string // "text" | "json"
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Master    MasterConfig
}

type ServerConfig struct {
	Addr        string
	TemplateDir string
}

type DatabaseConfig struct {
	URL         string
	AutoMigrate bool
}

type SessionConfig struct {
	SecretKey string
	TTL       time.Duration
	Secure    bool
}

// MasterConfig describes the bootstrap administrator. An empty password
// disables both provisioning and the master login rules.
type MasterConfig struct {
	Username string
	Password string
	Override bool
}

// Enabled reports whether a master account is configured.
func (m MasterConfig) Enabled() bool {
	return m.Username != "" && m.Password != ""
}

// Load reads the configuration from the environment after merging a local
// .env file (variables already set win).
func Load() (*Config, error) {
	loadDotEnv(".env")

	debug, err := getBoolEnv("DEBUG", false)
	if err != nil {
		return nil, err
	}
	autoMigrate, err := getBoolEnv("DB_AUTO_MIGRATE", true)
	if err != nil {
		return nil, err
	}
	secure, err := getBoolEnv("SESSION_SECURE", false)
	if err != nil {
		return nil, err
	}
	override, err := getBoolEnv("MASTER_LOGIN_OVERRIDE", false)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", DefaultSessionTTL.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: must be positive, got %s", ttl)
	}

	logFormat := strings.ToLower(getEnv("LOG_FORMAT", "text"))
	if logFormat != "text" && logFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", logFormat)
	}

	cfg := &Config{
		Debug:     debug,
		LogFormat: logFormat,
		Server: ServerConfig{
			Addr:        getEnv("HTTP_ADDR", DefaultHTTPAddr),
			TemplateDir: getEnv("TEMPLATE_DIR", ""),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", DefaultDatabaseURL),
			AutoMigrate: autoMigrate,
		},
		Session: SessionConfig{
			SecretKey: getEnv("SECRET_KEY", DefaultSecretKey),
			TTL:       ttl,
			Secure:    secure,
		},
		Master: MasterConfig{
			Username: strings.TrimSpace(getEnv("MASTER_USERNAME", DefaultMasterUsername)),
			Password: getEnvAllowEmpty("MASTER_PASSWORD", DefaultMasterPassword),
			Override: override,
		},
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe to serve outside debug mode.
func (c *Config) Validate() error {
	if c.Session.SecretKey == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	if c.Debug {
		return nil
	}
	if c.Session.SecretKey == DefaultSecretKey {
		return errors.New("SECRET_KEY must be set when DEBUG is off")
	}
	if c.Master.Override && c.Master.Password == DefaultMasterPassword {
		return errors.New("MASTER_LOGIN_OVERRIDE requires a non-default MASTER_PASSWORD")
	}
	return nil
}

// Warnings lists development defaults still in effect.
func (c *Config) Warnings() []string {
	var w []string
	if c.Session.SecretKey == DefaultSecretKey {
		w = append(w, "SECRET_KEY is the development default")
	}
	if c.Master.Enabled() && c.Master.Password == DefaultMasterPassword {
		w = append(w, "MASTER_PASSWORD is the development default")
	}
	if c.Master.Override {
		w = append(w, "MASTER_LOGIN_OVERRIDE is on: the master password bypasses the stored hash")
	}
	return w
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getEnvAllowEmpty distinguishes "unset" from "set to empty".
func getEnvAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.Trim(strings.TrimSpace(line[eq+1:]), `"'`)
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
