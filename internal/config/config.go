// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Discovery DiscoveryConfig
	Importer  ImporterConfig
	NoteSync  NoteSyncConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds persistent storage configuration.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s, uploads can be large)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	CORSOrigins  []string
}

// DiscoveryConfig holds external catalog discovery configuration.
type DiscoveryConfig struct {
	// BaseURL is the upstream catalog site root.
	BaseURL string
	// Referrer sent with download requests. The upstream enforces
	// hotlink checks, so this must stay on its own host.
	Referrer string
	// UserAgent impersonates a mobile browser client.
	UserAgent string
	// SearchTimeout bounds one search round trip (default: 5s).
	SearchTimeout time.Duration
	// DownloadTimeout bounds one fetch round trip (default: 15s).
	DownloadTimeout time.Duration
	// ResultCap limits search results per query (default: 5).
	ResultCap int
	// RPS rate-limits outbound requests per upstream host.
	RPS float64
}

// ImporterConfig holds import-inbox watcher configuration.
type ImporterConfig struct {
	Enabled   bool
	InboxPath string
}

// NoteSyncConfig holds the best-effort note sync hook configuration.
type NoteSyncConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for persistent data")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")

	discoveryBaseURL := flag.String("discovery-base-url", "", "Upstream catalog base URL")
	searchTimeout := flag.String("search-timeout", "", "Discovery search timeout (default: 5s)")
	downloadTimeout := flag.String("download-timeout", "", "Discovery download timeout (default: 15s)")
	resultCap := flag.String("result-cap", "", "Max discovery results per query (default: 5)")

	importerEnabled := flag.String("importer-enabled", "", "Enable the import inbox watcher (default: false)")
	inboxPath := flag.String("inbox-path", "", "Directory watched for dropped EPUB files")

	noteSyncURL := flag.String("note-sync-url", "", "Webhook URL for best-effort note sync")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Discovery: DiscoveryConfig{
			BaseURL:   getConfigValue(*discoveryBaseURL, "DISCOVERY_BASE_URL", "https://www.haodoo.net"),
			Referrer:  getConfigValue("", "DISCOVERY_REFERRER", "https://www.haodoo.net/"),
			UserAgent: getConfigValue("", "DISCOVERY_USER_AGENT", defaultUserAgent),
			ResultCap: getIntConfigValue(*resultCap, "DISCOVERY_RESULT_CAP", 5),
			RPS:       1.0,
		},
		Importer: ImporterConfig{
			Enabled:   getBoolConfigValue(*importerEnabled, "IMPORTER_ENABLED", false),
			InboxPath: getConfigValue(*inboxPath, "IMPORTER_INBOX_PATH", ""),
		},
		NoteSync: NoteSyncConfig{
			WebhookURL: getConfigValue(*noteSyncURL, "NOTE_SYNC_URL", ""),
			Timeout:    10 * time.Second,
		},
	}
	cfg.NoteSync.Enabled = cfg.NoteSync.WebhookURL != ""

	// Parse server timeouts.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	// Parse discovery timeouts.
	if cfg.Discovery.SearchTimeout, err = parseDurationValue(*searchTimeout, "DISCOVERY_SEARCH_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.Discovery.DownloadTimeout, err = parseDurationValue(*downloadTimeout, "DISCOVERY_DOWNLOAD_TIMEOUT", "15s"); err != nil {
		return nil, err
	}

	// Parse CORS origins.
	originsStr := getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")
	for _, o := range strings.Split(originsStr, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.Server.CORSOrigins = append(cfg.Server.CORSOrigins, o)
		}
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, err
	}
	if err := cfg.expandInboxPath(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Discovery.BaseURL == "" {
		return errors.New("discovery base URL cannot be empty")
	}

	if c.Importer.Enabled && c.Importer.InboxPath == "" {
		return errors.New("importer inbox path is required when the importer is enabled")
	}

	return nil
}

// DatabasePath returns the badger database directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "db")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "ReadLeaf", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandInboxPath expands ~ and makes the path absolute.
// If empty, leaves it empty; the importer stays disabled.
func (c *Config) expandInboxPath() error {
	if c.Importer.InboxPath == "" {
		return nil
	}

	expanded, err := expandPath(c.Importer.InboxPath, "")
	if err != nil {
		return err
	}
	c.Importer.InboxPath = expanded
	return nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
