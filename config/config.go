// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"claudecode-es/backend/internal/access"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sort"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath   = pflag.String("config", "config.toml", "Path to the TOML config file")
	exportEmails = pflag.Bool("export-emails", false, "Uploads the user email export once and exits")

	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validEnvs       = []string{"development", "production"}
	validStoreTypes = []string{"redis", "memory"}
	validDBTypes    = []string{"sqlite", "postgres"}
)

// ExportOnly reports whether the process was started with --export-emails
func ExportOnly() bool {
	return *exportEmails
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	return Load(*configPath)
}

// Load reads the config file at path on top of the environment and the
// defaults, then validates the result.
func Load(path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.env", "APP_ENV")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.base_url", "HOST_BASE_URL")
	v.BindEnv("host.cors", "HOST_CORS")
	v.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")

	v.BindEnv("store.type", "STORE_TYPE")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	v.BindEnv("db.type", "DB_TYPE")
	v.BindEnv("db.path", "DB_PATH")
	v.BindEnv("db.dsn", "DB_DSN")

	v.BindEnv("mail.enabled", "MAIL_ENABLED")
	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.sender_address", "MAIL_SENDER_ADDRESS")

	v.BindEnv("license.verify_url", "LICENSE_VERIFY_URL")
	v.BindEnv("license.product_id", "LICENSE_PRODUCT_ID")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")

	v.BindEnv("turnstile.enabled", "TURNSTILE_ENABLED")
	v.BindEnv("turnstile.secret_token", "TURNSTILE_SECRET_TOKEN")

	v.BindEnv("export.enabled", "EXPORT_ENABLED")
	v.BindEnv("export.bucket", "EXPORT_BUCKET")
	v.BindEnv("export.endpoint", "EXPORT_ENDPOINT")
	v.BindEnv("export.access_key_id", "EXPORT_ACCESS_KEY_ID")
	v.BindEnv("export.secret_access_key", "EXPORT_SECRET_ACCESS_KEY")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.env", "development")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.base_url", "http://localhost:8080")
	v.SetDefault("host.cors", []string{"http://localhost:4321"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("store.type", "memory")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("db.type", "sqlite")
	v.SetDefault("db.path", "database.db")

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)

	v.SetDefault("auth.magic_link_ttl", "15m")
	v.SetDefault("auth.session_ttl", "720h")
	v.SetDefault("auth.default_redirect", "/empezar/introduccion")
	v.SetDefault("auth.rate_limit.max", 3)
	v.SetDefault("auth.rate_limit.window", "1h")

	v.SetDefault("access.whitelist", []string{})
	v.SetDefault("access.products", []string{"ralph_loop", "curso_interactivo"})
	v.SetDefault("access.bundles", map[string]any{
		"recursos": map[string]any{
			"gates": []string{access.GateFreeEmail, access.GateSession},
		},
		"empezar": map[string]any{
			"gates": []string{access.GateSession},
		},
		"ralph_loop": map[string]any{
			"gates":   []string{access.GateWhitelist, access.GatePurchase},
			"product": "ralph_loop",
		},
		"curso_interactivo": map[string]any{
			"gates":   []string{access.GateWhitelist, access.GatePurchase, access.GateLicense},
			"product": "curso_interactivo",
		},
	})

	v.SetDefault("license.timeout", "10s")

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("turnstile.enabled", false)

	v.SetDefault("export.enabled", false)
	v.SetDefault("export.schedule", "@daily")
	v.SetDefault("export.region", "auto")
	v.SetDefault("export.prefix", "exports/")

	v.SetDefault("history.retention", "2160h")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s is missing", path)
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	return validate()
}

func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if !slices.Contains(validEnvs, v.GetString("app.env")) {
		return errors.New("app.env must be development or production")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("host.base_url") == "" {
		return errors.New("host.base_url can't be empty, magic links are built from it")
	}

	switch v.GetString("store.type") {
	case "redis":
		if v.GetString("redis.addr") == "" {
			return errors.New("redis.addr can't be empty")
		}
	case "memory":
		if Production() {
			fmt.Println("[WARNING]: Using the in-memory store in production. Sessions are lost on every restart")
		}
	}

	if !slices.Contains(validStoreTypes, v.GetString("store.type")) {
		return errors.New("invalid store type provided")
	}

	if !slices.Contains(validDBTypes, v.GetString("db.type")) {
		return errors.New("invalid database type provided")
	}

	if v.GetString("db.type") == "postgres" && v.GetString("db.dsn") == "" {
		return errors.New("db.dsn is required for postgres")
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" {
			return errors.New("mail.host can't be empty")
		}
		if v.GetInt("mail.port") <= 0 {
			return errors.New("invalid mail port provided")
		}
		if v.GetString("mail.sender_address") == "" {
			return errors.New("mail.sender_address can't be empty")
		}
	} else {
		fmt.Println("[WARNING]: Mail is disabled. Magic links will only be written to the log")
	}

	for _, k := range []string{"auth.magic_link_ttl", "auth.session_ttl", "auth.rate_limit.window", "license.timeout"} {
		if v.GetDuration(k) <= 0 {
			return fmt.Errorf("%s must be a positive duration", k)
		}
	}

	if v.GetDuration("history.retention") < 0 {
		return errors.New("history.retention can't be negative")
	}

	if v.GetInt("auth.rate_limit.max") <= 0 {
		return errors.New("auth.rate_limit.max must be bigger than 0")
	}

	if v.GetInt("security.rate_limit") < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if _, err := Bundles(); err != nil {
		return err
	}

	if v.GetString("license.verify_url") == "" {
		fmt.Println("[WARNING]: No license.verify_url set. License gates will never grant access")
	}

	if !v.GetBool("turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Magic link requests won't be guarded against bots")
	} else {
		if v.GetString("turnstile.secret_token") == "" {
			return errors.New("turnstile secret token is missing")
		}
	}

	if v.GetBool("export.enabled") || ExportOnly() {
		if v.GetString("export.bucket") == "" {
			return errors.New("export.bucket can't be empty")
		}

		if _, err := cron.ParseStandard(v.GetString("export.schedule")); err != nil {
			return fmt.Errorf("invalid export.schedule, %w", err)
		}
	}

	return nil
}

// Production reports whether cookies should be marked secure
func Production() bool {
	return v.GetString("app.env") == "production" || v.GetBool("host.ssl.enabled")
}

// Bundles returns the configured content bundles sorted by name
func Bundles() ([]access.Bundle, error) {
	raw := map[string]access.Bundle{}
	if err := v.UnmarshalKey("access.bundles", &raw); err != nil {
		return nil, fmt.Errorf("invalid access.bundles, %w", err)
	}

	bundles := make([]access.Bundle, 0, len(raw))
	for name, b := range raw {
		b.Name = name

		if b.Product != "" && !slices.Contains(v.GetStringSlice("access.products"), b.Product) {
			return nil, fmt.Errorf("bundle %q uses unknown product %q", name, b.Product)
		}

		bundles = append(bundles, b)
	}

	sort.Slice(bundles, func(i, j int) bool {
		return bundles[i].Name < bundles[j].Name
	})

	return bundles, nil
}
