// Package config provides application configuration with multi-source
// priority.
//
// Sources (highest to lowest):
//  1. SNOWFLAKE_* environment variables (runtime override)
//  2. Config file (~/.snowmcp/config.yaml or ./config.yaml)
//  3. Defaults
//
// Credentials are resolved once at process start and the resulting
// Config is immutable. Sensitive fields (password) are never logged.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/datapeak/snowmcp/internal/snowflake"
)

// DefaultServiceConfigPath is where the Cortex service registry is
// looked up when no explicit path is configured.
const DefaultServiceConfigPath = "service_config.yaml"

// Config stores the resolved application configuration.
type Config struct {
	// Snowflake connection parameters.
	Account       string `mapstructure:"account"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	Schema        string `mapstructure:"schema"`
	Warehouse     string `mapstructure:"warehouse"`
	Role          string `mapstructure:"role"`
	Region        string `mapstructure:"region"`
	Authenticator string `mapstructure:"authenticator"`
	KeepAlive     bool   `mapstructure:"client_session_keep_alive"`

	// ServiceConfigPath locates the Cortex service registry file.
	ServiceConfigPath string `mapstructure:"service_config_path"`

	// Logging.
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`
}

// Load reads configuration from defaults, an optional config file and
// the environment. Connection parameters are NOT validated here: the
// server should start even with incomplete credentials and report the
// problem per call (see snowflake.Config.Validate).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".snowmcp"))
	}
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything can come from env.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("authenticator", "snowflake")
	v.SetDefault("client_session_keep_alive", true)
	v.SetDefault("service_config_path", DefaultServiceConfigPath)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

func bindEnv(v *viper.Viper) {
	// Explicit bindings keep the SNOWFLAKE_* names the Snowflake
	// tooling ecosystem uses.
	_ = v.BindEnv("account", "SNOWFLAKE_ACCOUNT")
	_ = v.BindEnv("user", "SNOWFLAKE_USER")
	_ = v.BindEnv("password", "SNOWFLAKE_PASSWORD")
	_ = v.BindEnv("database", "SNOWFLAKE_DATABASE")
	_ = v.BindEnv("schema", "SNOWFLAKE_SCHEMA")
	_ = v.BindEnv("warehouse", "SNOWFLAKE_WAREHOUSE")
	_ = v.BindEnv("role", "SNOWFLAKE_ROLE")
	_ = v.BindEnv("region", "SNOWFLAKE_REGION")
	_ = v.BindEnv("authenticator", "SNOWFLAKE_AUTHENTICATOR")
	_ = v.BindEnv("client_session_keep_alive", "SNOWFLAKE_CLIENT_SESSION_KEEP_ALIVE")
	_ = v.BindEnv("service_config_path", "SNOWMCP_SERVICE_CONFIG")
	_ = v.BindEnv("log_level", "SNOWMCP_LOG_LEVEL")
	_ = v.BindEnv("log_json", "SNOWMCP_LOG_JSON")
}

// ClientConfig maps the application configuration to the warehouse
// client's connection parameters.
func (c *Config) ClientConfig() snowflake.Config {
	return snowflake.Config{
		Account:       c.Account,
		User:          c.User,
		Password:      c.Password,
		Database:      c.Database,
		Schema:        c.Schema,
		Warehouse:     c.Warehouse,
		Role:          c.Role,
		Region:        c.Region,
		Authenticator: c.Authenticator,
		KeepAlive:     c.KeepAlive,
	}
}
