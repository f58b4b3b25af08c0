package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Storage settings
	DBDriver string `mapstructure:"db_driver"` // "sqlite" or "postgres"
	DBDSN    string `mapstructure:"db_dsn"`

	// Optional API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Optional SSL settings
	SSLCert string `mapstructure:"ssl_cert"`
	SSLKey  string `mapstructure:"ssl_key"`

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional logging settings
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "text" or "json"

	// Optional auth settings
	JWTSecretKey string `mapstructure:"jwt_secret_key"`
	JWTAlgorithm string `mapstructure:"jwt_algorithm"`
	RequireAuth  bool   `mapstructure:"require_auth"`

	// Insert the default clients when the store is empty
	SeedOnStart bool `mapstructure:"seed_on_start"`

	ConfigPath string
}

const (
	EnvPrefix           = "CLIENTDESK"
	DefaultConfigPath   = "/etc/clientdesk/config.yml"
	DefaultDBDriver     = "sqlite"
	DefaultDBDSN        = "clientdesk.sqlite3"
	DefaultAPIHost      = "0.0.0.0"
	DefaultAPIPort      = 3000
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultJWTAlgorithm = "HS256"
)

// Load reads configuration from configPath, a .env file in the working
// directory and CLIENTDESK_* environment variables, in increasing order of
// precedence. A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}

	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	v.SetDefault("db_driver", DefaultDBDriver)
	v.SetDefault("db_dsn", DefaultDBDSN)
	v.SetDefault("api_host", DefaultAPIHost)
	v.SetDefault("api_port", DefaultAPIPort)
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("jwt_secret_key", "")
	v.SetDefault("jwt_algorithm", DefaultJWTAlgorithm)
	v.SetDefault("require_auth", false)
	v.SetDefault("seed_on_start", false)

	// Allow environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigPath = configPath

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func (c *Config) Validate() error {
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("db_driver must be 'sqlite' or 'postgres'")
	}

	if c.DBDSN == "" {
		return fmt.Errorf("db_dsn is required")
	}

	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be between 1 and 65535")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be 'text' or 'json'")
	}

	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("jwt_algorithm must be HS256, HS384 or HS512")
	}

	if c.RequireAuth && c.JWTSecretKey == "" {
		return fmt.Errorf("jwt_secret_key is required when require_auth is enabled")
	}

	// Validate SSL config if provided
	if c.SSLCert != "" || c.SSLKey != "" {
		if c.SSLCert == "" || c.SSLKey == "" {
			return fmt.Errorf("both ssl_cert and ssl_key must be provided")
		}
		if _, err := os.Stat(c.SSLCert); os.IsNotExist(err) {
			return fmt.Errorf("ssl_cert file does not exist: %s", c.SSLCert)
		}
		if _, err := os.Stat(c.SSLKey); os.IsNotExist(err) {
			return fmt.Errorf("ssl_key file does not exist: %s", c.SSLKey)
		}
	}

	return nil
}

// AuthEnabled reports whether the token endpoints can issue JWTs
func (c *Config) AuthEnabled() bool {
	return c.JWTSecretKey != ""
}

func (c *Config) IsDevMode() bool {
	return os.Getenv("CLIENTDESK_DEV_MODE") == "1"
}
