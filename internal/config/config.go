// Package config loads the service configuration from an optional YAML file
// and PAYBATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PAYBATCH_DATABASE_DRIVER.
const EnvPrefix = "PAYBATCH"

// Configuration is the root configuration.
type Configuration struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Logging  LoggingConfig  `mapstructure:"logging" validate:"required"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	DSN      string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
	MaxConns int32  `mapstructure:"max_conns" validate:"gte=1"`
	Migrate  bool   `mapstructure:"migrate"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	Issuer         string        `mapstructure:"issuer" validate:"required"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl" validate:"gt=0"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.migrate", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "paybatch")
	v.SetDefault("auth.access_token_ttl", 12*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

// Load reads configuration. configFile may be empty, in which case
// config.yaml is looked up in the working directory and ./config.
// A missing file is not an error; every key has a default or an env override.
func Load(configFile string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
