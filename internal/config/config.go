package config

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultDBURI = "mongodb://localhost:27017/cohort-assignment"
)

var supportedDBSchemes = []string{"mongodb", "mongodb+srv", "postgres", "postgresql", "sqlite", "redis", "rediss"}

type (
	Config struct {
		Host          string `mapstructure:"HOST"`
		Port          string `mapstructure:"PORT"`
		GRPCPort      string `mapstructure:"GRPC_PORT"`
		DBURI         string `mapstructure:"DB_URI"`
		Env           string `mapstructure:"ENV"`
		LogLevel      string `mapstructure:"LOG_LEVEL"`
		DefaultUserID string `mapstructure:"DEFAULT_USER_ID"`
	}
)

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKMARKER")

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "1323")
	v.SetDefault("GRPC_PORT", "9000")
	v.SetDefault("DB_URI", DefaultDBURI)
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEFAULT_USER_ID", "user-1")

	envs := []string{"HOST", "PORT", "GRPC_PORT", "ENV", "LOG_LEVEL", "DEFAULT_USER_ID"}
	for _, key := range envs {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	// MONGODB_URI is read when BOOKMARKER_DB_URI is unset.
	if err := v.BindEnv("DB_URI", "BOOKMARKER_DB_URI", "MONGODB_URI"); err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Debug reports whether lower-level error details may be exposed to clients.
func (c *Config) Debug() bool {
	return c.Env != EnvProduction
}

func (c *Config) HTTPAddr() string {
	return c.Host + ":" + c.Port
}

func (c *Config) GRPCAddr() string {
	return c.Host + ":" + c.GRPCPort
}

func validate(cfg *Config) error {
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return errors.New(fmt.Sprintf("environment is invalid: %s", cfg.Env))
	}
	if _, err := zap.ParseAtomicLevel(cfg.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	if cfg.DefaultUserID == "" {
		return errors.New("default user id is empty")
	}

	u, err := url.Parse(cfg.DBURI)
	if err != nil {
		return errors.Wrap(err, "parse db uri")
	}
	for _, scheme := range supportedDBSchemes {
		if u.Scheme == scheme {
			return nil
		}
	}
	return errors.New(fmt.Sprintf("DB URI scheme is unsupported: %q", u.Scheme))
}
