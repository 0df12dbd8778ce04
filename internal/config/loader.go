package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from a yaml file and AUTH_-prefixed environment
// variables. CONFIG_PATH overrides the file lookup entirely.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToLower(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/auth-service")
	}

	v.SetEnvPrefix("AUTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine, env vars can carry the whole config.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be configured")
	}
	if cfg.JWT.Issuer == "" || cfg.JWT.Audience == "" {
		return errors.New("jwt.issuer and jwt.audience must be configured")
	}
	if cfg.JWT.AccessTokenTTL <= 0 || cfg.JWT.RefreshTokenTTL <= 0 {
		return errors.New("access and refresh token TTLs must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Secrets have no usable default; registering the keys lets them arrive
	// through AUTH_-prefixed environment variables alone.
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")
	v.SetDefault("jwt.access_token_ttl", "15m")
	v.SetDefault("jwt.refresh_token_ttl", "168h") // 7 days
	v.SetDefault("jwt.refresh_token_byte_length", 64)

	v.SetDefault("cookie.domain", "")
	v.SetDefault("cookie.secure", true)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("security.password_hash.memory", 65536)
	v.SetDefault("security.password_hash.iterations", 3)
	v.SetDefault("security.password_hash.parallelism", 2)
	v.SetDefault("security.password_hash.salt_length", 16)
	v.SetDefault("security.password_hash.key_length", 32)

	v.SetDefault("security.rate_limiting.enabled", false)
	v.SetDefault("security.rate_limiting.login_ip.enabled", true)
	v.SetDefault("security.rate_limiting.register_ip.enabled", true)
	v.SetDefault("security.rate_limiting.login_ip.limit", 10)
	v.SetDefault("security.rate_limiting.login_ip.window", "1m")
	v.SetDefault("security.rate_limiting.register_ip.limit", 5)
	v.SetDefault("security.rate_limiting.register_ip.window", "1m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("initial_admin.enabled", false)
	v.SetDefault("initial_admin.email", "")
	v.SetDefault("initial_admin.password", "")
}
