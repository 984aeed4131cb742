package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	// HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Database
	DBUser     string
	DBPassword string
	DBServer   string
	DBPort     string
	DBName     string
	DBSSLMode  string

	DBMaxConns        int
	DBMinConns        int
	DBMaxConnIdleTime time.Duration
	DBConnectTimeout  time.Duration
	DBAutoMigrate     bool

	// Security
	BcryptCost int

	// SPA
	StaticDir string

	// CORS
	CORSAllowedOrigins []string

	// Rate Limiting (POST /api/users)
	RLEnabled        bool
	RLRegisterLimit  int
	RLRegisterWindow time.Duration

	// Optional infrastructure
	RedisURL       string
	RabbitURL      string
	RabbitExchange string

	MetricsEnabled bool

	LogLevel  string
	LogFormat string
}

// Connections to the store are always encrypted.
var encryptedSSLModes = map[string]bool{
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = ":" + getEnv("PORT", "3001")

	cfg.DBUser = getEnv("DB_USER", "")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBServer = getEnv("DB_SERVER", "")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBName = getEnv("DB_NAME", "")
	cfg.DBSSLMode = strings.ToLower(getEnv("DB_SSLMODE", "require"))
	cfg.DBAutoMigrate = getBool("DB_AUTO_MIGRATE", true)

	cfg.StaticDir = getEnv("STATIC_DIR", "dist")
	cfg.CORSAllowedOrigins = getList("CORS_ALLOWED_ORIGINS", []string{"*"})

	cfg.RLEnabled = getBool("RL_ENABLED", true)

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "accounts.events")

	cfg.MetricsEnabled = getBool("METRICS_ENABLED", true)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	if cfg.DBMaxConns, err = getIntEnv("DB_MAX_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.DBMinConns, err = getIntEnv("DB_MIN_CONNS", 0); err != nil {
		return nil, err
	}
	if cfg.DBMaxConnIdleTime, err = getDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.DBConnectTimeout, err = getDuration("DB_CONNECT_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getIntEnv("BCRYPT_COST", 10); err != nil {
		return nil, err
	}
	if cfg.RLRegisterLimit, err = getIntEnv("RL_REGISTER_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.RLRegisterWindow, err = getDuration("RL_REGISTER_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// DB_PASSWORD may legitimately be empty (trust / cert auth).
	for _, req := range []struct{ key, val string }{
		{"DB_USER", c.DBUser},
		{"DB_SERVER", c.DBServer},
		{"DB_NAME", c.DBName},
	} {
		if req.val == "" {
			return fmt.Errorf("missing required env var: %s", req.key)
		}
	}

	if !encryptedSSLModes[c.DBSSLMode] {
		return fmt.Errorf("DB_SSLMODE must be one of require, verify-ca, verify-full (got %q)", c.DBSSLMode)
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.RLEnabled && c.RLRegisterLimit < 1 {
		return fmt.Errorf("RL_REGISTER_LIMIT must be >= 1 when RL_ENABLED")
	}
	return nil
}

// DatabaseURL builds the pgx connection string from the DB_* variables.
func (c *Config) DatabaseURL() string {
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	if secs := int(c.DBConnectTimeout.Seconds()); secs > 0 {
		q.Set("connect_timeout", strconv.Itoa(secs))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBServer, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getIntEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return i, nil
}

func getBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}

func getList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
