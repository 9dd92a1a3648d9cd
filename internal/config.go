package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Security      SecurityConfig      `mapstructure:"security"`
	Admin         AdminConfig         `mapstructure:"admin"`
	Mail          MailConfig          `mapstructure:"mail"`
	App           AppConfig           `mapstructure:"app"`
	PasswordReset PasswordResetConfig `mapstructure:"password_reset"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	// requests per AuthThrottleWindow per client IP on the public auth endpoints
	AuthThrottleRate   int           `mapstructure:"auth_throttle_rate"`
	AuthThrottleWindow time.Duration `mapstructure:"auth_throttle_window"`
	// only enable behind a proxy that overwrites X-Forwarded-For; otherwise clients pick their own address
	TrustProxyHeaders bool   `mapstructure:"trust_proxy_headers"`
	OpenAPIPath       string `mapstructure:"openapi_path"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SecurityConfig struct {
	SessionSecret string        `mapstructure:"session_secret"`
	SessionMaxAge time.Duration `mapstructure:"session_max_age"`
	BCryptCost    int           `mapstructure:"bcrypt_cost"`
}

type AdminConfig struct {
	Emails []string `mapstructure:"emails"`
}

type MailConfig struct {
	ProviderURL string        `mapstructure:"provider_url"`
	APIKey      string        `mapstructure:"api_key"`
	From        string        `mapstructure:"from"`
	AppName     string        `mapstructure:"app_name"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Workers     int           `mapstructure:"workers"`
	QueueSize   int           `mapstructure:"queue_size"`
}

type AppConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Timezone string `mapstructure:"timezone"`
}

type PasswordResetConfig struct {
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	Window      time.Duration `mapstructure:"window"`
	MaxRequests int           `mapstructure:"max_requests"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfigFromEnv builds the configuration from plain environment variables (container deployments).
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:               getEnvAsInt("PORT", 8080),
			AllowedOrigins:     getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout:  getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:        getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:        getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:       getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			AuthThrottleRate:   getEnvAsInt("AUTH_THROTTLE_RATE", 20),
			AuthThrottleWindow: getEnvAsDuration("AUTH_THROTTLE_WINDOW", time.Minute),
			TrustProxyHeaders:  getEnvAsBool("TRUST_PROXY_HEADERS", false),
			OpenAPIPath:        getEnv("OPENAPI_PATH", "./api/openapi.yml"),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			SessionSecret: getEnv("SESSION_SECRET", ""),
			SessionMaxAge: getEnvAsDuration("SESSION_MAX_AGE", 30*24*time.Hour),
			BCryptCost:    getEnvAsInt("BCRYPT_COST", 10),
		},
		Admin: AdminConfig{
			Emails: splitList(getEnv("ADMIN_EMAILS", "")),
		},
		Mail: MailConfig{
			ProviderURL: getEnv("MAIL_PROVIDER_URL", "https://api.resend.com"),
			APIKey:      getEnv("MAIL_API_KEY", ""),
			From:        getEnv("MAIL_FROM", "DSA Tracker <onboarding@resend.dev>"),
			AppName:     getEnv("APP_NAME", "DSA Tracker"),
			Timeout:     getEnvAsDuration("MAIL_TIMEOUT", 10*time.Second),
			Workers:     getEnvAsInt("MAIL_WORKERS", 2),
			QueueSize:   getEnvAsInt("MAIL_QUEUE_SIZE", 100),
		},
		App: AppConfig{
			BaseURL:  getEnv("APP_URL", "http://localhost:3000"),
			Timezone: getEnv("APP_TIMEZONE", "Asia/Kolkata"),
		},
		PasswordReset: PasswordResetConfig{
			TokenTTL:    getEnvAsDuration("RESET_TOKEN_TTL", time.Hour),
			Window:      getEnvAsDuration("RESET_WINDOW", 24*time.Hour),
			MaxRequests: getEnvAsInt("RESET_MAX_REQUESTS", 3),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	return cfg
}

// ApplyDefaults fills zero values left by a partial config file.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.AuthThrottleRate == 0 {
		c.Server.AuthThrottleRate = 20
	}
	if c.Server.AuthThrottleWindow == 0 {
		c.Server.AuthThrottleWindow = time.Minute
	}
	if c.Server.OpenAPIPath == "" {
		c.Server.OpenAPIPath = "./api/openapi.yml"
	}
	if c.Security.SessionMaxAge == 0 {
		c.Security.SessionMaxAge = 30 * 24 * time.Hour
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.Mail.AppName == "" {
		c.Mail.AppName = "DSA Tracker"
	}
	if c.Mail.Timeout == 0 {
		c.Mail.Timeout = 10 * time.Second
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Asia/Kolkata"
	}
	if c.PasswordReset.TokenTTL == 0 {
		c.PasswordReset.TokenTTL = time.Hour
	}
	if c.PasswordReset.Window == 0 {
		c.PasswordReset.Window = 24 * time.Hour
	}
	if c.PasswordReset.MaxRequests == 0 {
		c.PasswordReset.MaxRequests = 3
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.App.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("app config: %v", err))
	}

	if err := c.PasswordReset.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("password reset config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	if c.AuthThrottleRate <= 0 {
		return errors.New("auth_throttle_rate must be positive")
	}
	if c.AuthThrottleWindow <= 0 {
		return errors.New("auth_throttle_window must be positive")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 4 and 15")
	}
	return nil
}

func (c *AppConfig) Validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %s: %w", c.Timezone, err)
	}
	return nil
}

func (c *PasswordResetConfig) Validate() error {
	if c.MaxRequests < 1 {
		return errors.New("max_requests must be at least 1")
	}
	if c.TokenTTL <= 0 || c.Window <= 0 {
		return errors.New("token_ttl and window must be positive")
	}
	return nil
}

// IsAdminEmail reports whether email belongs to the configured administrator list.
func (c *AdminConfig) IsAdminEmail(email string) bool {
	for _, e := range c.Emails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
