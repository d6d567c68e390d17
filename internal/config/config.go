package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	State        StateConfig        `mapstructure:"state"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Cookie       CookieConfig       `mapstructure:"cookie"`
	OTP          OTPConfig          `mapstructure:"otp"`
	Registration RegistrationConfig `mapstructure:"registration"`
	Cache        CacheConfig        `mapstructure:"cache"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Log          LogConfig          `mapstructure:"log"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // "development" | "production"
}

// IsDevelopment reports whether the service runs in local development mode.
// Cookie security flags are relaxed only in this mode.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "" || a.Env == "development"
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type StateConfig struct {
	Backend string `mapstructure:"backend"` // "redis" | "memory"
}

type JWTConfig struct {
	SigningKey      string        `mapstructure:"signing_key"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type CookieConfig struct {
	Domain string `mapstructure:"domain"`
	Path   string `mapstructure:"path"`
}

type OTPConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	ResendLimit  int           `mapstructure:"resend_limit"`
	ResendWindow time.Duration `mapstructure:"resend_window"`
	VerifyLimit  int           `mapstructure:"verify_limit"`
}

type RegistrationConfig struct {
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
}

type CacheConfig struct {
	ShortTTL  time.Duration `mapstructure:"short_ttl"`
	MediumTTL time.Duration `mapstructure:"medium_ttl"`
	LongTTL   time.Duration `mapstructure:"long_ttl"`
}

type RateLimitConfig struct {
	AuthRPS       float64       `mapstructure:"auth_rps"`
	AuthBurst     int           `mapstructure:"auth_burst"`
	EnquiryLimit  int           `mapstructure:"enquiry_limit"`
	EnquiryWindow time.Duration `mapstructure:"enquiry_window"`
}

type SMTPConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	FromEmail     string `mapstructure:"from_email"`
	FromName      string `mapstructure:"from_name"`
	UseSTARTTLS   bool   `mapstructure:"use_starttls"`
	SkipTLSVerify bool   `mapstructure:"skip_tls_verify"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	ExposedHeaders   []string      `mapstructure:"exposed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// AllowsAnyOrigin reports whether the origin list holds the "*" wildcard.
func (c CORSConfig) AllowsAnyOrigin() bool {
	return slices.Contains(c.AllowedOrigins, "*")
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml, overlays environment variables, and returns Config.
// A .env file next to the binary is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	// Environment variable override: DATABASE_REDIS_HOST -> database.redis.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "coursehub")
	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.graceful_shutdown_timeout", 15*time.Second)
	v.SetDefault("state.backend", "redis")
	v.SetDefault("jwt.issuer", "coursehub")
	v.SetDefault("jwt.access_token_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("cookie.path", "/")
	v.SetDefault("otp.ttl", 300*time.Second)
	v.SetDefault("otp.resend_limit", 3)
	v.SetDefault("otp.resend_window", time.Hour)
	v.SetDefault("otp.verify_limit", 5)
	v.SetDefault("registration.pending_ttl", 30*time.Minute)
	v.SetDefault("cache.short_ttl", 60*time.Second)
	v.SetDefault("cache.medium_ttl", 300*time.Second)
	v.SetDefault("cache.long_ttl", time.Hour)
	v.SetDefault("rate_limit.auth_rps", 5.0)
	v.SetDefault("rate_limit.auth_burst", 10)
	v.SetDefault("rate_limit.enquiry_limit", 5)
	v.SetDefault("rate_limit.enquiry_window", time.Hour)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})
	v.SetDefault("cors.exposed_headers", []string{"X-Cache"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 12*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate rejects configurations the service cannot run safely with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.SigningKey) == "" {
		errs = append(errs, errors.New("jwt.signing_key is required"))
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("jwt token ttls must be positive"))
	}
	if c.OTP.TTL <= 0 {
		errs = append(errs, errors.New("otp.ttl must be positive"))
	}
	if c.OTP.ResendLimit <= 0 || c.OTP.VerifyLimit <= 0 {
		errs = append(errs, errors.New("otp limits must be positive"))
	}
	if c.CORS.AllowCredentials && c.CORS.AllowsAnyOrigin() {
		errs = append(errs, errors.New("cors.allowed_origins cannot contain \"*\" when credentials are allowed"))
	}
	switch c.State.Backend {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown state backend %q", c.State.Backend))
	}
	return errors.Join(errs...)
}
