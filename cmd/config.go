package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	dispatchhttp "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/geo"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/queue"
	"dispatch/internal/adapters/out/ratelimit"
	"dispatch/internal/adapters/out/remote"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable in debug mode.
const DefaultJWTSecret = "change-me-in-production"

type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Geo        GeoConfig        `mapstructure:"geo"`
	OTP        OTPConfig        `mapstructure:"otp"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
	Commission CommissionConfig `mapstructure:"commission"`
	Services   ServicesConfig   `mapstructure:"services"`
}

type HTTPConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	BodyLimit       string        `mapstructure:"body_limit"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c HTTPConfig) ToServer() dispatchhttp.Config {
	return dispatchhttp.Config{BodyLimit: c.BodyLimit, RequestTimeout: c.RequestTimeout}
}

// LogConfig selects console output in debug mode and rotated JSON files
// otherwise.
type LogConfig struct {
	Mode       string `mapstructure:"mode"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (c LogConfig) Debug() bool {
	return strings.EqualFold(strings.TrimSpace(c.Mode), "debug")
}

func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogSQL          bool          `mapstructure:"log_sql"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

func (c DatabaseConfig) ToPostgres() postgres.Config {
	return postgres.Config{
		Driver:          c.Driver,
		DSN:             c.DSN,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		LogSQL:          c.LogSQL,
	}
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

func (c JWTConfig) ToAuth() dispatchhttp.AuthConfig {
	return dispatchhttp.AuthConfig{Secret: c.Secret, Issuer: c.Issuer, TTL: c.TTL}
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	if strings.TrimSpace(c.Host) == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// QueueConfig turns on the asynq outbox. Without it notifications are
// dropped and settlement runs inline.
type QueueConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Concurrency int           `mapstructure:"concurrency"`
	MaxRetry    int           `mapstructure:"max_retry"`
	Retention   time.Duration `mapstructure:"retention"`
}

func (c QueueConfig) ToQueue(r RedisConfig) queue.Config {
	return queue.Config{
		Enabled:     c.Enabled,
		Host:        r.Host,
		Port:        r.Port,
		Password:    r.Password,
		DB:          r.DB,
		Concurrency: c.Concurrency,
		MaxRetry:    c.MaxRetry,
		Retention:   c.Retention,
	}
}

type MatchingConfig struct {
	RadiusKm         float64 `mapstructure:"radius_km"`
	Limit            int     `mapstructure:"limit"`
	DefaultRating    float64 `mapstructure:"default_rating"`
	MinutesPerKm     float64 `mapstructure:"minutes_per_km"`
	WeightDistance   float64 `mapstructure:"weight_distance"`
	WeightRating     float64 `mapstructure:"weight_rating"`
	WeightCompletion float64 `mapstructure:"weight_completion"`
	WeightActivity   float64 `mapstructure:"weight_activity"`
}

func (c MatchingConfig) ToServices() services.MatchingConfig {
	return services.MatchingConfig{
		RadiusKm:      c.RadiusKm,
		Limit:         c.Limit,
		DefaultRating: c.DefaultRating,
		MinutesPerKm:  c.MinutesPerKm,
		Weights: services.ScoreWeights{
			Distance:   c.WeightDistance,
			Rating:     c.WeightRating,
			Completion: c.WeightCompletion,
			Activity:   c.WeightActivity,
		},
	}
}

type GeoConfig struct {
	AverageSpeedKmh float64 `mapstructure:"average_speed_kmh"`
	RoadFactor      float64 `mapstructure:"road_factor"`
	HandlingMinutes int     `mapstructure:"handling_minutes"`
}

func (c GeoConfig) ToEstimator() geo.Config {
	return geo.Config{
		AverageSpeedKmh: c.AverageSpeedKmh,
		RoadFactor:      c.RoadFactor,
		HandlingMinutes: c.HandlingMinutes,
	}
}

// OTPConfig holds the code policy and the per-courier request limit on the
// OTP endpoints. The limit needs Redis.
type OTPConfig struct {
	Validity         time.Duration `mapstructure:"validity"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	ResendCooldown   time.Duration `mapstructure:"resend_cooldown"`
	Digits           int           `mapstructure:"digits"`
	RateLimitEnabled bool          `mapstructure:"rate_limit_enabled"`
	RateWindow       time.Duration `mapstructure:"rate_window"`
	RateMaxRequests  int           `mapstructure:"rate_max_requests"`
}

func (c OTPConfig) Policy() order.OTPPolicy {
	return order.OTPPolicy{
		Validity:       c.Validity,
		MaxAttempts:    c.MaxAttempts,
		ResendCooldown: c.ResendCooldown,
		Digits:         c.Digits,
	}
}

func (c OTPConfig) RateRule() ratelimit.Rule {
	return ratelimit.Rule{Prefix: "dispatch:rl", Window: c.RateWindow, MaxRequests: c.RateMaxRequests}
}

type JobsConfig struct {
	ExpressSchedule    string        `mapstructure:"express_schedule"`
	ExpressBatch       int           `mapstructure:"express_batch"`
	PresenceSchedule   string        `mapstructure:"presence_schedule"`
	PresenceMaxSilence time.Duration `mapstructure:"presence_max_silence"`
	PresenceBatch      int           `mapstructure:"presence_batch"`
}

// CommissionConfig is used while the commission service is unreachable or
// not configured.
type CommissionConfig struct {
	FallbackRate string        `mapstructure:"fallback_rate"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

func (c CommissionConfig) Fallback() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.FallbackRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("commission fallback rate %q: %w", c.FallbackRate, err)
	}
	return rate, nil
}

type ServiceConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (c ServiceConfig) ToRemote() remote.Config {
	return remote.Config{BaseURL: c.URL, APIKey: c.APIKey, Timeout: c.Timeout}
}

// ServicesConfig locates the collaborating services. Ledger and loyalty are
// required; ratings, commission and the message gateway are optional.
type ServicesConfig struct {
	Ledger     ServiceConfig `mapstructure:"ledger"`
	Loyalty    ServiceConfig `mapstructure:"loyalty"`
	Ratings    ServiceConfig `mapstructure:"ratings"`
	Commission ServiceConfig `mapstructure:"commission"`
	Gateway    ServiceConfig `mapstructure:"gateway"`
}

// LoadConfig reads .env when present, then an optional config.yaml, then
// environment variables. Keys map to variables by upper-casing and
// replacing dots, so services.ledger.url is SERVICES_LEDGER_URL.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./etc")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings that would only fail later at runtime.
func (c Config) Validate() error {
	var problems []error
	if strings.TrimSpace(c.HTTP.Port) == "" {
		problems = append(problems, errors.New("http.port is required"))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		problems = append(problems, errors.New("database.dsn is required"))
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		problems = append(problems, errors.New("jwt.secret is required"))
	}
	if c.JWT.Secret == DefaultJWTSecret && !c.Log.Debug() {
		problems = append(problems, errors.New("jwt.secret must be changed outside debug mode"))
	}
	if (c.Queue.Enabled || c.OTP.RateLimitEnabled) && c.Redis.Addr() == "" {
		problems = append(problems, errors.New("redis.host is required by the queue and the otp rate limit"))
	}
	if _, err := c.Commission.Fallback(); err != nil {
		problems = append(problems, err)
	}
	if err := c.Matching.ToServices().Validate(); err != nil {
		problems = append(problems, err)
	}
	return errors.Join(problems...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.body_limit", "1M")
	v.SetDefault("http.request_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "dispatch.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.log_sql", false)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("jwt.secret", DefaultJWTSecret)
	v.SetDefault("jwt.issuer", "dispatch")
	v.SetDefault("jwt.ttl", 12*time.Hour)

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.max_retry", 8)
	v.SetDefault("queue.retention", 24*time.Hour)

	matching := services.DefaultMatchingConfig()
	v.SetDefault("matching.radius_km", matching.RadiusKm)
	v.SetDefault("matching.limit", matching.Limit)
	v.SetDefault("matching.default_rating", matching.DefaultRating)
	v.SetDefault("matching.minutes_per_km", matching.MinutesPerKm)
	v.SetDefault("matching.weight_distance", matching.Weights.Distance)
	v.SetDefault("matching.weight_rating", matching.Weights.Rating)
	v.SetDefault("matching.weight_completion", matching.Weights.Completion)
	v.SetDefault("matching.weight_activity", matching.Weights.Activity)

	estimator := geo.DefaultConfig()
	v.SetDefault("geo.average_speed_kmh", estimator.AverageSpeedKmh)
	v.SetDefault("geo.road_factor", estimator.RoadFactor)
	v.SetDefault("geo.handling_minutes", estimator.HandlingMinutes)

	policy := order.DefaultOTPPolicy()
	v.SetDefault("otp.validity", policy.Validity)
	v.SetDefault("otp.max_attempts", policy.MaxAttempts)
	v.SetDefault("otp.resend_cooldown", policy.ResendCooldown)
	v.SetDefault("otp.digits", policy.Digits)
	v.SetDefault("otp.rate_limit_enabled", false)
	v.SetDefault("otp.rate_window", time.Minute)
	v.SetDefault("otp.rate_max_requests", 5)

	v.SetDefault("jobs.express_schedule", "@every 30s")
	v.SetDefault("jobs.express_batch", 20)
	v.SetDefault("jobs.presence_schedule", "@every 1m")
	v.SetDefault("jobs.presence_max_silence", 10*time.Minute)
	v.SetDefault("jobs.presence_batch", 100)

	v.SetDefault("commission.fallback_rate", "0.15")
	v.SetDefault("commission.cache_ttl", 5*time.Minute)

	for _, name := range []string{"ledger", "loyalty", "ratings", "commission", "gateway"} {
		v.SetDefault("services."+name+".url", "")
		v.SetDefault("services."+name+".api_key", "")
		v.SetDefault("services."+name+".timeout", 10*time.Second)
	}
}
