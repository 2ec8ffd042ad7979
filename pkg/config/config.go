package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Escalation  EscalationConfig
	Attachments AttachmentsConfig
	Reports     ReportsConfig
	Dispatch    DispatchConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EscalationConfig holds the thresholds the policy engine evaluates against
// and the interval the scheduler sweeps on. Passed explicitly at construction,
// never read from ambient state.
type EscalationConfig struct {
	Enabled                     bool          `json:"enabled"`
	UnassignedThresholdHours    int           `json:"unassigned_threshold_hours"`
	OverdueThresholdHours       int           `json:"overdue_threshold_hours"`
	StuckThresholdHours         int           `json:"stuck_threshold_hours"`
	HighUrgencyThresholdHours   int           `json:"high_urgency_threshold_hours"`
	MediumUrgencyThresholdHours int           `json:"medium_urgency_threshold_hours"`
	LowUrgencyThresholdHours    int           `json:"low_urgency_threshold_hours"`
	SchedulingInterval          time.Duration `json:"scheduling_interval"`
	StatsCacheTTL               time.Duration `json:"-"`
}

// AttachmentsConfig controls complaint attachment storage and validation.
type AttachmentsConfig struct {
	StorageDir       string
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// ReportsConfig tunes dashboard statistics and export behaviour.
type ReportsConfig struct {
	CacheTTL time.Duration
}

// DispatchConfig configures the notification dispatch queue.
type DispatchConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Escalation = EscalationConfig{
		Enabled:                     v.GetBool("ESCALATION_ENABLED"),
		UnassignedThresholdHours:    v.GetInt("ESCALATION_UNASSIGNED_THRESHOLD_HOURS"),
		OverdueThresholdHours:       v.GetInt("ESCALATION_OVERDUE_THRESHOLD_HOURS"),
		StuckThresholdHours:         v.GetInt("ESCALATION_STUCK_THRESHOLD_HOURS"),
		HighUrgencyThresholdHours:   v.GetInt("ESCALATION_HIGH_URGENCY_THRESHOLD_HOURS"),
		MediumUrgencyThresholdHours: v.GetInt("ESCALATION_MEDIUM_URGENCY_THRESHOLD_HOURS"),
		LowUrgencyThresholdHours:    v.GetInt("ESCALATION_LOW_URGENCY_THRESHOLD_HOURS"),
		SchedulingInterval:          parseDuration(v.GetString("ESCALATION_SCHEDULING_INTERVAL"), time.Hour),
		StatsCacheTTL:               parseDuration(v.GetString("ESCALATION_STATS_CACHE_TTL"), time.Minute),
	}

	maxAttachmentSize := v.GetInt64("ATTACHMENTS_MAX_FILE_SIZE")
	if maxAttachmentSize <= 0 {
		maxAttachmentSize = 10 * 1024 * 1024
	}
	cfg.Attachments = AttachmentsConfig{
		StorageDir:       v.GetString("ATTACHMENTS_STORAGE_DIR"),
		MaxFileSizeBytes: maxAttachmentSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("ATTACHMENTS_ALLOWED_MIME_TYPES")),
	}

	cfg.Reports = ReportsConfig{
		CacheTTL: parseDuration(v.GetString("REPORTS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Dispatch = DispatchConfig{
		Workers:    v.GetInt("DISPATCH_WORKERS"),
		BufferSize: v.GetInt("DISPATCH_BUFFER_SIZE"),
		MaxRetries: v.GetInt("DISPATCH_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("DISPATCH_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "resolveit")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "resolveit")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ESCALATION_ENABLED", true)
	v.SetDefault("ESCALATION_UNASSIGNED_THRESHOLD_HOURS", 48)
	v.SetDefault("ESCALATION_OVERDUE_THRESHOLD_HOURS", 24)
	v.SetDefault("ESCALATION_STUCK_THRESHOLD_HOURS", 72)
	v.SetDefault("ESCALATION_HIGH_URGENCY_THRESHOLD_HOURS", 24)
	v.SetDefault("ESCALATION_MEDIUM_URGENCY_THRESHOLD_HOURS", 72)
	v.SetDefault("ESCALATION_LOW_URGENCY_THRESHOLD_HOURS", 120)
	v.SetDefault("ESCALATION_SCHEDULING_INTERVAL", "1h")
	v.SetDefault("ESCALATION_STATS_CACHE_TTL", "1m")

	v.SetDefault("ATTACHMENTS_STORAGE_DIR", "./uploads")
	v.SetDefault("ATTACHMENTS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("ATTACHMENTS_ALLOWED_MIME_TYPES", "image/png,image/jpeg,application/pdf")

	v.SetDefault("REPORTS_CACHE_TTL", "5m")

	v.SetDefault("DISPATCH_WORKERS", 2)
	v.SetDefault("DISPATCH_BUFFER_SIZE", 64)
	v.SetDefault("DISPATCH_MAX_RETRIES", 3)
	v.SetDefault("DISPATCH_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
