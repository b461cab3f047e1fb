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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Workload  WorkloadConfig
	Exports   ExportsConfig
	Calendar  CalendarExportConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes slot placement and the batch job queue.
type SchedulerConfig struct {
	DefaultTeachingWeeks int
	BatchTimeout         time.Duration
	JobWorkers           int
	JobRetries           int
	StrictClassification bool
}

// WorkloadConfig governs workload proration and report caching.
type WorkloadConfig struct {
	AcademicYearMonths int
	CacheEnabled       bool
	CacheTTL           time.Duration
}

// ExportsConfig configures stored export files and their signed download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
}

// CalendarExportConfig maps abstract periods to wall-clock times for .ics feeds.
type CalendarExportConfig struct {
	Timezone       string
	MorningStart   time.Duration
	AfternoonStart time.Duration
	PeriodLength   time.Duration
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		PoolSize:    positiveInt(v.GetInt("REDIS_POOL_SIZE"), 10),
		DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 5*time.Second),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		DefaultTeachingWeeks: positiveInt(v.GetInt("SCHEDULER_DEFAULT_TEACHING_WEEKS"), 15),
		BatchTimeout:         parseDuration(v.GetString("SCHEDULER_BATCH_TIMEOUT"), 2*time.Minute),
		JobWorkers:           positiveInt(v.GetInt("SCHEDULER_JOB_WORKERS"), 1),
		JobRetries:           positiveInt(v.GetInt("SCHEDULER_JOB_RETRIES"), 1),
		StrictClassification: v.GetBool("SCHEDULER_STRICT_CLASSIFICATION"),
	}

	cfg.Workload = WorkloadConfig{
		AcademicYearMonths: positiveInt(v.GetInt("WORKLOAD_ACADEMIC_YEAR_MONTHS"), 10),
		CacheEnabled:       v.GetBool("ENABLE_WORKLOAD_CACHE"),
		CacheTTL:           parseDuration(v.GetString("WORKLOAD_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	cfg.Calendar = CalendarExportConfig{
		Timezone:       v.GetString("CALENDAR_TIMEZONE"),
		MorningStart:   parseDuration(v.GetString("CALENDAR_MORNING_START"), 7*time.Hour),
		AfternoonStart: parseDuration(v.GetString("CALENDAR_AFTERNOON_START"), 13*time.Hour),
		PeriodLength:   parseDuration(v.GetString("CALENDAR_PERIOD_LENGTH"), 50*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "college_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_DEFAULT_TEACHING_WEEKS", 15)
	v.SetDefault("SCHEDULER_BATCH_TIMEOUT", "2m")
	v.SetDefault("SCHEDULER_JOB_WORKERS", 1)
	v.SetDefault("SCHEDULER_JOB_RETRIES", 1)
	v.SetDefault("SCHEDULER_STRICT_CLASSIFICATION", false)

	v.SetDefault("WORKLOAD_ACADEMIC_YEAR_MONTHS", 10)
	v.SetDefault("ENABLE_WORKLOAD_CACHE", false)
	v.SetDefault("WORKLOAD_CACHE_TTL", "10m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")

	v.SetDefault("CALENDAR_TIMEZONE", "UTC")
	v.SetDefault("CALENDAR_MORNING_START", "7h")
	v.SetDefault("CALENDAR_AFTERNOON_START", "13h")
	v.SetDefault("CALENDAR_PERIOD_LENGTH", "50m")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
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

func positiveInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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
