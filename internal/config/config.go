package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	SLA          SLAConfig
	Cache        CacheConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	AllowedOrigins        string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for dashboard operators.
type AuthConfig struct {
	Enabled               bool
	JWTSecret             string
	AccessTokenTTLMinutes int
	Username              string
	PasswordHash          string
}

// SLAConfig describes the business calendar and the policy table in use.
type SLAConfig struct {
	StartHour              int
	EndHour                int
	BusinessDays           []time.Weekday
	Timezone               string
	PolicyTable            string
	Holidays               []time.Time
	LiveTickSeconds        int
	LiveWatchSeconds       int
	MonitorIntervalSeconds int
}

// CacheConfig controls the dashboard metrics cache.
type CacheConfig struct {
	MetricsTTLSeconds int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	slaCfg, err := loadSLA()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "sla-dashboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			AllowedOrigins:        getEnv("HTTP_ALLOWED_ORIGINS", "*"),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ApplicationName: getEnv("POSTGRES_APPLICATION_NAME", "sla-dashboard"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Enabled:               getEnvAsBool("AUTH_ENABLED", true),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			Username:              getEnv("AUTH_USERNAME", "admin"),
			PasswordHash:          os.Getenv("AUTH_PASSWORD_HASH"),
		},
		SLA: slaCfg,
		Cache: CacheConfig{
			MetricsTTLSeconds: getEnvAsInt("CACHE_METRICS_TTL_SECONDS", 60),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

func loadSLA() (SLAConfig, error) {
	days, err := parseWeekdays(getEnv("SLA_BUSINESS_DAYS", "1,2,3,4,5"))
	if err != nil {
		return SLAConfig{}, err
	}
	holidays, err := parseDates(os.Getenv("SLA_HOLIDAYS"))
	if err != nil {
		return SLAConfig{}, err
	}

	cfg := SLAConfig{
		StartHour:              getEnvAsInt("SLA_START_HOUR", 8),
		EndHour:                getEnvAsInt("SLA_END_HOUR", 18),
		BusinessDays:           days,
		Timezone:               getEnv("SLA_TIMEZONE", "America/Sao_Paulo"),
		PolicyTable:            getEnv("SLA_POLICY_TABLE", sla.TableTiered),
		Holidays:               holidays,
		LiveTickSeconds:        getEnvAsInt("SLA_LIVE_TICK_SECONDS", 60),
		LiveWatchSeconds:       getEnvAsInt("SLA_LIVE_WATCH_SECONDS", 300),
		MonitorIntervalSeconds: getEnvAsInt("SLA_MONITOR_INTERVAL_SECONDS", 60),
	}

	cal, err := cfg.Calendar()
	if err != nil {
		return SLAConfig{}, err
	}
	if err := cal.Validate(); err != nil {
		return SLAConfig{}, fmt.Errorf("invalid SLA calendar: %w", err)
	}
	if _, err := cfg.Policies(); err != nil {
		return SLAConfig{}, err
	}
	return cfg, nil
}

// Calendar builds the business calendar, with holidays as its day predicate.
func (s SLAConfig) Calendar() (sla.BusinessCalendar, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return sla.BusinessCalendar{}, fmt.Errorf("invalid SLA_TIMEZONE: %w", err)
	}

	days := make(map[time.Weekday]bool, len(s.BusinessDays))
	for _, d := range s.BusinessDays {
		days[d] = true
	}

	cal := sla.BusinessCalendar{
		StartHour:    s.StartHour,
		EndHour:      s.EndHour,
		BusinessDays: days,
		Location:     loc,
	}
	if len(s.Holidays) > 0 {
		cal.Holidays = holidaySet(s.Holidays)
	}
	return cal, nil
}

// Policies returns the configured SLA policy table.
func (s SLAConfig) Policies() (sla.PolicyTable, error) {
	return sla.PoliciesByName(s.PolicyTable)
}

// LiveTick returns the fast refresh cadence.
func (s SLAConfig) LiveTick() time.Duration {
	return time.Duration(s.LiveTickSeconds) * time.Second
}

// LiveWatch returns the off-hours polling cadence.
func (s SLAConfig) LiveWatch() time.Duration {
	return time.Duration(s.LiveWatchSeconds) * time.Second
}

// MonitorInterval returns how often open tickets are re-evaluated in the background.
func (s SLAConfig) MonitorInterval() time.Duration {
	return time.Duration(s.MonitorIntervalSeconds) * time.Second
}

// MetricsTTL returns the cache lifetime of aggregate metrics.
func (c CacheConfig) MetricsTTL() time.Duration {
	return time.Duration(c.MetricsTTLSeconds) * time.Second
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func holidaySet(dates []time.Time) sla.HolidayFunc {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d.Format(time.DateOnly)] = struct{}{}
	}
	return func(date time.Time) bool {
		_, ok := set[date.Format(time.DateOnly)]
		return ok
	}
}

func parseWeekdays(raw string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid SLA_BUSINESS_DAYS entry %q", part)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func parseDates(raw string) ([]time.Time, error) {
	var dates []time.Time
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, part)
		if err != nil {
			return nil, fmt.Errorf("invalid SLA_HOLIDAYS entry %q: %w", part, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
