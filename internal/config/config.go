package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/adhocore/gronx"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	LogLevel string
	Env      string

	// DatabaseURL empty means the in-memory repositories with seed data.
	DatabaseURL string
	// RedisURL empty means request ids are tracked in process memory.
	RedisURL string

	JWTSecret string
	TokenTTL  time.Duration

	// Location is where "today" starts for recency buckets and schedules.
	Location *time.Location

	RefreshDelay   time.Duration
	DeliveryCron   string
	IdempotencyTTL time.Duration

	RateLimitPerMinute int
	RateLimitBurst     int

	PinnedOnAllTabs bool
	SeedPassword    string
}

// LoadConfig reads the environment, after loading .env from the working
// directory if one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	tokenTTL, err := getDuration("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshDelay, err := getDuration("REFRESH_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	idempotencyTTL, err := getDuration("IDEMPOTENCY_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	perMinute, err := getInt("RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return nil, err
	}
	burst, err := getInt("RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, err
	}
	pinnedOnAllTabs, err := getBool("PINNED_ON_ALL_TABS", false)
	if err != nil {
		return nil, err
	}

	tz := GetEnv("TIMEZONE", "Europe/London")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	cron := GetEnv("DELIVERY_CRON", "* * * * *")
	if !gronx.IsValid(cron) {
		return nil, fmt.Errorf("invalid DELIVERY_CRON %q", cron)
	}

	cfg := &Config{
		Port:               GetEnv("PORT", "8081"),
		DatabaseURL:        GetEnv("DATABASE_URL", ""),
		RedisURL:           GetEnv("REDIS_URL", ""),
		Env:                GetEnv("ENV", "development"),
		LogLevel:           GetEnv("LOG_LEVEL", "info"),
		JWTSecret:          GetEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:           tokenTTL,
		Location:           loc,
		RefreshDelay:       refreshDelay,
		DeliveryCron:       cron,
		IdempotencyTTL:     idempotencyTTL,
		RateLimitPerMinute: perMinute,
		RateLimitBurst:     burst,
		PinnedOnAllTabs:    pinnedOnAllTabs,
		SeedPassword:       GetEnv("SEED_PASSWORD", "password123"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-me" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return cfg, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
