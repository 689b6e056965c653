package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Punch    PunchConfig
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	RunMigrations bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// PunchConfig holds the deployment policy of the punch engine.
type PunchConfig struct {
	Timezone             string
	Location             *time.Location
	GeofenceRadiusMeters float64
	Cooldown             time.Duration
	LatenessTolerance    time.Duration
	IdempotencyWindow    time.Duration
	KioskTokenCost       int
}

// ClientConfig configures the punch client and its offline queue.
type ClientConfig struct {
	APIURL          string
	Token           string
	QueuePath       string
	Cooldown        time.Duration
	LocationTimeout time.Duration
	ProbeInterval   time.Duration
	RetryInterval   time.Duration
	HTTPTimeout     time.Duration
}

func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:          getEnv("DB_HOST", "localhost"),
		Port:          dbPort,
		User:          getEnv("DB_USER", "postgres"),
		Password:      getEnv("DB_PASSWORD", ""),
		Name:          getEnv("DB_NAME", "punchclock"),
		SSLMode:       getEnv("DB_SSL_MODE", "disable"),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Punch policy
	radius, err := strconv.ParseFloat(getEnv("PUNCH_GEOFENCE_RADIUS_METERS", "300"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PUNCH_GEOFENCE_RADIUS_METERS: %w", err)
	}
	cooldown, err := getEnvDuration("PUNCH_COOLDOWN", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	tolerance, err := getEnvDuration("PUNCH_LATENESS_TOLERANCE", 120*time.Minute)
	if err != nil {
		return nil, err
	}
	window, err := getEnvDuration("PUNCH_IDEMPOTENCY_WINDOW", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cost, err := strconv.Atoi(getEnv("KIOSK_TOKEN_BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid KIOSK_TOKEN_BCRYPT_COST: %w", err)
	}

	config.Punch = PunchConfig{
		Timezone:             getEnv("PUNCH_TIMEZONE", "America/Fortaleza"),
		GeofenceRadiusMeters: radius,
		Cooldown:             cooldown,
		LatenessTolerance:    tolerance,
		IdempotencyWindow:    window,
		KioskTokenCost:       cost,
	}
	config.Punch.Location, err = time.LoadLocation(config.Punch.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid PUNCH_TIMEZONE %q: %w", config.Punch.Timezone, err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Punch.GeofenceRadiusMeters <= 0 {
		return fmt.Errorf("PUNCH_GEOFENCE_RADIUS_METERS must be positive")
	}
	if c.Punch.Cooldown < 0 {
		return fmt.Errorf("PUNCH_COOLDOWN must not be negative")
	}
	if c.Punch.LatenessTolerance < 0 {
		return fmt.Errorf("PUNCH_LATENESS_TOLERANCE must not be negative")
	}
	if c.Punch.KioskTokenCost < 4 || c.Punch.KioskTokenCost > 31 {
		return fmt.Errorf("KIOSK_TOKEN_BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// LoadClient reads the punch client configuration.
func LoadClient() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		APIURL:    strings.TrimRight(getEnv("PUNCH_API_URL", "http://localhost:8080"), "/"),
		Token:     getEnv("PUNCH_TOKEN", ""),
		QueuePath: getEnv("PUNCH_QUEUE_PATH", "punch-queue.db"),
	}

	var err error
	if cfg.Cooldown, err = getEnvDuration("PUNCH_COOLDOWN", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.LocationTimeout, err = getEnvDuration("PUNCH_LOCATION_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = getEnvDuration("PUNCH_PROBE_INTERVAL", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryInterval, err = getEnvDuration("PUNCH_RETRY_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getEnvDuration("PUNCH_HTTP_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("PUNCH_TOKEN is required")
	}
	return cfg, nil
}

// loadDotEnv reads .env when present; deployments without one rely on the process environment.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
