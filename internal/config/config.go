package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/BradenHooton/realty/internal/models"
)

// DefaultSubscriptionTiers is used when SUBSCRIPTION_TIERS is unset.
const DefaultSubscriptionTiers = "basic:5:0,pro:25:5,enterprise:100:20"

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Database      DatabaseConfig
	Server        ServerConfig
	Auth          AuthConfig
	Store         StoreConfig
	Subscriptions SubscriptionConfig
	Listings      ListingConfig
	Email         EmailConfig
	Metrics       MetricsConfig
	Telemetry     TelemetryConfig
	Background    BackgroundConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
	StatementTimeout  time.Duration // server-side cap on a single query
	ApplicationName   string
}

type ServerConfig struct {
	Port            string
	Env             string
	LogLevel        string
	AllowedOrigins  []string
	TrustedProxies  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	PublicRateLimit int // requests per minute per IP on public search
	WriteRateLimit  int // requests per minute per user on mutating endpoints
}

type AuthConfig struct {
	JWTSecret         string
	AccessTokenExpiry time.Duration
	AdminEmail        string
}

type StoreConfig struct {
	Driver      string
	AutoMigrate bool
}

type SubscriptionConfig struct {
	Tiers models.TierTable
}

type ListingConfig struct {
	AdminPageSize      int
	AgentPageSize      int
	AgencyPageSize     int
	FavoritesPageSize  int
	SearchPageSize     int
	MaxPageSize        int
	CollationLocale    string
	DefaultFeatureDays int
	MaxFeatureDays     int
}

type EmailConfig struct {
	Provider string // "ses" or "log"
	Region   string
	From     string
}

type MetricsConfig struct {
	Enabled  bool
	Username string
	Password string
}

type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
	SampleRate  float64
}

type BackgroundConfig struct {
	FeaturedExpiryInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	tiers, err := ParseTiers(getEnv("SUBSCRIPTION_TIERS", DefaultSubscriptionTiers))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "realty"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
			ConnectTimeout:    getEnvAsDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
			StatementTimeout:  getEnvAsDuration("DB_STATEMENT_TIMEOUT", 5*time.Second),
			ApplicationName:   getEnv("DB_APPLICATION_NAME", "realty-api"),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Env:             env,
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			AllowedOrigins:  parseAllowedOrigins(env),
			TrustedProxies:  splitList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 10*time.Second),
			PublicRateLimit: getEnvAsInt("PUBLIC_RATE_LIMIT", 120),
			WriteRateLimit:  getEnvAsInt("WRITE_RATE_LIMIT", 30),
		},
		Auth: AuthConfig{
			JWTSecret:         jwtSecret,
			AccessTokenExpiry: getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
			AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Subscriptions: SubscriptionConfig{
			Tiers: tiers,
		},
		Listings: ListingConfig{
			AdminPageSize:      getEnvAsInt("LISTINGS_ADMIN_PAGE_SIZE", 10),
			AgentPageSize:      getEnvAsInt("LISTINGS_AGENT_PAGE_SIZE", 10),
			AgencyPageSize:     getEnvAsInt("LISTINGS_AGENCY_PAGE_SIZE", 10),
			FavoritesPageSize:  getEnvAsInt("LISTINGS_FAVORITES_PAGE_SIZE", 12),
			SearchPageSize:     getEnvAsInt("LISTINGS_SEARCH_PAGE_SIZE", 20),
			MaxPageSize:        getEnvAsInt("LISTINGS_MAX_PAGE_SIZE", 100),
			CollationLocale:    getEnv("LISTINGS_COLLATION_LOCALE", "en"),
			DefaultFeatureDays: getEnvAsInt("FEATURE_DEFAULT_DAYS", 30),
			MaxFeatureDays:     getEnvAsInt("FEATURE_MAX_DAYS", 90),
		},
		Email: EmailConfig{
			Provider: strings.ToLower(getEnv("EMAIL_PROVIDER", "log")),
			Region:   getEnv("AWS_REGION", "us-east-1"),
			From:     getEnv("EMAIL_FROM", "no-reply@realty.local"),
		},
		Metrics: MetricsConfig{
			Enabled:  getEnvAsBool("METRICS_ENABLED", true),
			Username: getEnv("METRICS_USERNAME", ""),
			Password: getEnv("METRICS_PASSWORD", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvAsBool("OTEL_INSECURE", true),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "realty-api"),
			SampleRate:  getEnvAsFloat("OTEL_SAMPLE_RATE", 0.1),
		},
		Background: BackgroundConfig{
			FeaturedExpiryInterval: getEnvAsDuration("FEATURED_EXPIRY_INTERVAL", 5*time.Minute),
		},
	}

	switch cfg.Store.Driver {
	case StoreDriverPostgres:
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreDriverMemory:
	default:
		return nil, &models.ConfigError{Field: "STORE_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.Store.Driver)}
	}

	if cfg.Listings.MaxFeatureDays < 1 || cfg.Listings.DefaultFeatureDays < 1 ||
		cfg.Listings.DefaultFeatureDays > cfg.Listings.MaxFeatureDays {
		return nil, &models.ConfigError{Field: "FEATURE_DEFAULT_DAYS", Message: "must be between 1 and FEATURE_MAX_DAYS"}
	}

	// Validate JWT secret strength
	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseTiers reads "name:maxListings:maxFeatured" entries separated by commas.
func ParseTiers(raw string) (models.TierTable, error) {
	var tiers []models.SubscriptionTier
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return models.TierTable{}, &models.ConfigError{
				Field:   "SUBSCRIPTION_TIERS",
				Message: fmt.Sprintf("entry %q must be name:maxListings:maxFeatured", entry),
			}
		}

		maxListings, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return models.TierTable{}, &models.ConfigError{Field: "SUBSCRIPTION_TIERS", Message: fmt.Sprintf("entry %q: invalid maxListings", entry)}
		}
		maxFeatured, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return models.TierTable{}, &models.ConfigError{Field: "SUBSCRIPTION_TIERS", Message: fmt.Sprintf("entry %q: invalid maxFeatured", entry)}
		}

		tiers = append(tiers, models.SubscriptionTier{
			Name:        strings.TrimSpace(parts[0]),
			MaxListings: maxListings,
			MaxFeatured: maxFeatured,
		})
	}

	return models.NewTierTable(tiers...)
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// PageSizeFor returns the default page size for a listing view.
func (c ListingConfig) PageSizeFor(scope models.Scope) int {
	switch scope {
	case models.ScopeAdmin:
		return c.AdminPageSize
	case models.ScopeAgent:
		return c.AgentPageSize
	case models.ScopeAgency:
		return c.AgencyPageSize
	case models.ScopeFavorites:
		return c.FavoritesPageSize
	default:
		return c.SearchPageSize
	}
}

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

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return splitList(getEnv("ALLOWED_ORIGINS", ""))
	}

	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
