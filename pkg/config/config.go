package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env         string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	Naver       NaverConfig
	NaverTrend  NaverConfig
	LLM         LLMConfig
	OpenAI      OpenAIConfig
	Browser     BrowserConfig
	Acquisition AcquisitionConfig
	Ranking     RankingConfig
	Cache       CacheConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// NaverConfig holds credentials for one Naver Open API application. Blog
// search and DataLab trend use separate applications.
type NaverConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	RateLimitRPS float64
	Timeout      time.Duration
}

// Enabled reports whether credentials are present.
func (c *NaverConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// LLMConfig selects the language model backend.
type LLMConfig struct {
	Provider       string // gemini | openai
	GeminiAPIKey   string
	GeminiModel    string
	RateLimitRPM   int
	RateLimitBurst int
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// BrowserConfig configures the headless browser used to read blog posts.
type BrowserConfig struct {
	Headless          bool
	Bin               string
	ControlURL        string
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	MaxPages          int
}

// AcquisitionConfig bounds the review acquisition loop.
type AcquisitionConfig struct {
	StartOffset      int
	PageSize         int
	ScanCap          int
	BreakerThreshold int
	MaxContentRunes  int
	AllowedLinkHost  string
}

// RankingConfig bounds ranking fan-out and collaborator calls.
type RankingConfig struct {
	MaxConcurrency   int
	SearchTimeout    time.Duration
	FetchTimeout     time.Duration
	JudgeTimeout     time.Duration
	TrendTimeout     time.Duration
	NarrativeTimeout time.Duration
	PlaceholderImage string
}

// CacheConfig holds TTLs for cached collaborator results.
type CacheConfig struct {
	RecordTTL  time.Duration
	TrendTTL   time.Duration
	ContentTTL time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "tour_agent"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Naver: NaverConfig{
			ClientID:     getEnv("NAVER_CLIENT_ID", ""),
			ClientSecret: getEnv("NAVER_CLIENT_SECRET", ""),
			BaseURL:      getEnv("NAVER_API_URL", "https://openapi.naver.com"),
			RateLimitRPS: getEnvAsFloat("NAVER_RATE_LIMIT_RPS", 10),
			Timeout:      getEnvAsDuration("NAVER_TIMEOUT", 10*time.Second),
		},
		NaverTrend: NaverConfig{
			ClientID:     getEnv("NAVER_TREND_CLIENT_ID", ""),
			ClientSecret: getEnv("NAVER_TREND_CLIENT_SECRET", ""),
			BaseURL:      getEnv("NAVER_API_URL", "https://openapi.naver.com"),
			RateLimitRPS: getEnvAsFloat("NAVER_TREND_RATE_LIMIT_RPS", 5),
			Timeout:      getEnvAsDuration("NAVER_TIMEOUT", 10*time.Second),
		},
		LLM: LLMConfig{
			Provider:       strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
			GeminiAPIKey:   getEnv("GOOGLE_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			RateLimitRPM:   getEnvAsInt("GEMINI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("GEMINI_RATE_LIMIT_BURST", 5),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		Browser: BrowserConfig{
			Headless:          getEnvAsBool("BROWSER_HEADLESS", true),
			Bin:               getEnv("BROWSER_BIN", ""),
			ControlURL:        getEnv("BROWSER_CONTROL_URL", ""),
			NavigationTimeout: getEnvAsDuration("BROWSER_NAVIGATION_TIMEOUT", 20*time.Second),
			SelectorTimeout:   getEnvAsDuration("BROWSER_SELECTOR_TIMEOUT", 5*time.Second),
			MaxPages:          getEnvAsInt("BROWSER_MAX_PAGES", 4),
		},
		Acquisition: AcquisitionConfig{
			StartOffset:      getEnvAsInt("ACQUISITION_START_OFFSET", 1),
			PageSize:         getEnvAsInt("ACQUISITION_PAGE_SIZE", 20),
			ScanCap:          getEnvAsInt("ACQUISITION_SCAN_CAP", 100),
			BreakerThreshold: getEnvAsInt("ACQUISITION_BREAKER_THRESHOLD", 3),
			MaxContentRunes:  getEnvAsInt("ACQUISITION_MAX_CONTENT_RUNES", 30000),
			AllowedLinkHost:  getEnv("ACQUISITION_ALLOWED_LINK_HOST", "blog.naver.com"),
		},
		Ranking: RankingConfig{
			MaxConcurrency:   getEnvAsInt("RANKING_MAX_CONCURRENCY", 0),
			SearchTimeout:    getEnvAsDuration("RANKING_SEARCH_TIMEOUT", 10*time.Second),
			FetchTimeout:     getEnvAsDuration("RANKING_FETCH_TIMEOUT", 40*time.Second),
			JudgeTimeout:     getEnvAsDuration("RANKING_JUDGE_TIMEOUT", 60*time.Second),
			TrendTimeout:     getEnvAsDuration("RANKING_TREND_TIMEOUT", 10*time.Second),
			NarrativeTimeout: getEnvAsDuration("RANKING_NARRATIVE_TIMEOUT", 45*time.Second),
			PlaceholderImage: getEnv("RANKING_PLACEHOLDER_IMAGE", "https://via.placeholder.com/300x200.png?text=No+Image"),
		},
		Cache: CacheConfig{
			RecordTTL:  getEnvAsDuration("CACHE_RECORD_TTL", 10*time.Minute),
			TrendTTL:   getEnvAsDuration("CACHE_TREND_TTL", 6*time.Hour),
			ContentTTL: getEnvAsDuration("CACHE_CONTENT_TTL", 24*time.Hour),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "tour-agent-backend"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	a := c.Acquisition
	if a.PageSize <= 0 {
		return errors.New("ACQUISITION_PAGE_SIZE must be positive")
	}
	if a.ScanCap <= 0 {
		return errors.New("ACQUISITION_SCAN_CAP must be positive")
	}
	if a.BreakerThreshold <= 0 {
		return errors.New("ACQUISITION_BREAKER_THRESHOLD must be positive")
	}
	if a.MaxContentRunes <= 0 {
		return errors.New("ACQUISITION_MAX_CONTENT_RUNES must be positive")
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
