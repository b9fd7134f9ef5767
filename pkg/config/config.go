package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the service. Values come from
// defaults, then the optional CONFIG_FILE yaml, then the environment.
type Config struct {
	AppEnv       string `yaml:"app_env"`
	IsStaging    bool   `yaml:"-"`
	IsProduction bool   `yaml:"-"`
	Port         string `yaml:"port"`

	DBDriver       string `yaml:"db_driver"`
	DatabaseURL    string `yaml:"database_url"`
	DBMaxOpenConns int    `yaml:"db_max_open_conns"`

	LLMProvider        string `yaml:"llm_provider"`
	GeminiAPIKey       string `yaml:"gemini_api_key"`
	GeminiModel        string `yaml:"gemini_model"`
	GeminiBaseURL      string `yaml:"gemini_base_url"`
	IsGeminiEnabled    bool   `yaml:"gemini_enabled"`
	ArkAPIKey          string `yaml:"ark_api_key"`
	ArkModel           string `yaml:"ark_model"`
	ArkBaseURL         string `yaml:"ark_base_url"`
	LLMTimeoutSeconds  int    `yaml:"llm_timeout_seconds"`
	LLMFallbackEnabled bool   `yaml:"llm_fallback_enabled"`
	LLMFallbackReply   string `yaml:"llm_fallback_reply"`

	JWTSecret     string `yaml:"jwt_secret_key"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`

	RateLimitWindowSeconds int      `yaml:"rate_limit_window_seconds"`
	RateLimitCapacity      int      `yaml:"rate_limit_capacity"`
	CORSAllowedOrigins     []string `yaml:"cors_allowed_origins"`
}

const (
	DefaultFallbackReply = "I'm sorry, I had trouble thinking. Can you ask again?"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultArkBaseURL    = "https://ark.cn-beijing.volces.com/api/v3"
)

// Defaults returns a staging configuration backed by a local sqlite file.
func Defaults() *Config {
	return &Config{
		AppEnv:                 "staging",
		IsStaging:              true,
		Port:                   "8000",
		DBDriver:               "sqlite",
		DatabaseURL:            "app.db",
		DBMaxOpenConns:         10,
		LLMProvider:            "gemini",
		GeminiModel:            "gemini-2.0-flash",
		GeminiBaseURL:          DefaultGeminiBaseURL,
		ArkBaseURL:             DefaultArkBaseURL,
		LLMTimeoutSeconds:      30,
		LLMFallbackReply:       DefaultFallbackReply,
		TokenTTLHours:          24,
		RateLimitWindowSeconds: 10,
		RateLimitCapacity:      5,
		CORSAllowedOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
	}
}

// loadDotEnv reads .env outside production. A missing file is not fatal.
func loadDotEnv() {
	if os.Getenv("APP_ENV") == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] .env not loaded: %v", err)
	}
}

// Load builds the configuration for the running process.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.mergeEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.logSummary()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	c.AppEnv = envOr("APP_ENV", c.AppEnv)
	c.Port = envOr("PORT", c.Port)

	c.DBDriver = strings.ToLower(envOr("DB_DRIVER", c.DBDriver))
	c.DatabaseURL = envOr("DATABASE_URL", c.DatabaseURL)
	c.DBMaxOpenConns = atoiOr(os.Getenv("DB_MAX_OPEN_CONNS"), c.DBMaxOpenConns)

	c.LLMProvider = strings.ToLower(envOr("LLM_PROVIDER", c.LLMProvider))
	c.GeminiAPIKey = envOr("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = envOr("GEMINI_MODEL", c.GeminiModel)
	c.GeminiBaseURL = envOr("GEMINI_BASE_URL", c.GeminiBaseURL)
	c.IsGeminiEnabled = boolOr(os.Getenv("IS_GEMINI_ENABLED"), c.IsGeminiEnabled)
	c.ArkAPIKey = envOr("ARK_API_KEY", c.ArkAPIKey)
	c.ArkModel = envOr("ARK_MODEL", c.ArkModel)
	c.ArkBaseURL = envOr("ARK_BASE_URL", c.ArkBaseURL)
	c.LLMTimeoutSeconds = atoiOr(os.Getenv("LLM_TIMEOUT_SECONDS"), c.LLMTimeoutSeconds)
	c.LLMFallbackEnabled = boolOr(os.Getenv("LLM_FALLBACK_ENABLED"), c.LLMFallbackEnabled)
	c.LLMFallbackReply = envOr("LLM_FALLBACK_REPLY", c.LLMFallbackReply)

	c.JWTSecret = envOr("JWT_SECRET_KEY", c.JWTSecret)
	c.TokenTTLHours = atoiOr(os.Getenv("TOKEN_TTL_HOURS"), c.TokenTTLHours)

	c.RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), c.RateLimitWindowSeconds)
	c.RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), c.RateLimitCapacity)
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		c.CORSAllowedOrigins = splitList(v)
	}
}

func (c *Config) validate() error {
	if !slices.Contains([]string{"staging", "production"}, c.AppEnv) {
		return fmt.Errorf("config: APP_ENV must be 'staging' or 'production', got %q", c.AppEnv)
	}
	c.IsStaging = c.AppEnv == "staging"
	c.IsProduction = c.AppEnv == "production"

	if !slices.Contains([]string{"sqlite", "mysql", "postgres"}, c.DBDriver) {
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if !slices.Contains([]string{"gemini", "ark", "local"}, c.LLMProvider) {
		return fmt.Errorf("config: unsupported LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.LLMTimeoutSeconds <= 0 {
		return fmt.Errorf("config: LLM_TIMEOUT_SECONDS must be positive")
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("config: CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	if c.IsProduction && c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET_KEY must be set in production")
	}
	return nil
}

func (c *Config) logSummary() {
	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v Port=%s", c.AppEnv, c.IsStaging, c.IsProduction, c.Port)
	log.Printf("[config] DBDriver=%s MaxOpenConns=%d", c.DBDriver, c.DBMaxOpenConns)
	log.Printf("[config] LLMProvider=%s IsGeminiEnabled=%v GeminiAPIKeyPresent=%v ArkAPIKeyPresent=%v", c.LLMProvider, c.IsGeminiEnabled, c.GeminiAPIKey != "", c.ArkAPIKey != "")
	log.Printf("[config] GeminiModel=%s ArkModel=%s timeout=%ds fallback=%v", c.GeminiModel, c.ArkModel, c.LLMTimeoutSeconds, c.LLMFallbackEnabled)
	log.Printf("[config] AuthEnabled=%v RateLimit window=%ds capacity=%d", c.AuthEnabled(), c.RateLimitWindowSeconds, c.RateLimitCapacity)
}

// AuthEnabled reports whether bearer tokens are required on the API.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// boolOr accepts "1"/"0" like the other feature flags, plus anything strconv understands.
func boolOr(s string, def bool) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
