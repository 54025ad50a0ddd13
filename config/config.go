package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"portfolio-backend/internal/domain"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	FrontendURL string
	DBUrl       string
	// EmailJS relay
	EmailJSServiceID   string
	EmailJSTemplateID  string
	EmailJSPublicKey   string
	EmailJSPrivateKey  string // Optional accessToken for strict-mode accounts
	EmailJSAPIURL      string
	RelayTimeout       time.Duration
	RelayDryRun        bool // Log deliveries instead of calling the relay
	FeedbackClearDelay time.Duration
	SessionTTL         time.Duration
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitContactThreshold int
	RateLimitGlobalThreshold  int
	// Admin
	AdminJWTSecret string
	// Portfolio content override (YAML)
	ContentPath string
}

func LoadConfig() (*Config, error) {
	// Load .env file (only present locally, ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		// Strip trailing slash so origins compare exactly
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		// EmailJS (same keys the static frontend used, minus the VITE_ prefix)
		EmailJSServiceID:   getEnv("EMAILJS_SERVICE_ID", getEnv("VITE_EMAILJS_SERVICE_ID", "")),
		EmailJSTemplateID:  getEnv("EMAILJS_TEMPLATE_ID", getEnv("VITE_EMAILJS_TEMPLATE_ID", "")),
		EmailJSPublicKey:   getEnv("EMAILJS_PUBLIC_KEY", getEnv("VITE_EMAILJS_PUBLIC_KEY", "")),
		EmailJSPrivateKey:  getEnv("EMAILJS_PRIVATE_KEY", ""),
		EmailJSAPIURL:      strings.TrimRight(getEnv("EMAILJS_API_URL", "https://api.emailjs.com"), "/"),
		RelayTimeout:       time.Duration(getEnvInt("RELAY_TIMEOUT_SECONDS", 10)) * time.Second,
		RelayDryRun:        getEnvBool("RELAY_DRY_RUN", false),
		FeedbackClearDelay: time.Duration(getEnvInt("CONTACT_FEEDBACK_CLEAR_SECONDS", 5)) * time.Second,
		SessionTTL:         time.Duration(getEnvInt("CONTACT_SESSION_TTL_MINUTES", 30)) * time.Minute,
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitContactThreshold: getEnvInt("RATE_LIMIT_CONTACT_THRESHOLD", 5),  // 5 contact submits per window
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
		AdminJWTSecret:            getEnv("ADMIN_JWT_SECRET", ""),
		ContentPath:               getEnv("CONTENT_PATH", ""),
	}

	if !cfg.Submission().Configured() {
		log.Println("WARNING: EMAILJS_SERVICE_ID, EMAILJS_TEMPLATE_ID or EMAILJS_PUBLIC_KEY is missing. Contact form submissions will be refused.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// Submission returns the immutable relay identifiers
func (c *Config) Submission() domain.SubmissionConfig {
	return domain.SubmissionConfig{
		ServiceID:  c.EmailJSServiceID,
		TemplateID: c.EmailJSTemplateID,
		PublicKey:  c.EmailJSPublicKey,
	}
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return os.Getenv("GIN_MODE") == "release" || c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
