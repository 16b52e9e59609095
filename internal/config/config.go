package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App  AppConfig
	Keys APIKeys
	Chat ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	UsageLogFilePath   string
	CorsAllowedOrigins string
}

type APIKeys struct {
	GoogleAPIKey string
}

type ChatConfig struct {
	// StoreCatalog maps client-facing keys to hosted store display names.
	StoreCatalog map[string]string
	// StoreCatalogOrder preserves the catalog's presentation order.
	StoreCatalogOrder []string
	// Models is the selectable model list; the first entry is the default.
	Models []string

	AnswerLanguage     string
	MaxTurns           int
	MinRequestInterval time.Duration
	MaxAttempts        int
	RetryDelay         time.Duration
	SessionTTL         time.Duration
	DocumentCacheTTL   time.Duration
}

const (
	defaultStoreCatalog = "products=presto_products,applications=presto_applications,programming=presto_programmings"
	defaultModels       = "gemini-2.5-flash,gemini-2.5-pro,gemini-3-pro-preview"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	catalog, order := parseCatalog(getEnv("STORE_CATALOG", defaultStoreCatalog))

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			UsageLogFilePath:   getEnv("USAGE_LOG_FILE_PATH", "logs/usage.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Keys: APIKeys{
			GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		},
		Chat: ChatConfig{
			StoreCatalog:       catalog,
			StoreCatalogOrder:  order,
			Models:             splitList(getEnv("MODEL_CATALOG", defaultModels)),
			AnswerLanguage:     getEnv("ANSWER_LANGUAGE", "Korean"),
			MaxTurns:           getEnvAsInt("MAX_TURNS", 6),
			MinRequestInterval: getEnvAsDuration("MIN_REQUEST_INTERVAL", 1500*time.Millisecond),
			MaxAttempts:        getEnvAsInt("QUERY_MAX_ATTEMPTS", 5),
			RetryDelay:         getEnvAsDuration("QUERY_RETRY_DELAY", 2*time.Second),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", 1*time.Hour),
			DocumentCacheTTL:   getEnvAsDuration("DOCUMENT_CACHE_TTL", 5*time.Minute),
		},
	}
}

// DefaultModel returns the first model of the catalog.
func (c *ChatConfig) DefaultModel() string {
	if len(c.Models) == 0 {
		return ""
	}
	return c.Models[0]
}

// DefaultStoreKey returns the first key of the store catalog.
func (c *ChatConfig) DefaultStoreKey() string {
	if len(c.StoreCatalogOrder) == 0 {
		return ""
	}
	return c.StoreCatalogOrder[0]
}

// parseCatalog parses "key=displayName,key=displayName" preserving order.
// Malformed entries are skipped.
func parseCatalog(raw string) (map[string]string, []string) {
	catalog := make(map[string]string)
	order := make([]string, 0)
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		key := parts[0]
		if _, exists := catalog[key]; !exists {
			order = append(order, key)
		}
		catalog[key] = parts[1]
	}
	return catalog, order
}

func splitList(raw string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
