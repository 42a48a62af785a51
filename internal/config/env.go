package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvConfig holds all environment-driven settings. Values are read once at
// process start; the quota caps additionally hot-reload via the limits
// config file.
type EnvConfig struct {
	Port int
	Env  string

	// Quota caps (defaults for .config/limits.json)
	DailyLimit        int
	ConversationLimit int

	// Hosted model provider
	ProviderBaseURL string
	ProviderAPIKey  string
	Model           string
	MaxTokens       int
	RequestTimeout  int // seconds

	// HTTP surface
	EnableCORS     bool
	CORSOrigin     string
	TrustedProxies []string

	// Uploads
	MaxUploadSizeMB int

	// Chat request log
	ChatLogDB       string
	ChatLogRetained int // days

	// Log file settings
	LogDir        string
	LogFile       string
	LogMaxSize    int // max size of a single log file (MB)
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool
	LogToConsole  bool
}

// NewEnvConfig reads configuration from the environment.
func NewEnvConfig() *EnvConfig {
	return &EnvConfig{
		Port: getEnvAsInt("PORT", 3000),
		Env:  getEnv("ENV", "development"),

		DailyLimit:        getEnvAsInt("DAILY_LIMIT", 20),
		ConversationLimit: getEnvAsInt("CONVERSATION_LIMIT", 5),

		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "https://api.anthropic.com"),
		ProviderAPIKey:  getEnv("PROVIDER_API_KEY", ""),
		Model:           getEnv("MODEL", "claude-sonnet-4-20250514"),
		MaxTokens:       getEnvAsInt("MAX_TOKENS", 1024),
		RequestTimeout:  getEnvAsInt("REQUEST_TIMEOUT", 300),

		EnableCORS:     getEnv("ENABLE_CORS", "true") != "false",
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		MaxUploadSizeMB: getEnvAsInt("MAX_UPLOAD_SIZE_MB", 5),

		ChatLogDB:       getEnv("CHAT_LOG_DB", ".config/chat_logs.db"),
		ChatLogRetained: getEnvAsInt("CHAT_LOG_RETAINED_DAYS", 30),

		LogDir:        getEnv("LOG_DIR", "logs"),
		LogFile:       getEnv("LOG_FILE", "app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 10),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 30),
		LogCompress:   getEnv("LOG_COMPRESS", "true") != "false",
		LogToConsole:  getEnv("LOG_TO_CONSOLE", "true") != "false",
	}
}

// IsDevelopment reports whether the server runs in development mode.
func (c *EnvConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction reports whether the server runs in production mode.
func (c *EnvConfig) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the environment variable parsed as an integer.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList returns a comma-separated environment variable as a slice.
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
