package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Vision   VisionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	UploadDir          string
	RedisURL           string
}

type DatabaseConfig struct {
	Driver     string // "sqlite" or "postgres"
	Connection string
}

type AuthConfig struct {
	JWTSecret    string
	TokenTTLHour int
}

type VisionConfig struct {
	Provider        string // "anthropic" or "gemini"
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", "journal.db"),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenTTLHour: getEnvAsInt("JWT_TTL_HOURS", 72),
		},
		Vision: VisionConfig{
			Provider:        getEnv("VISION_PROVIDER", "anthropic"),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			GeminiModel:     getEnv("GEMINI_MODEL", ""),
		},
	}
}

// APIKey returns the credential for the configured provider.
func (v VisionConfig) APIKey() string {
	if v.Provider == "gemini" {
		return v.GeminiAPIKey
	}
	return v.AnthropicAPIKey
}

// Model returns the model override for the configured provider, empty for
// the provider default.
func (v VisionConfig) Model() string {
	if v.Provider == "gemini" {
		return v.GeminiModel
	}
	return v.AnthropicModel
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
