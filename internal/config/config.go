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
	Supabase SupabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

// DatabaseConfig carries an optional direct Postgres DSN. When empty, SQL
// execution goes through the Supabase exec_sql RPC instead.
type DatabaseConfig struct {
	Connection string
}

type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
}

type APIKeys struct {
	Mistral   string
	JWTSecret string
}

type AIConfig struct {
	Model           string
	MaxRetries      int
	InitialDelayMs  int
	SchemaFilePaths []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		},
		Keys: APIKeys{
			Mistral:   getEnv("MISTRAL_API_KEY", ""),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			Model:          getEnv("MISTRAL_MODEL", "mistral-small-latest"),
			MaxRetries:     getEnvAsInt("LLM_MAX_RETRIES", 3),
			InitialDelayMs: getEnvAsInt("LLM_INITIAL_DELAY_MS", 1000),
			SchemaFilePaths: []string{
				getEnv("SCHEMA_FILE_PATH", "schema_supabase.txt"),
			},
		},
	}
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
