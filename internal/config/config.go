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
	SMTP     SMTPConfig
	Keys     APIKeys
	Google   GoogleConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	JWTSecret          string
	IngestTopic        string
	CatalogPath        string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

// APIKeys holds one key per backend family plus the agent model
// override. Missing keys fail provider construction, not config load.
type APIKeys struct {
	OpenAI     string
	Gemini     string
	Anthropic  string
	Groq       string
	AgentModel string
}

// GoogleConfig carries the OAuth credentials for the calendar executor.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	ClassifierMode    string // "embedding" or "completion"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			IngestTopic:        getEnv("INGEST_CONTEXT_TOPIC_NAME", "INGEST_CONTEXT"),
			CatalogPath:        getEnv("CATALOG_SNAPSHOT_PATH", "data/leaderboard.json"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "ContextLLM"),
		},
		Keys: APIKeys{
			OpenAI:     getEnv("OPENAI_API_KEY", ""),
			Gemini:     getEnv("GEMINI_API_KEY", ""),
			Anthropic:  getEnv("ANTHROPIC_API_KEY", ""),
			Groq:       getEnv("GROQ_API_KEY", ""),
			AgentModel: getEnv("AGENT_MODEL", "gpt-4o-mini"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			ClassifierMode:    getEnv("CLASSIFIER_MODE", "completion"),
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
