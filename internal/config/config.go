package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	TelephonyPort string
	Env           string
	LogLevel      string
	PublicBaseURL string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	OpenAIAPIKey         string
	OpenAIChatModel      string
	OpenAIEmbeddingModel string
	OpenAITTSModel       string
	OpenAITTSVoice       string
	OpenAISTTModel       string
	OpenAITimeout        time.Duration
	EmbedRetryAttempts   int

	VectorDBPath    string
	DocumentsDBPath string
	UploadDir       string
	AudioDir        string
	ReportsDir      string
	SeedQAPath      string
	SeedPDFPath     string

	CORSAllowedOrigins []string
	AnswerCacheTTL     time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Telephony adapter settings.
	BackendBaseURL string
	BackendTimeout time.Duration
	SessionTTL     time.Duration
	DocsCollection string
	HoldMusicURL   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8000"),
		TelephonyPort: getEnv("TELEPHONY_PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIChatModel:      getEnv("OPENAI_MODEL_NAME_TEXT", "gpt-4o-mini"),
		OpenAIEmbeddingModel: getEnv("OPENAI_MODEL_NAME_EMBEDDING", "text-embedding-3-small"),
		OpenAITTSModel:       getEnv("OPENAI_MODEL_NAME_TTS", "tts-1"),
		OpenAITTSVoice:       getEnv("OPENAI_TTS_VOICE", "alloy"),
		OpenAISTTModel:       getEnv("OPENAI_MODEL_NAME_STT", "whisper-1"),
		OpenAITimeout:        getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
		EmbedRetryAttempts:   getEnvAsInt("EMBED_RETRY_ATTEMPTS", 3),

		VectorDBPath:    getEnv("VECTOR_DB_PATH", "./db"),
		DocumentsDBPath: getEnv("DOCUMENTS_DB_PATH", "./documents.db"),
		UploadDir:       getEnv("UPLOAD_DIR", "./tmp_databases"),
		AudioDir:        getEnv("AUDIO_DIR", "out/audio"),
		ReportsDir:      getEnv("REPORTS_DIR", "./reports"),
		SeedQAPath:      getEnv("SEED_QA_PATH", "./db.json"),
		SeedPDFPath:     getEnv("SEED_PDF_PATH", "./tmp_databases/Insurance.pdf"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		AnswerCacheTTL:     getEnvAsDuration("ANSWER_CACHE_TTL", 24*time.Hour),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 0),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
		BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		DocsCollection: getEnv("TELEPHONY_DOCS_COLLECTION", "insurance_docs"),
		HoldMusicURL:   getEnv("HOLD_MUSIC_URL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable.
func getEnvAsSlice(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
