package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration with explicit defaults.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	CORSAllowOrigin []string

	// Completion endpoint settings.
	OpenAIAPIKey   string
	Model          string
	Temperature    float32
	MaxTokens      int
	MaxPromptChars int

	// Upload handling.
	MaxFileSizeMB   int
	AllowedTypes    []string
	ObjectStoreType string
	UploadDir       string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	// Retention policy.
	RetainUploads   bool
	AutoDeleteFiles bool
	DeleteAfterDays int

	RequireLogin bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		Model:          getEnv("LLM_MODEL", "gpt-4"),
		Temperature:    clampTemperature(getEnvFloat("LLM_TEMPERATURE", 0.3)),
		MaxTokens:      getEnvInt("LLM_MAX_TOKENS", 2000),
		MaxPromptChars: getEnvInt("MAX_PROMPT_CHARS", 24000),

		MaxFileSizeMB:   getEnvInt("MAX_FILE_SIZE_MB", 20),
		AllowedTypes:    splitAndTrimLower(getEnv("ALLOWED_FILE_TYPES", "pdf,docx")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		UploadDir:       getEnv("UPLOAD_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		RetainUploads:   getEnvBool("RETAIN_UPLOADS", true),
		AutoDeleteFiles: getEnvBool("AUTO_DELETE_FILES", true),
		DeleteAfterDays: getEnvInt("DELETE_AFTER_DAYS", 30),

		RequireLogin: getEnvBool("REQUIRE_LOGIN", true),
	}
}

// MaxFileSizeBytes returns the upload size ceiling in bytes.
func (c Config) MaxFileSizeBytes() int64 {
	mb := c.MaxFileSizeMB
	if mb <= 0 {
		mb = 20
	}
	return int64(mb) << 20
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		log.Printf("config: %s invalid float %q, using %v", key, raw, def)
		return def
	}
	return float32(val)
}

func getEnvBool(key string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		log.Printf("config: %s invalid bool %q, using %v", key, raw, def)
		return def
	}
}

func clampTemperature(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func splitAndTrimLower(raw string) []string {
	out := splitAndTrim(raw)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
