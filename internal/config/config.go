package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application-wide configuration populated from environment variables.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ListenAddr    string

	AudioDir     string
	PageDir      string
	SecretsDir   string
	ProcessedLog string

	GmailTokenPath  string
	CredentialsPath string
	GmailQuery      string

	DriveUploadEnabled bool
	DriveFolderID      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	TTSConfigPath string
	WatchSchedule string
}

// Load reads .env (if present) and environment variables and returns Config with defaults applied.
func Load() *Config {
	_ = godotenv.Load()
	cfg := &Config{
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		AudioDir:           getEnv("AUDIO_DIR", "audio"),
		PageDir:            getEnv("PAGE_DIR", "pages"),
		SecretsDir:         getEnv("SECRETS_DIR", "secrets"),
		ProcessedLog:       getEnv("PROCESSED_LOG", filepath.Join("log", "processed_ids.txt")),
		GmailTokenPath:     getEnv("GMAIL_TOKEN", ""),
		CredentialsPath:    getEnv("GOOGLE_CREDENTIALS", ""),
		GmailQuery:         getEnv("GMAIL_QUERY", ""),
		DriveUploadEnabled: getEnvBool("DRIVE_UPLOAD_ENABLED", false),
		DriveFolderID:      getEnv("DRIVE_FOLDER_ID", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTL:           getEnvDuration("CACHE_TTL", 24*time.Hour),
		TTSConfigPath:      getEnv("TTS_CONFIG", "tts.yaml"),
		WatchSchedule:      getEnv("WATCH_SCHEDULE", "@every 15m"),
	}
	if cfg.GmailTokenPath == "" {
		cfg.GmailTokenPath = filepath.Join(cfg.SecretsDir, "token.json")
	}
	if cfg.CredentialsPath == "" {
		cfg.CredentialsPath = filepath.Join(cfg.SecretsDir, "credentials.json")
	}
	cfg.OpenAIAPIKey = openAIKey(cfg.SecretsDir)
	return cfg
}

// openAIKey returns the OpenAI API key.
// Priority: env OPENAI_API_KEY > file {secrets}/openai_api_key.txt
func openAIKey(secretsDir string) string {
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		return k
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, "openai_api_key.txt"))
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	default:
		return def
	}
}

func getEnvInt(key string, def int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return def
}
