package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	ExtractorPDF     = "pdf"
	ExtractorDocconv = "docconv"
)

type Config struct {
	LLMProvider    string
	AIAPIKey       string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	GenModel       string
	StorageDir     string
	Port           string
	SessionSecret  string
	DatabaseURL    string
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	BucketName     string
	Extractor      string
	MaxUploadBytes int64
	AgentMaxTurns  int
	AgentTimeout   time.Duration
	AllowedOrigins []string
	LogLevel       string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		AIAPIKey:       getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		GenModel:       getEnv("GEN_MODEL", ""),
		StorageDir:     getEnv("STORAGE_DIR", "storage"),
		Port:           getEnv("PORT", "8080"),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		BucketName:     getEnv("BUCKET_NAME", ""),
		Extractor:      strings.ToLower(getEnv("EXTRACTOR", ExtractorPDF)),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,
		AgentMaxTurns:  getEnvInt("AGENT_MAX_TURNS", 10),
		AgentTimeout:   getEnvDuration("AGENT_TIMEOUT", 5*time.Minute),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if cfg.GenModel == "" {
		cfg.GenModel = defaultModel(cfg.LLMProvider)
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		logrus.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	return cfg
}

// Validate reports configuration that makes startup impossible.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.AIAPIKey == "" {
			return errors.New("GEMINI_API_KEY environment variable not set")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.Extractor {
	case ExtractorPDF, ExtractorDocconv:
	default:
		return fmt.Errorf("unknown EXTRACTOR %q", c.Extractor)
	}

	if c.StorageDir == "" {
		return errors.New("STORAGE_DIR is empty")
	}
	if c.AgentMaxTurns < 1 {
		return fmt.Errorf("AGENT_MAX_TURNS must be positive, got %d", c.AgentMaxTurns)
	}
	if c.BucketName != "" && (c.AwsAccessKey == "" || c.AwsSecretKey == "") {
		return errors.New("BUCKET_NAME set but AWS credentials are missing")
	}
	return nil
}

// MirrorEnabled reports whether uploads should also be copied to S3.
func (c *Config) MirrorEnabled() bool {
	return c.BucketName != ""
}

func defaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-2.5-flash"
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("%s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("%s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
