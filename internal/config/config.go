package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Provider string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAITextModel  string
	OpenAIImageModel string

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiTextModel  string
	GeminiImageModel string

	TelegramToken string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MaxConcurrent      int
	MediaGroupDebounce time.Duration
	RequestTimeout     time.Duration
	HTTPTimeout        time.Duration
	AnalysisTimeout    time.Duration
	SceneTimeout       time.Duration
	SceneConcurrency   int
	SceneRateInterval  time.Duration
	EnhanceScenes      bool

	WebAddr    string
	PackageTTL time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Provider: strings.ToLower(getEnv("AI_PROVIDER", ProviderOpenAI)),

		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAITextModel:  getEnv("OPENAI_TEXT_MODEL", "gpt-4o"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),

		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion: getEnv("GEMINI_API_VERSION", "v1beta"),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),

		LogLevel:   strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Debug:      getEnvBool("DEBUG", false),
		PreferIPv4: getEnvBool("PREFER_IPV4", true),

		MaxConcurrent:      getEnvInt("MAX_CONCURRENT", 4),
		MediaGroupDebounce: time.Duration(getEnvInt("MEDIA_GROUP_DEBOUNCE_MS", 1200)) * time.Millisecond,
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 600)) * time.Second,
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		AnalysisTimeout:    time.Duration(getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 90)) * time.Second,
		SceneTimeout:       time.Duration(getEnvInt("SCENE_TIMEOUT_SECONDS", 150)) * time.Second,
		SceneConcurrency:   getEnvInt("SCENE_CONCURRENCY", 1),
		SceneRateInterval:  time.Duration(getEnvInt("SCENE_RATE_INTERVAL_MS", 0)) * time.Millisecond,
		EnhanceScenes:      getEnvBool("ENHANCE_SCENES", false),

		WebAddr:    getEnv("WEB_ADDR", ":8080"),
		PackageTTL: time.Duration(getEnvInt("PACKAGE_TTL_MINUTES", 30)) * time.Minute,
	}

	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))

	switch cfg.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return Config{}, fmt.Errorf("AI_PROVIDER %q is not supported (use %s or %s)", cfg.Provider, ProviderOpenAI, ProviderGemini)
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.SceneConcurrency < 1 {
		cfg.SceneConcurrency = 1
	}
	if cfg.SceneRateInterval < 0 {
		cfg.SceneRateInterval = 0
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 600 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 90 * time.Second
	}
	if cfg.SceneTimeout <= 0 {
		cfg.SceneTimeout = 150 * time.Second
	}
	if cfg.PackageTTL <= 0 {
		cfg.PackageTTL = 30 * time.Minute
	}

	return cfg, nil
}

// APIKey returns the credential of the selected provider.
func (c Config) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Warnings lists problems that do not stop startup. Calls to the AI
// provider fail lazily when the credential is missing.
func (c Config) Warnings() []string {
	var out []string
	if c.APIKey() == "" {
		key := "OPENAI_API_KEY"
		if c.Provider == ProviderGemini {
			key = "GEMINI_API_KEY"
		}
		out = append(out, key+" is not set; AI requests will fail")
	}
	return out
}

func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
