package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TranslateViaAPI = "api"
	TranslateViaLLM = "llm"
)

type Config struct {
	APIURL   string
	PageSize int

	RequestTimeout  time.Duration
	SyncTimeout     time.Duration
	BackfillTimeout time.Duration

	SyncRefreshDelay     time.Duration
	BackfillRefreshDelay time.Duration

	TranslateProvider string
	TranslateLanguage string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	LogLevel slog.Level
	LogFile  string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIURL:   os.Getenv("API_URL"),
		PageSize: getenvInt("PAGE_SIZE", 50),

		RequestTimeout:  getenvDuration("REQUEST_TIMEOUT", 30*time.Second),
		SyncTimeout:     getenvDuration("SYNC_TIMEOUT", 3*time.Minute),
		BackfillTimeout: getenvDuration("BACKFILL_TIMEOUT", 10*time.Minute),

		SyncRefreshDelay:     getenvDuration("SYNC_REFRESH_DELAY", 2*time.Minute),
		BackfillRefreshDelay: getenvDuration("BACKFILL_REFRESH_DELAY", 5*time.Minute),

		TranslateProvider: strings.ToLower(os.Getenv("TRANSLATE_PROVIDER")),
		TranslateLanguage: os.Getenv("TRANSLATE_LANGUAGE"),

		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   os.Getenv("LLM_MODEL"),

		LogFile: os.Getenv("LOG_FILE"),
	}

	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	if cfg.APIURL == "" {
		cfg.APIURL = "http://localhost:8000"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	if cfg.TranslateProvider == "" {
		cfg.TranslateProvider = TranslateViaAPI
	}
	if cfg.TranslateLanguage == "" {
		cfg.TranslateLanguage = "English"
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		cfg.LogLevel = slog.LevelInfo
	}

	return cfg
}

// Validate reports settings that would make the client unusable.
func (c *Config) Validate() error {
	switch c.TranslateProvider {
	case TranslateViaAPI:
	case TranslateViaLLM:
		if c.LLMAPIKey == "" {
			return fmt.Errorf("TRANSLATE_PROVIDER=llm requires LLM_API_KEY")
		}
	default:
		return fmt.Errorf("unknown TRANSLATE_PROVIDER %q (want %q or %q)", c.TranslateProvider, TranslateViaAPI, TranslateViaLLM)
	}
	return nil
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// getenvDuration accepts Go durations ("90s", "2m") or bare seconds.
func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
