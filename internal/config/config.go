package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Upload   UploadConfig   `yaml:"upload"`
	Logging  LoggingConfig  `yaml:"logging"`
	Speech   SpeechConfig   `yaml:"speech"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Database DatabaseConfig `yaml:"database"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowOrigins    []string      `yaml:"allow_origins"`
}

type UploadConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SpeechConfig struct {
	Provider          string `yaml:"provider"`
	DefaultLanguage   string `yaml:"default_language"`
	DefaultSampleRate int    `yaml:"default_sample_rate"`

	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GoogleAPIKey          string `yaml:"google_api_key"`
	GoogleEndpoint        string `yaml:"google_endpoint"`

	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
}

type SupabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Table string `yaml:"table"`
}

func (s SupabaseConfig) Enabled() bool {
	return s.URL != "" && s.Key != ""
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:            "5000",
			ShutdownTimeout: 10 * time.Second,
			AllowOrigins:    []string{"*"},
		},
		Upload:  UploadConfig{Dir: "uploads"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Speech: SpeechConfig{
			Provider:          "google",
			DefaultLanguage:   "en-US",
			DefaultSampleRate: 16000,
		},
		Supabase: SupabaseConfig{Table: "transcriptions"},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally the environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.HTTP.Port = getEnv("PORT", cfg.HTTP.Port)
	cfg.HTTP.ShutdownTimeout = getDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	cfg.HTTP.AllowOrigins = getList("CORS_ALLOW_ORIGINS", cfg.HTTP.AllowOrigins)

	cfg.Upload.Dir = getEnv("UPLOAD_DIR", cfg.Upload.Dir)

	cfg.Logging.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(getEnv("LOG_FORMAT", cfg.Logging.Format))

	cfg.Speech.Provider = strings.ToLower(getEnv("SPEECH_PROVIDER", cfg.Speech.Provider))
	cfg.Speech.DefaultLanguage = getEnv("SPEECH_DEFAULT_LANGUAGE", cfg.Speech.DefaultLanguage)
	cfg.Speech.DefaultSampleRate = getInt("SPEECH_DEFAULT_SAMPLE_RATE", cfg.Speech.DefaultSampleRate)
	cfg.Speech.GoogleCredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", cfg.Speech.GoogleCredentialsFile)
	cfg.Speech.GoogleAPIKey = getEnv("GOOGLE_API_KEY", cfg.Speech.GoogleAPIKey)
	cfg.Speech.GoogleEndpoint = getEnv("GOOGLE_SPEECH_ENDPOINT", cfg.Speech.GoogleEndpoint)
	cfg.Speech.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.Speech.OpenAIAPIKey)
	cfg.Speech.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.Speech.OpenAIBaseURL)

	cfg.Supabase.URL = getEnv("SUPABASE_URL", cfg.Supabase.URL)
	cfg.Supabase.Key = getEnv("SUPABASE_KEY", cfg.Supabase.Key)
	cfg.Supabase.Table = getEnv("SUPABASE_TABLE", cfg.Supabase.Table)

	cfg.Database.DSN = getEnv("DATABASE_URL", cfg.Database.DSN)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	port, err := strconv.Atoi(c.HTTP.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %q", c.HTTP.Port)
	}
	if c.Upload.Dir == "" {
		return fmt.Errorf("upload dir cannot be empty")
	}

	switch c.Speech.Provider {
	case "google":
	case "openai":
		if c.Speech.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai speech provider")
		}
	default:
		return fmt.Errorf("speech provider must be one of [google, openai], got %q", c.Speech.Provider)
	}
	if c.Speech.DefaultSampleRate <= 0 {
		return fmt.Errorf("default sample rate must be positive, got %d", c.Speech.DefaultSampleRate)
	}
	if c.Speech.DefaultLanguage == "" {
		return fmt.Errorf("default language cannot be empty")
	}

	if (c.Supabase.URL == "") != (c.Supabase.Key == "") {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set together")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("log level must be one of [debug, info, warn, error], got %q", c.Logging.Level)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
