// Package config loads the chat configuration from .env files, the
// environment and an optional ~/.cascade/config.toml.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/bnema/cascade-chat/internal/ports"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	KeyAPIKey         = "google_api_key"
	KeyAgentName      = "agent_name"
	KeyModelID        = "model_id"
	KeyFallbackModels = "fallback_models"
	KeyUserName       = "user_name"
	KeyUserRole       = "user_role"
	KeyUserDetails    = "user_details"
	KeyPromptTemplate = "system_prompt_template"
	KeyTemperature    = "temperature"
	KeyBaseURL        = "gemini_base_url"
	KeyRequestTimeout = "request_timeout"
	KeyLogLevel       = "log_level"
	KeyTranscriptPath = "transcripts.path"

	// APIKeySecret names the API key inside the secret store.
	APIKeySecret = "gemini/api_key"

	configName = "config"
	configType = "toml"
	configDir  = ".cascade"
)

var defaults = map[string]any{
	KeyAgentName:      "Bot",
	KeyModelID:        "gemini-2.0-flash-lite-001",
	KeyFallbackModels: "gemini-1.5-flash",
	KeyUserName:       "User",
	KeyUserRole:       "",
	KeyUserDetails:    "",
	KeyPromptTemplate: "You are a helpful assistant.",
	KeyTemperature:    "0.5",
	KeyBaseURL:        "",
	KeyRequestTimeout: "2m",
	KeyLogLevel:       "warn",
}

// envAliases maps keys whose variable name is not the upper-cased key.
var envAliases = map[string]string{
	KeyBaseURL:        "GEMINI_BASE_URL",
	KeyRequestTimeout: "CASCADE_REQUEST_TIMEOUT",
	KeyLogLevel:       "CASCADE_LOG_LEVEL",
	KeyTranscriptPath: "CASCADE_TRANSCRIPT_PATH",
}

type Config struct {
	APIKey         string
	AgentName      string
	PrimaryModel   domain.ModelID
	FallbackModels []domain.ModelID
	UserName       string
	UserRole       string
	UserDetails    string
	PromptTemplate string
	Temperature    float64
	BaseURL        string
	RequestTimeout time.Duration
	LogLevel       string
	TranscriptPath string
}

type Options struct {
	// EnvFiles are loaded in order without overriding variables that are
	// already set. Missing files are skipped. Defaults to ".env".
	EnvFiles []string
	// ConfigDir holds config.toml. Defaults to ~/.cascade.
	ConfigDir string
	// Secrets supplies the API key when GOOGLE_API_KEY is not set.
	Secrets ports.SecretStore
}

// Load resolves the configuration into v and validates it.
func Load(ctx context.Context, v *viper.Viper, opts Options) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := readConfigFile(v, opts.ConfigDir); err != nil {
		return nil, err
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.APIKey == "" && opts.Secrets != nil {
		key, err := opts.Secrets.Get(ctx, APIKeySecret)
		switch {
		case err == nil:
			cfg.APIKey = strings.TrimSpace(key)
		case errors.Is(err, domain.ErrSecretNotFound):
		default:
			return nil, fmt.Errorf("read api key from secret store: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: set GOOGLE_API_KEY or run `cascade key set`", domain.ErrMissingAPIKey)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE must be between 0 and 2, got %v", c.Temperature)
	}
	if _, err := c.ModelPool(); err != nil {
		return fmt.Errorf("MODEL_ID and FALLBACK_MODELS: %w", err)
	}
	if _, err := domain.RenderSystemInstruction(c.PromptTemplate, c.PromptValues()); err != nil {
		return fmt.Errorf("SYSTEM_PROMPT_TEMPLATE: %w", err)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("CASCADE_REQUEST_TIMEOUT must be > 0")
	}
	return nil
}

func (c *Config) ModelPool() (domain.ModelPool, error) {
	return domain.NewModelPool(c.PrimaryModel, c.FallbackModels...)
}

func (c *Config) PromptValues() domain.PromptValues {
	return domain.PromptValues{
		AgentName:   c.AgentName,
		UserName:    c.UserName,
		UserRole:    c.UserRole,
		UserDetails: c.UserDetails,
	}
}

// SessionConfig builds the fixed configuration shared by every session.
func (c *Config) SessionConfig(tools []domain.ToolSpec) (domain.SessionConfig, error) {
	instruction, err := domain.RenderSystemInstruction(c.PromptTemplate, c.PromptValues())
	if err != nil {
		return domain.SessionConfig{}, err
	}

	cfg := domain.SessionConfig{
		SystemInstruction: instruction,
		Temperature:       c.Temperature,
		Tools:             tools,
	}
	if err := cfg.Validate(); err != nil {
		return domain.SessionConfig{}, err
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func fromViper(v *viper.Viper) (*Config, error) {
	temperature, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(KeyTemperature)), 64)
	if err != nil {
		return nil, fmt.Errorf("TEMPERATURE must be a number: %w", err)
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString(KeyRequestTimeout)))
	if err != nil {
		return nil, fmt.Errorf("CASCADE_REQUEST_TIMEOUT must be a duration: %w", err)
	}

	return &Config{
		APIKey:         strings.TrimSpace(v.GetString(KeyAPIKey)),
		AgentName:      v.GetString(KeyAgentName),
		PrimaryModel:   domain.ModelID(strings.TrimSpace(v.GetString(KeyModelID))),
		FallbackModels: domain.ParseFallbackModels(v.GetString(KeyFallbackModels)),
		UserName:       v.GetString(KeyUserName),
		UserRole:       v.GetString(KeyUserRole),
		UserDetails:    v.GetString(KeyUserDetails),
		PromptTemplate: v.GetString(KeyPromptTemplate),
		Temperature:    temperature,
		BaseURL:        strings.TrimSpace(v.GetString(KeyBaseURL)),
		RequestTimeout: timeout,
		LogLevel:       v.GetString(KeyLogLevel),
		TranscriptPath: strings.TrimSpace(v.GetString(KeyTranscriptPath)),
	}, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	return nil
}

func readConfigFile(v *viper.Viper, dir string) error {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(homeDir, configDir)
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	return nil
}
