package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bnema/cascade-chat/internal/adapters/backend/gemini"
	chatrender "github.com/bnema/cascade-chat/internal/adapters/render/chat"
	tomlrepo "github.com/bnema/cascade-chat/internal/adapters/repo/toml"
	chainstore "github.com/bnema/cascade-chat/internal/adapters/secrets/chain"
	"github.com/bnema/cascade-chat/internal/adapters/tools"
	"github.com/bnema/cascade-chat/internal/application"
	"github.com/bnema/cascade-chat/internal/config"
	"github.com/bnema/cascade-chat/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	config      *config.Config
	logger      *slog.Logger
	chat        *application.ChatService
	catalog     ports.ModelCatalog
	transcripts *tomlrepo.TranscriptRepository
	renderer    chatrender.Renderer
}

type wireOptions struct {
	envFiles []string
	logOut   io.Writer
}

func wireApp(ctx context.Context, opts wireOptions) (*app, error) {
	secrets, err := wireSecretStore()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	cfg, err := config.Load(ctx, v, config.Options{EnvFiles: opts.envFiles, Secrets: secrets})
	if err != nil {
		return nil, err
	}

	logger := newLogger(opts.logOut, cfg.SlogLevel())

	pool, err := cfg.ModelPool()
	if err != nil {
		return nil, fmt.Errorf("wire model pool: %w", err)
	}

	registry := tools.Default()
	sessionConfig, err := cfg.SessionConfig(registry.Specs())
	if err != nil {
		return nil, fmt.Errorf("wire session config: %w", err)
	}

	clock := ports.SystemClock{}
	client := &gemini.Client{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		HTTPClient:     http.DefaultClient,
		RequestTimeout: cfg.RequestTimeout,
		Tools:          registry,
		Clock:          clock,
		Logger:         logger,
	}

	transcripts, err := tomlrepo.NewTranscriptRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire transcript repository: %w", err)
	}

	manager := application.NewSessionManager(pool, sessionConfig, client, logger)
	cascade := application.NewCascade(manager, logger)

	return &app{
		config:      cfg,
		logger:      logger,
		chat:        application.NewChatService(manager, cascade, transcripts, clock, logger),
		catalog:     client,
		transcripts: transcripts,
		renderer:    chatrender.NewRenderer(cfg.AgentName, cfg.UserName, pool.Primary()),
	}, nil
}

func newLogger(out io.Writer, level slog.Level) *slog.Logger {
	if out == nil {
		out = io.Discard
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// wireSecretStore picks the backend from CASCADE_SECRET_BACKEND (auto, pass or
// file). File secrets live under ~/.cascade/secrets.
func wireSecretStore() (ports.SecretStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	store, err := chainstore.Open(envOrDefault("CASCADE_SECRET_BACKEND", chainstore.BackendAuto), filepath.Join(homeDir, ".cascade", "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}
	return store, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
