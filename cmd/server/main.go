package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Juicern/sttrelay/internal/audio"
	"github.com/Juicern/sttrelay/internal/config"
	"github.com/Juicern/sttrelay/internal/httpapi"
	"github.com/Juicern/sttrelay/internal/metrics"
	"github.com/Juicern/sttrelay/internal/providers"
	"github.com/Juicern/sttrelay/internal/repository"
	"github.com/Juicern/sttrelay/internal/server"
	"github.com/Juicern/sttrelay/internal/service"
	"github.com/Juicern/sttrelay/internal/storage"
	"github.com/Juicern/sttrelay/internal/upload"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Logging)
	if envErr != nil {
		logger.Debug("no .env file loaded", slog.Any("error", envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := newRegistry(ctx, cfg.Speech, logger)
	if err != nil {
		logger.Error("failed to initialize speech provider", slog.String("provider", cfg.Speech.Provider), slog.Any("error", err))
		os.Exit(1)
	}

	store, db, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize transcript store", slog.Any("error", err))
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	transcriptionService, err := service.NewTranscriptionServiceFromRegistry(
		registry,
		cfg.Speech.Provider,
		store,
		audio.Defaults{SampleRateHertz: cfg.Speech.DefaultSampleRate, LanguageCode: cfg.Speech.DefaultLanguage},
		appMetrics,
		logger,
	)
	if err != nil {
		logger.Error("failed to create transcription service", slog.Any("error", err))
		os.Exit(1)
	}

	receiver, err := upload.NewReceiver(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Error("failed to prepare upload dir", slog.String("dir", cfg.Upload.Dir), slog.Any("error", err))
		os.Exit(1)
	}

	handler := httpapi.NewRouter(cfg.HTTP, transcriptionService, receiver, appMetrics, reg, logger)
	srv := server.New(cfg.HTTP, handler, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// newRegistry builds the configured speech provider once. Other providers are
// registered when their credentials are present. A Google client that cannot
// be built is registered as unavailable instead of stopping startup.
func newRegistry(ctx context.Context, cfg config.SpeechConfig, logger *slog.Logger) (*providers.Registry, error) {
	registry := providers.NewRegistry()

	if cfg.Provider == providers.GoogleProvider || cfg.GoogleCredentialsFile != "" || cfg.GoogleAPIKey != "" {
		client, err := providers.NewGoogleClient(ctx, providers.GoogleConfig{
			CredentialsFile: cfg.GoogleCredentialsFile,
			APIKey:          cfg.GoogleAPIKey,
			Endpoint:        cfg.GoogleEndpoint,
		})
		if err != nil {
			// Keep serving; transcription requests fail until credentials are fixed.
			logger.Warn("google speech provider unavailable", slog.Any("error", err))
			registry.Register(providers.NewUnavailable(providers.GoogleProvider, err))
		} else {
			registry.Register(client)
		}
	}

	if cfg.OpenAIAPIKey != "" {
		client, err := providers.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, err
		}
		registry.Register(client)
	}

	logger.Info("speech providers ready", slog.String("active", cfg.Provider), slog.Any("registered", registry.Names()))
	return registry, nil
}

func newStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.TranscriptStore, *sql.DB, error) {
	switch {
	case cfg.Supabase.Enabled():
		client, err := storage.NewSupabaseClient(cfg.Supabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("saving transcripts to supabase", slog.String("table", cfg.Supabase.Table))
		return repository.NewSupabaseTranscriptionRepository(client, cfg.Supabase.Table), nil, nil

	case cfg.Database.DSN != "":
		db, err := storage.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("saving transcripts to postgres")
		return repository.NewTranscriptionRepository(db), db, nil

	default:
		logger.Warn("no database configured, transcripts will not be saved")
		return repository.DiscardRepository{}, nil, nil
	}
}
