package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Juicern/sttrelay/internal/audio"
	"github.com/Juicern/sttrelay/internal/domain"
	"github.com/Juicern/sttrelay/internal/metrics"
	"github.com/Juicern/sttrelay/internal/providers"
)

type TranscriptStore interface {
	Create(ctx context.Context, filePath, transcription string) (domain.TranscriptRecord, error)
}

type TranscriptionService struct {
	transcriber providers.Transcriber
	store       TranscriptStore
	defaults    audio.Defaults
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewTranscriptionService(
	transcriber providers.Transcriber,
	store TranscriptStore,
	defaults audio.Defaults,
	m *metrics.Metrics,
	logger *slog.Logger,
) *TranscriptionService {
	return &TranscriptionService{
		transcriber: transcriber,
		store:       store,
		defaults:    defaults,
		metrics:     m,
		logger:      logger,
	}
}

// NewTranscriptionServiceFromRegistry picks the configured provider out of the
// registry.
func NewTranscriptionServiceFromRegistry(
	registry *providers.Registry,
	provider string,
	store TranscriptStore,
	defaults audio.Defaults,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*TranscriptionService, error) {
	transcriber, ok := registry.Transcriber(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotSupported, provider)
	}
	return NewTranscriptionService(transcriber, store, defaults, m, logger), nil
}

// Transcribe reads the uploaded file, sends it to the speech provider and
// records the transcript. A failed insert is logged and never fails the call.
func (t *TranscriptionService) Transcribe(ctx context.Context, file domain.UploadedFile, overrides audio.Overrides) (domain.TranscriptionResult, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return domain.TranscriptionResult{}, fmt.Errorf("%w: read upload: %v", ErrTranscriptionFailed, err)
	}

	req := domain.TranscriptionRequest{
		Audio:    data,
		Filename: file.OriginalName,
		Config:   audio.Detect(file, overrides, t.defaults),
	}

	provider := t.transcriber.Name()
	t.metrics.TranscriptionRequests.WithLabelValues(provider).Inc()
	t.metrics.TranscriptionAudioSize.Observe(float64(len(data)))

	start := time.Now()
	result, err := t.transcriber.Transcribe(ctx, req)
	t.metrics.TranscriptionDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		t.metrics.TranscriptionFailures.WithLabelValues(provider).Inc()
		return domain.TranscriptionResult{}, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	t.logger.Debug("transcription completed",
		slog.String("provider", provider),
		slog.String("file", file.Path),
		slog.String("encoding", req.Config.Encoding),
		slog.Int("sample_rate_hertz", req.Config.SampleRateHertz),
		slog.String("language_code", req.Config.LanguageCode),
		slog.Int("segments", len(result.Segments)),
	)

	// The insert is attempted even if the caller has gone away.
	t.persist(context.WithoutCancel(ctx), file.Path, result.Text)
	return result, nil
}

func (t *TranscriptionService) persist(ctx context.Context, filePath, text string) {
	record, err := t.store.Create(ctx, filePath, text)
	if err != nil {
		t.metrics.StoreFailures.Inc()
		t.logger.Error("failed to save transcription", slog.String("file", filePath), slog.Any("error", err))
		return
	}
	t.metrics.StoreInserts.Inc()
	t.logger.Info("transcription saved",
		slog.String("id", record.ID),
		slog.String("file", record.FilePath),
		slog.Int("chars", len(record.Transcription)),
	)
}
