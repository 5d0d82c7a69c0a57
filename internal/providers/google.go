package providers

import (
	"context"
	"encoding/base64"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"

	"github.com/Juicern/sttrelay/internal/domain"
)

const GoogleProvider = "google"

type GoogleConfig struct {
	CredentialsFile string
	APIKey          string
	Endpoint        string
}

// GoogleClient calls the Speech-to-Text REST API. The underlying service is
// safe for concurrent use and is built once per process.
type GoogleClient struct {
	svc *speech.Service
}

func NewGoogleClient(ctx context.Context, cfg GoogleConfig, opts ...option.ClientOption) (*GoogleClient, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := speech.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "google speech: create service")
	}
	return &GoogleClient{svc: svc}, nil
}

func (c *GoogleClient) Name() string { return GoogleProvider }

func (c *GoogleClient) Transcribe(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	resp, err := c.svc.Speech.Recognize(&speech.RecognizeRequest{
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(req.Audio),
		},
		Config: &speech.RecognitionConfig{
			Encoding:        req.Config.Encoding,
			SampleRateHertz: int64(req.Config.SampleRateHertz),
			LanguageCode:    req.Config.LanguageCode,
		},
	}).Context(ctx).Do()
	if err != nil {
		return domain.TranscriptionResult{}, errors.Wrapf(err, "google speech: recognize %s", req.Filename)
	}

	segments := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		if result == nil || len(result.Alternatives) == 0 {
			continue
		}
		segments = append(segments, result.Alternatives[0].Transcript)
	}
	return joinSegments(segments), nil
}
