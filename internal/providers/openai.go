package providers

import (
	"bytes"
	"context"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Juicern/sttrelay/internal/domain"
)

const OpenAIProvider = "openai"

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("missing OpenAI API key")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}, nil
}

func (c *OpenAIClient) Name() string { return OpenAIProvider }

// Transcribe sends the recording to Whisper. Whisper detects the encoding and
// sample rate itself and returns a single segment.
func (c *OpenAIClient) Transcribe(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	filename := req.Filename
	if filename == "" {
		filename = "audio.mp3"
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(req.Audio),
		Language: whisperLanguage(req.Config.LanguageCode),
	})
	if err != nil {
		return domain.TranscriptionResult{}, errors.Wrapf(err, "openai: transcribe %s", filename)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return joinSegments(nil), nil
	}
	return joinSegments([]string{text}), nil
}

// whisperLanguage reduces a BCP-47 tag such as en-US to its ISO-639-1 part.
func whisperLanguage(code string) string {
	lang, _, _ := strings.Cut(code, "-")
	return strings.ToLower(lang)
}
