package providers

import (
	"context"
	"strings"

	"github.com/Juicern/sttrelay/internal/domain"
)

type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, req domain.TranscriptionRequest) (domain.TranscriptionResult, error)
}

type Registry struct {
	transcribers map[string]Transcriber
}

func NewRegistry() *Registry {
	return &Registry{
		transcribers: make(map[string]Transcriber),
	}
}

func (r *Registry) Register(t Transcriber) {
	r.transcribers[strings.ToLower(t.Name())] = t
}

func (r *Registry) Transcriber(provider string) (Transcriber, bool) {
	t, ok := r.transcribers[strings.ToLower(provider)]
	return t, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.transcribers))
	for name := range r.transcribers {
		names = append(names, name)
	}
	return names
}

// joinSegments builds the result text, one segment per line.
func joinSegments(segments []string) domain.TranscriptionResult {
	return domain.TranscriptionResult{
		Segments: segments,
		Text:     strings.Join(segments, "\n"),
	}
}
