package providers

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Juicern/sttrelay/internal/domain"
)

// Unavailable stands in for a provider whose client could not be built at
// startup. Every call fails with the original construction error, so the
// server can still come up and answer the routes that need no transcription.
type Unavailable struct {
	name string
	err  error
}

func NewUnavailable(name string, err error) *Unavailable {
	return &Unavailable{name: name, err: err}
}

func (u *Unavailable) Name() string {
	return u.name
}

func (u *Unavailable) Transcribe(_ context.Context, _ domain.TranscriptionRequest) (domain.TranscriptionResult, error) {
	return domain.TranscriptionResult{}, errors.Wrapf(u.err, "%s unavailable", u.name)
}
