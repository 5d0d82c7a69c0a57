package repository

import (
	"context"
	"time"

	"github.com/Juicern/sttrelay/internal/domain"
)

// DiscardRepository is used when no database is configured.
type DiscardRepository struct{}

func (DiscardRepository) Create(_ context.Context, filePath, transcription string) (domain.TranscriptRecord, error) {
	return domain.TranscriptRecord{
		FilePath:      filePath,
		Transcription: transcription,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
