package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/Juicern/sttrelay/internal/domain"
)

// TranscriptionRepository writes transcript rows over a direct Postgres
// connection.
type TranscriptionRepository struct {
	db *sql.DB
}

func NewTranscriptionRepository(db *sql.DB) *TranscriptionRepository {
	return &TranscriptionRepository{db: db}
}

func (r *TranscriptionRepository) Create(ctx context.Context, filePath, transcription string) (domain.TranscriptRecord, error) {
	record := domain.TranscriptRecord{
		ID:            uuid.NewString(),
		FilePath:      filePath,
		Transcription: transcription,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcriptions (id, file_path, transcription, created_at)
		VALUES ($1, $2, $3, $4)
	`, record.ID, record.FilePath, record.Transcription, record.CreatedAt)
	return record, err
}
