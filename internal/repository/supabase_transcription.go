package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/supabase-community/postgrest-go"

	"github.com/Juicern/sttrelay/internal/domain"
)

type supabaseRow struct {
	FilePath      string `json:"file_path"`
	Transcription string `json:"transcription"`
}

// SupabaseTranscriptionRepository inserts transcript rows through the
// project's PostgREST endpoint.
type SupabaseTranscriptionRepository struct {
	client *postgrest.Client
	table  string
}

func NewSupabaseTranscriptionRepository(client *postgrest.Client, table string) *SupabaseTranscriptionRepository {
	if table == "" {
		table = "transcriptions"
	}
	return &SupabaseTranscriptionRepository{client: client, table: table}
}

func (r *SupabaseTranscriptionRepository) Create(_ context.Context, filePath, transcription string) (domain.TranscriptRecord, error) {
	record := domain.TranscriptRecord{
		FilePath:      filePath,
		Transcription: transcription,
		CreatedAt:     time.Now().UTC(),
	}
	row := supabaseRow{FilePath: filePath, Transcription: transcription}
	if _, _, err := r.client.From(r.table).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return record, errors.Wrapf(err, "supabase: insert into %s", r.table)
	}
	return record, nil
}
