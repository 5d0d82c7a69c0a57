package domain

import "time"

type UploadedFile struct {
	Path         string
	OriginalName string
	Extension    string
	ContentType  string
	Size         int64
}

type AudioConfig struct {
	Encoding        string
	SampleRateHertz int
	LanguageCode    string
}

type TranscriptionRequest struct {
	Audio    []byte
	Filename string
	Config   AudioConfig
}

// TranscriptionResult holds the top alternative of every recognized segment,
// in the order the service returned them. Text is Segments joined by newline.
type TranscriptionResult struct {
	Segments []string
	Text     string
}

type TranscriptRecord struct {
	ID            string    `db:"id" json:"id,omitempty"`
	FilePath      string    `db:"file_path" json:"file_path"`
	Transcription string    `db:"transcription" json:"transcription"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
