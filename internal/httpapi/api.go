package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Juicern/sttrelay/internal/audio"
	"github.com/Juicern/sttrelay/internal/domain"
	"github.com/Juicern/sttrelay/internal/upload"
)

const (
	audioField   = "audio"
	healthBanner = "Speech-to-Text API is running!"

	uploadFailed     = "Something went wrong"
	transcribeFailed = "Transcription failed"
)

var errUploadMissing = errors.New("upload missing from request context")

type Transcriber interface {
	Transcribe(ctx context.Context, file domain.UploadedFile, overrides audio.Overrides) (domain.TranscriptionResult, error)
}

type API struct {
	transcription Transcriber
	logger        *slog.Logger
}

func (api *API) root(c *gin.Context) {
	c.String(http.StatusOK, healthBanner)
}

// upload runs the same pipeline as transcribe and reports the result in the
// legacy envelope.
func (api *API) upload(c *gin.Context) {
	result, err := api.run(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": uploadFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Success", "transcription": result.Text})
}

func (api *API) transcribe(c *gin.Context) {
	result, err := api.run(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": transcribeFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": result.Text})
}

func (api *API) run(c *gin.Context) (domain.TranscriptionResult, error) {
	file, ok := upload.FromContext(c)
	if !ok {
		api.logger.Error("upload missing from request context", slog.String("path", c.FullPath()))
		return domain.TranscriptionResult{}, errUploadMissing
	}

	overrides := audio.Overrides{
		SampleRateHertz: audio.ParseSampleRate(c.PostForm("sample_rate_hertz")),
		LanguageCode:    c.PostForm("language_code"),
	}

	result, err := api.transcription.Transcribe(c.Request.Context(), file, overrides)
	if err != nil {
		api.logger.Error("transcription failed",
			slog.String("file", file.Path),
			slog.String("original_name", file.OriginalName),
			slog.Any("error", err),
		)
		return domain.TranscriptionResult{}, err
	}
	return result, nil
}
