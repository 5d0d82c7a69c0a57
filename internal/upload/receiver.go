// Package upload stores multipart audio uploads for the lifetime of a request.
package upload

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Juicern/sttrelay/internal/domain"
)

const contextKey = "upload.file"

type Receiver struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

func NewReceiver(dir string, logger *slog.Logger) (*Receiver, error) {
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Receiver{dir: dir, logger: logger, now: time.Now}, nil
}

// Single accepts one file in the given form field, writes it to the upload
// dir and attaches it to the request. The file is removed once the rest of the
// handler chain has run. failure is the 500 body sent when the file cannot be
// written, so each route keeps its own error envelope.
func (r *Receiver) Single(field string, failure gin.H) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile(field)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": field + " file is required",
			})
			return
		}

		ext := filepath.Ext(header.Filename)
		file := domain.UploadedFile{
			Path:         filepath.Join(r.dir, r.fileName(ext)),
			OriginalName: header.Filename,
			Extension:    ext,
			ContentType:  header.Header.Get("Content-Type"),
			Size:         header.Size,
		}

		if err := c.SaveUploadedFile(header, file.Path); err != nil {
			r.logger.Error("failed to store upload", slog.String("path", file.Path), slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, failure)
			return
		}
		defer r.remove(file.Path)

		c.Set(contextKey, file)
		c.Next()
	}
}

func (r *Receiver) fileName(ext string) string {
	return fmt.Sprintf("%d-%s%s", r.now().UnixMilli(), uuid.NewString()[:8], ext)
}

func (r *Receiver) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove upload", slog.String("path", path), slog.Any("error", err))
	}
}

func FromContext(c *gin.Context) (domain.UploadedFile, bool) {
	value, ok := c.Get(contextKey)
	if !ok {
		return domain.UploadedFile{}, false
	}
	file, ok := value.(domain.UploadedFile)
	return file, ok
}
