package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juicern/sttrelay/internal/audio"
	"github.com/Juicern/sttrelay/internal/config"
	"github.com/Juicern/sttrelay/internal/domain"
	"github.com/Juicern/sttrelay/internal/metrics"
	"github.com/Juicern/sttrelay/internal/providers"
	"github.com/Juicern/sttrelay/internal/repository"
	"github.com/Juicern/sttrelay/internal/service"
	"github.com/Juicern/sttrelay/internal/upload"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTranscription struct {
	mu        sync.Mutex
	text      string
	err       error
	files     []domain.UploadedFile
	overrides []audio.Overrides
	existed   []bool
}

func (f *fakeTranscription) Transcribe(_ context.Context, file domain.UploadedFile, overrides audio.Overrides) (domain.TranscriptionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, statErr := os.Stat(file.Path)
	f.existed = append(f.existed, statErr == nil)
	f.files = append(f.files, file)
	f.overrides = append(f.overrides, overrides)
	if f.err != nil {
		return domain.TranscriptionResult{}, f.err
	}
	return domain.TranscriptionResult{Segments: strings.Split(f.text, "\n"), Text: f.text}, nil
}

func newTestRouter(t *testing.T, tr Transcriber) (http.Handler, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := filepath.Join(t.TempDir(), "uploads")
	receiver, err := upload.NewReceiver(dir, logger)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	cfg := config.Default().HTTP
	return NewRouter(cfg, tr, receiver, metrics.NewMetrics(reg), reg, logger), dir
}

func audioRequest(t *testing.T, path, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("ID3 fake mp3 payload"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	router, _ := newTestRouter(t, &fakeTranscription{})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Speech-to-Text API is running!", rec.Body.String())
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &fakeTranscription{})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTranscribeSuccess(t *testing.T) {
	tr := &fakeTranscription{text: "hello world"}
	router, dir := newTestRouter(t, tr)

	rec := serve(router, audioRequest(t, "/transcribe", "hello.mp3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"hello world"}`, rec.Body.String())

	require.Len(t, tr.files, 1)
	assert.True(t, tr.existed[0], "upload must exist while the pipeline runs")
	assert.Equal(t, "hello.mp3", tr.files[0].OriginalName)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "upload dir should be empty after the request")
}

func TestTranscribeMultiSegment(t *testing.T) {
	router, _ := newTestRouter(t, &fakeTranscription{text: "first\nsecond"})

	rec := serve(router, audioRequest(t, "/transcribe", "clip.mp3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"first\nsecond"}`, rec.Body.String())
}

func TestTranscribeFormOverrides(t *testing.T) {
	tr := &fakeTranscription{text: "namaste"}
	router, _ := newTestRouter(t, tr)

	rec := serve(router, audioRequest(t, "/transcribe", "clip.wav", map[string]string{
		"language_code":     "hi-IN",
		"sample_rate_hertz": "8000",
	}))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, tr.overrides, 1)
	assert.Equal(t, audio.Overrides{SampleRateHertz: 8000, LanguageCode: "hi-IN"}, tr.overrides[0])
}

func TestTranscribeFailure(t *testing.T) {
	tr := &fakeTranscription{err: errors.New("upstream unavailable")}
	router, dir := newTestRouter(t, tr)

	rec := serve(router, audioRequest(t, "/transcribe", "hello.mp3", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Transcription failed"}`, rec.Body.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "upload dir should be empty after a failed request")
}

func TestTranscribeMissingAudio(t *testing.T) {
	tr := &fakeTranscription{}
	router, _ := newTestRouter(t, tr)

	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(""))
	rec := serve(router, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, tr.files)
}

func TestUploadRunsPipeline(t *testing.T) {
	tr := &fakeTranscription{text: "hello world"}
	router, _ := newTestRouter(t, tr)

	rec := serve(router, audioRequest(t, "/upload", "hello.mp3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Success","transcription":"hello world"}`, rec.Body.String())
	assert.Len(t, tr.files, 1)
}

func TestUploadFailure(t *testing.T) {
	router, _ := newTestRouter(t, &fakeTranscription{err: errors.New("boom")})

	rec := serve(router, audioRequest(t, "/upload", "hello.mp3", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &fakeTranscription{text: "hi"})
	serve(router, audioRequest(t, "/transcribe", "hello.mp3", nil))

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stt_http_requests_total{method="POST",route="/transcribe",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, &fakeTranscription{})

	req := httptest.NewRequest(http.MethodOptions, "/transcribe", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(router, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestConcurrentTranscribeRequests(t *testing.T) {
	tr := &fakeTranscription{text: "ok"}
	router, _ := newTestRouter(t, tr)

	const n = 16
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		req := audioRequest(t, "/transcribe", "same.mp3", nil)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = serve(router, req).Code
		}(i)
	}
	wg.Wait()

	paths := make(map[string]struct{})
	for _, f := range tr.files {
		paths[f.Path] = struct{}{}
	}
	assert.Len(t, paths, n)
	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
}

func TestUploadDirFailureKeepsRouteEnvelope(t *testing.T) {
	tr := &fakeTranscription{text: "hello world"}
	router, dir := newTestRouter(t, tr)
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a dir"), 0o644))

	rec := serve(router, audioRequest(t, "/upload", "hello.mp3", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong"}`, rec.Body.String())

	rec = serve(router, audioRequest(t, "/transcribe", "hello.mp3", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Transcription failed"}`, rec.Body.String())

	assert.Empty(t, tr.files)
}

func TestServesWithoutGoogleCredentials(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	svc := service.NewTranscriptionService(
		providers.NewUnavailable(providers.GoogleProvider, errors.New("could not find default credentials")),
		repository.DiscardRepository{},
		audio.Defaults{SampleRateHertz: 16000, LanguageCode: "en-US"},
		m,
		logger,
	)
	receiver, err := upload.NewReceiver(filepath.Join(t.TempDir(), "uploads"), logger)
	require.NoError(t, err)
	router := NewRouter(config.Default().HTTP, svc, receiver, m, reg, logger)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Speech-to-Text API is running!", rec.Body.String())

	rec = serve(router, audioRequest(t, "/transcribe", "hello.mp3", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Transcription failed"}`, rec.Body.String())
}
