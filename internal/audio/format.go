// Package audio describes an uploaded recording to the speech recognizer.
package audio

import (
	"mime"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/wav"

	"github.com/Juicern/sttrelay/internal/domain"
)

const (
	EncodingMP3      = "MP3"
	EncodingLinear16 = "LINEAR16"
	EncodingFLAC     = "FLAC"
	EncodingOggOpus  = "OGG_OPUS"
	EncodingWebMOpus = "WEBM_OPUS"
	EncodingAMR      = "AMR"
	EncodingAMRWB    = "AMR_WB"
)

var extensionEncodings = map[string]string{
	".mp3":  EncodingMP3,
	".wav":  EncodingLinear16,
	".flac": EncodingFLAC,
	".ogg":  EncodingOggOpus,
	".opus": EncodingOggOpus,
	".webm": EncodingWebMOpus,
	".amr":  EncodingAMR,
	".awb":  EncodingAMRWB,
}

var contentTypeEncodings = map[string]string{
	"audio/mpeg":   EncodingMP3,
	"audio/mp3":    EncodingMP3,
	"audio/wav":    EncodingLinear16,
	"audio/x-wav":  EncodingLinear16,
	"audio/wave":   EncodingLinear16,
	"audio/flac":   EncodingFLAC,
	"audio/x-flac": EncodingFLAC,
	"audio/ogg":    EncodingOggOpus,
	"audio/opus":   EncodingOggOpus,
	"audio/webm":   EncodingWebMOpus,
	"audio/amr":    EncodingAMR,
	"audio/amr-wb": EncodingAMRWB,
}

type Defaults struct {
	SampleRateHertz int
	LanguageCode    string
}

// Overrides are caller-supplied values taken from the upload form.
type Overrides struct {
	SampleRateHertz int
	LanguageCode    string
}

func ParseSampleRate(value string) int {
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return 0
}

// EncodingFor picks the recognizer encoding from the file extension, then the
// content type. Unknown formats fall back to MP3.
func EncodingFor(ext, contentType string) string {
	if enc, ok := extensionEncodings[strings.ToLower(ext)]; ok {
		return enc
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if enc, ok := contentTypeEncodings[strings.ToLower(mediaType)]; ok {
			return enc
		}
	}
	return EncodingMP3
}

// WAVSampleRate reads the sample rate from a WAV header.
func WAVSampleRate(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() || d.SampleRate == 0 {
		return 0, false
	}
	return int(d.SampleRate), true
}

func Detect(file domain.UploadedFile, overrides Overrides, defaults Defaults) domain.AudioConfig {
	cfg := domain.AudioConfig{
		Encoding:        EncodingFor(file.Extension, file.ContentType),
		SampleRateHertz: defaults.SampleRateHertz,
		LanguageCode:    defaults.LanguageCode,
	}

	switch {
	case overrides.SampleRateHertz > 0:
		cfg.SampleRateHertz = overrides.SampleRateHertz
	case cfg.Encoding == EncodingLinear16:
		if rate, ok := WAVSampleRate(file.Path); ok {
			cfg.SampleRateHertz = rate
		}
	}

	if lang := strings.TrimSpace(overrides.LanguageCode); lang != "" {
		cfg.LanguageCode = lang
	}
	return cfg
}
