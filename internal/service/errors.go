package service

import "errors"

var (
	ErrProviderNotSupported = errors.New("speech provider not supported")
	ErrTranscriptionFailed  = errors.New("transcription failed")
)
