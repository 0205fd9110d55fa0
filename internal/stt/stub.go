package stt

import "context"

// Stub returns a fixed placeholder transcription. Permitted only in
// non-production configurations.
type Stub struct{}

func (Stub) Transcribe(ctx context.Context, audioRef, language string) (Result, error) {
	return Result{
		Text:     "(transcription stub - configure a speech-to-text backend for production)",
		Language: language,
	}, nil
}
