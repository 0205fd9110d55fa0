// Package stt wraps the speech-to-text collaborator. The pipeline only needs
// text back; backend selection (hosted API vs. local model) stays behind the
// interface.
package stt

import "context"

// Result is a completed transcription.
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcriber converts an audio reference into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioRef, language string) (Result, error)
}
