package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	dErrors "scribed/internal/domainerrors"
	"scribed/internal/platform/config"
)

// HTTPTranscriber calls a hosted transcription service.
type HTTPTranscriber struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPTranscriber(cfg config.STTConfig) *HTTPTranscriber {
	return &HTTPTranscriber{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioRef, language string) (Result, error) {
	payload, err := json.Marshal(map[string]string{
		"audio_ref": audioRef,
		"language":  language,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/transcribe", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeCollaborator, "transcription request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, dErrors.Newf(dErrors.CodeCollaborator, "transcription returned %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeCollaborator, "decode transcription response")
	}
	if result.Language == "" {
		result.Language = language
	}
	return result, nil
}
