package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	dErrors "scribed/internal/domainerrors"
	"scribed/internal/platform/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIClient(config.TextGenConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	})
}

func TestOpenAIClientGenerate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, chatCompletionsPath, r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)
		require.Equal(t, "user", req.Messages[1].Role)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Chief complaint: cough."}},
			},
		})
	})

	out, err := client.Generate(context.Background(), "extract the chief complaint", "transcript text")
	require.NoError(t, err)
	require.Equal(t, "Chief complaint: cough.", out)
}

func TestOpenAIClientGenerateUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := client.Generate(context.Background(), "sys", "user")
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeCollaborator))
}

func TestOpenAIClientGenerateEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.Generate(context.Background(), "sys", "user")
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeCollaborator))
}
