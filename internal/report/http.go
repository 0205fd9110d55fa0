package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scribed/internal/platform/config"
)

// HTTPTransmitter posts reports to a configurable reporting API. When no API
// endpoint is configured the payload is handed back for manual review instead
// of being dropped. Delivery failures are reported through the receipt status
// rather than an error, so the caller records them like any other outcome.
type HTTPTransmitter struct {
	apiURL     string
	apiToken   string
	httpClient *http.Client
}

func NewHTTPTransmitter(cfg config.ReportConfig) *HTTPTransmitter {
	return &HTTPTransmitter{
		apiURL:   cfg.URL,
		apiToken: cfg.Token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewBillingTransmitter points the same submission mechanics at the claims
// channel.
func NewBillingTransmitter(cfg config.BillingConfig) *HTTPTransmitter {
	return &HTTPTransmitter{
		apiURL:   cfg.URL,
		apiToken: cfg.Token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (t *HTTPTransmitter) Submit(ctx context.Context, payload any) (Receipt, error) {
	if t.apiURL == "" {
		return Receipt{
			Status:  StatusManualReview,
			Details: map[string]any{"form": payload},
		}, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal report payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiToken)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Receipt{
			Status:  StatusError,
			Details: map[string]any{"error": err.Error()},
		}, nil
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{
			Status:  StatusError,
			Details: map[string]any{"http_status": resp.StatusCode},
		}, nil
	}

	return Receipt{
		Status: StatusSent,
		Details: map[string]any{
			"http_status": resp.StatusCode,
			"response":    string(respBody),
		},
	}, nil
}
