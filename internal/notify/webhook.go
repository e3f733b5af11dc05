package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const webhookTimeout = 15 * time.Second

// WebhookRelay forwards inquiry payloads to an external automation webhook
// (a Make.com scenario in production).
type WebhookRelay struct {
	url        string
	httpClient *http.Client
}

// NewWebhookRelay creates a relay for the given webhook URL.
func NewWebhookRelay(url string) *WebhookRelay {
	return &WebhookRelay{
		url: url,
		httpClient: &http.Client{
			Timeout: webhookTimeout,
		},
	}
}

// RelayResult is the upstream webhook's verbatim answer.
type RelayResult struct {
	StatusCode int
	Body       string
}

// Relay posts the raw JSON payload to the webhook and returns the upstream
// status and body. A non-2xx upstream answer is returned as a result, not an
// error; the caller decides how to map it.
func (r *WebhookRelay) Relay(ctx context.Context, payload []byte) (RelayResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return RelayResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return RelayResult{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RelayResult{}, fmt.Errorf("reading response: %w", err)
	}

	return RelayResult{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
