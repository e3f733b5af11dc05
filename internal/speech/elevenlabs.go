package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	defaultTimeout = 30 * time.Second
	ttsModel       = "eleven_multilingual_v2"
)

// VoiceSettings tunes the synthesized voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func defaultVoiceSettings() VoiceSettings {
	return VoiceSettings{Stability: 0.3, SimilarityBoost: 0.8}
}

// Client synthesizes speech via the ElevenLabs text-to-speech API.
type Client struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an ElevenLabs client for the given voice.
func NewClient(apiKey, voiceID string) *Client {
	return &Client{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for
// testing).
func NewClientWithBaseURL(apiKey, voiceID, baseURL string) *Client {
	c := NewClient(apiKey, voiceID)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize converts text to MPEG audio. settings may be nil to use the
// defaults.
func (c *Client) Synthesize(ctx context.Context, text string, settings *VoiceSettings) ([]byte, error) {
	vs := defaultVoiceSettings()
	if settings != nil {
		vs = *settings
	}

	body, err := json.Marshal(ttsRequest{Text: text, ModelID: ttsModel, VoiceSettings: vs})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/text-to-speech/"+c.voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("authentication failed: invalid API key")
	case http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("invalid request: text too long or malformed")
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("quota exceeded")
	default:
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("generated audio is empty")
	}
	return audio, nil
}
