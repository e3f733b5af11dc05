package translate

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
	defaultBaseURL = "https://api-free.deepl.com/v2"
	defaultTimeout = 15 * time.Second
)

// languageMap translates site language codes to DeepL target codes.
var languageMap = map[string]string{
	"en": "EN-US",
	"ja": "JA",
	"zh": "ZH",
	"ko": "KO",
}

// Client translates text via the DeepL API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a DeepL client with the given auth key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for
// testing).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type translateRequest struct {
	Text               []string `json:"text"`
	TargetLang         string   `json:"target_lang"`
	Formality          string   `json:"formality"`
	PreserveFormatting bool     `json:"preserve_formatting"`
}

type translateResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// Translate renders text in the target site language. Korean content is the
// source language, so "ko" is a passthrough.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if targetLanguage == "ko" {
		return text, nil
	}

	target, ok := languageMap[targetLanguage]
	if !ok {
		return "", fmt.Errorf("unsupported language: %s", targetLanguage)
	}

	body, err := json.Marshal(translateRequest{
		Text:               []string{text},
		TargetLang:         target,
		Formality:          "more",
		PreserveFormatting: true,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}

	var parsed translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		return "", fmt.Errorf("response contained no translations")
	}
	return parsed.Translations[0].Text, nil
}
