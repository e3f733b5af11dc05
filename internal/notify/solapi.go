package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	solapiBaseURL = "https://api.solapi.com"
	solapiTimeout = 15 * time.Second
	alimtalkType  = "ATA"
	saltLength    = 9
	saltCharset   = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// AlimtalkMessage is one KakaoTalk notification send.
type AlimtalkMessage struct {
	To         string
	From       string
	TemplateID string
	Variables  map[string]string
}

// AlimtalkClient sends KakaoTalk notification messages (알림톡) through the
// Solapi messaging API.
type AlimtalkClient struct {
	apiKey     string
	apiSecret  string
	pfID       string
	baseURL    string
	httpClient *http.Client
}

// NewAlimtalkClient creates a Solapi client for the given Kakao channel
// (pfID).
func NewAlimtalkClient(apiKey, apiSecret, pfID string) *AlimtalkClient {
	return &AlimtalkClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		pfID:      pfID,
		baseURL:   solapiBaseURL,
		httpClient: &http.Client{
			Timeout: solapiTimeout,
		},
	}
}

// NewAlimtalkClientWithBaseURL creates a client pointing at a custom base
// URL (for testing).
func NewAlimtalkClientWithBaseURL(apiKey, apiSecret, pfID, baseURL string) *AlimtalkClient {
	c := NewAlimtalkClient(apiKey, apiSecret, pfID)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Send delivers one Alimtalk message. SMS fallback is disabled: if the
// recipient cannot receive KakaoTalk the send fails rather than billing an
// SMS.
func (c *AlimtalkClient) Send(ctx context.Context, msg AlimtalkMessage) error {
	payload := map[string]any{
		"message": map[string]any{
			"to":   msg.To,
			"from": msg.From,
			"type": alimtalkType,
			"kakaoOptions": map[string]any{
				"pfId":       c.pfID,
				"templateId": msg.TemplateID,
				"disableSms": true,
				"variables":  msg.Variables,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages/v4/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	date := time.Now().UTC().Format(time.RFC3339)
	salt, err := randomSalt()
	if err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	req.Header.Set("Authorization", solapiAuthHeader(c.apiKey, c.apiSecret, date, salt))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}

// solapiAuthHeader builds the HMAC-SHA256 authorization header: the
// signature covers the concatenated date and salt.
func solapiAuthHeader(apiKey, apiSecret, date, salt string) string {
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(date + salt))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s", apiKey, date, salt, signature)
}

func randomSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = saltCharset[int(b)%len(saltCharset)]
	}
	return string(buf), nil
}
