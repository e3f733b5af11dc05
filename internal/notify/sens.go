package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	sensBaseURL = "https://sens.apigw.ntruss.com"
	sensTimeout = 15 * time.Second
)

// SMSClient sends text messages through the Naver Cloud SENS API.
type SMSClient struct {
	accessKey  string
	secretKey  string
	serviceID  string
	from       string
	baseURL    string
	httpClient *http.Client
}

// NewSMSClient creates a SENS client sending from the given number.
func NewSMSClient(accessKey, secretKey, serviceID, from string) *SMSClient {
	return &SMSClient{
		accessKey: accessKey,
		secretKey: secretKey,
		serviceID: serviceID,
		from:      from,
		baseURL:   sensBaseURL,
		httpClient: &http.Client{
			Timeout: sensTimeout,
		},
	}
}

// NewSMSClientWithBaseURL creates a client pointing at a custom base URL
// (for testing).
func NewSMSClientWithBaseURL(accessKey, secretKey, serviceID, from, baseURL string) *SMSClient {
	c := NewSMSClient(accessKey, secretKey, serviceID, from)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Send delivers one SMS to the recipient.
func (c *SMSClient) Send(ctx context.Context, to, content string) error {
	path := "/sms/v2/services/" + c.serviceID + "/messages"
	payload := map[string]any{
		"type":     "SMS",
		"from":     c.from,
		"content":  content,
		"messages": []map[string]string{{"to": to}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-ncp-apigw-timestamp", timestamp)
	req.Header.Set("x-ncp-iam-access-key", c.accessKey)
	req.Header.Set("x-ncp-apigw-signature-v2", sensSignature(c.secretKey, http.MethodPost, path, timestamp, c.accessKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	// SENS answers 202 Accepted on successful queueing.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}

// sensSignature computes the API gateway signature-v2: a base64 HMAC-SHA256
// over "{method} {path}\n{timestamp}\n{accessKey}".
func sensSignature(secretKey, method, path, timestamp, accessKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(method + " " + path + "\n" + timestamp + "\n" + accessKey))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
