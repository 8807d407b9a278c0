package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// Client sends templated text messages through an Evolution API instance.
type Client struct {
	baseURL    string
	apiKey     string
	instance   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an Evolution API client
func NewClient(baseURL, apiKey, instance string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		instance:   instance,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     util.GetLogger(),
	}
}

// Configured reports whether the messaging gateway credentials are present
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != "" && c.instance != ""
}

// FormatPhone normalizes a phone number to the country-code-prefixed
// digit string the gateway expects. Uruguayan local mobile prefixes are
// rewritten to international form: 09x -> 598 9x, 9x -> 598 9x.
func FormatPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, "09") {
		return "598" + digits[1:]
	}
	if strings.HasPrefix(digits, "9") {
		return "598" + digits
	}
	return digits
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendText delivers one text message to a phone number. Callers treat
// failures as best-effort: an undelivered message is logged, never retried.
func (c *Client) SendText(ctx context.Context, phone, message string) error {
	if !c.Configured() {
		return fmt.Errorf("messaging gateway not configured")
	}

	number := FormatPhone(phone)
	payload, err := json.Marshal(sendTextRequest{Number: number, Text: message})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("messaging request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("Messaging gateway error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return fmt.Errorf("messaging gateway returned status %d", resp.StatusCode)
	}

	c.logger.Info("WhatsApp message sent", zap.String("number", number))
	return nil
}
