package whatsapp

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the external WhatsApp HTTP gateway. It is the direct
// notification channel used when no broker is configured, and the
// delivery channel used by the queue worker.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	Path       string
	HTTPClient *http.Client
}

type sendMessageRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewClient(baseURL, username, password, path string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Path:     path,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NormalizePhone strips everything but digits. An empty result means the
// contact is not phone-like and cannot be messaged.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Send delivers a plain-text message to the target phone number.
func (c *Client) Send(phone, message string) error {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return fmt.Errorf("invalid phone number %q", phone)
	}

	requestData := sendMessageRequest{
		Phone:   normalized + "@s.whatsapp.net",
		Message: message,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := fmt.Sprintf("%s/%s/send/message", c.BaseURL, c.Path)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var response sendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !response.Success {
		return fmt.Errorf("whatsapp gateway rejected message: %s", response.Message)
	}

	return nil
}
