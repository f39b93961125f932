// Package telephony is a minimal Twilio REST client: it places outbound
// calls that fetch their instructions from our webhook, and sends the SMS
// messages the login flow needs.
package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	AccountSID string        `envconfig:"ACCOUNT_SID" split_words:"true" required:"true"`
	AuthToken  string        `envconfig:"AUTH_TOKEN" split_words:"true" required:"true"`
	FromNumber string        `envconfig:"FROM_NUMBER" split_words:"true" required:"true"`
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.twilio.com"`
	Timeout    time.Duration `split_words:"true" default:"15s"`
}

type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" {
		return nil, errors.New("twilio account sid is required")
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("twilio auth token is required")
	}
	if strings.TrimSpace(cfg.FromNumber) == "" {
		return nil, errors.New("twilio from number is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		accountSID: strings.TrimSpace(cfg.AccountSID),
		authToken:  strings.TrimSpace(cfg.AuthToken),
		fromNumber: strings.TrimSpace(cfg.FromNumber),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// PlaceCall starts an outbound call to the given number. Twilio fetches the
// voice instructions from webhookURL once the call connects. Returns the call
// SID.
func (c *Client) PlaceCall(ctx context.Context, to, webhookURL string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Url", webhookURL)
	form.Set("Method", http.MethodPost)

	body, err := c.post(ctx, "Calls.json", form)
	if err != nil {
		return "", err
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("twilio: decode call response: %w", err)
	}
	return out.SID, nil
}

// SendSMS sends a text message from the configured number.
func (c *Client) SendSMS(ctx context.Context, to, text string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", text)

	_, err := c.post(ctx, "Messages.json", form)
	return err
}

func (c *Client) post(ctx context.Context, resource string, form url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s", c.baseURL, c.accountSID, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("twilio: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("twilio: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
