package speech

import (
	"bytes"
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

// ErrNoSynthesizer is returned when no synthesizer in a fallback chain could
// produce audio.
var ErrNoSynthesizer = errors.New("speech: no synthesizer available")

// DeepgramConfig configures the Aura text-to-speech endpoint.
type DeepgramConfig struct {
	URL     string        `split_words:"true" default:"https://api.deepgram.com/v1/speak"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model   string        `split_words:"true" default:"aura-asteria-en"`
	Timeout time.Duration `split_words:"true" default:"15s"`
}

// Deepgram calls the Deepgram speak API and returns MP3 bytes.
type Deepgram struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewDeepgram(cfg DeepgramConfig) (*Deepgram, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("deepgram url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("deepgram api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Deepgram{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   strings.TrimSpace(cfg.Model),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNewDeepgram(cfg DeepgramConfig) *Deepgram {
	s, err := NewDeepgram(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

func (d *Deepgram) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	endpoint := d.baseURL
	if d.model != "" {
		endpoint += "?model=" + url.QueryEscape(d.model)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("deepgram: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepgram: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("deepgram: empty audio response")
	}
	return audio, nil
}
