package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client calls the ElevenLabs text-to-speech endpoint with a fixed voice
// identity and prosody settings. A non-success response is fatal for the
// turn; there is no fallback audio.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	voiceID      string
	modelID      string
	outputFormat string
	stability    float64
	similarity   float64
	log          *zap.Logger
}

// Config holds synthesis client configuration.
type Config struct {
	APIKey       string
	VoiceID      string
	ModelID      string
	BaseURL      string
	OutputFormat string
	Stability    float64
	Similarity   float64
	Timeout      time.Duration
}

// DefaultConfig returns the default synthesis configuration.
func DefaultConfig() *Config {
	return &Config{
		ModelID:      "eleven_multilingual_v2",
		BaseURL:      "https://api.elevenlabs.io",
		OutputFormat: "mp3_44100_128",
		Stability:    0.5,
		Similarity:   0.75,
		Timeout:      120 * time.Second,
	}
}

// NewClient creates a new synthesis client.
func NewClient(cfg *Config, log *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		voiceID:      cfg.VoiceID,
		modelID:      cfg.ModelID,
		outputFormat: cfg.OutputFormat,
		stability:    cfg.Stability,
		similarity:   cfg.Similarity,
		log:          log,
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize renders the reply text as audio and returns the encoded bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := synthesisRequest{
		Text:    text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       c.stability,
			SimilarityBoost: c.similarity,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		c.baseURL,
		url.PathEscape(c.voiceID),
		url.QueryEscape(c.outputFormat),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.log.Warn("Synthesis API returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, fmt.Errorf("synthesis API error: status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio stream: %w", err)
	}

	return audio, nil
}
