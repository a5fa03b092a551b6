package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voxline/internal/domain"
)

// Client calls the Gemini generateContent endpoint with the persona system
// instruction, the role-mapped conversation history and the latest
// transcript. It supports two response contracts: free text, and a
// structured JSON envelope carrying text, a compliance score and reasoning.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	model           string
	system          string
	structured      bool
	maxOutputTokens int
	temperature     float64
	log             *zap.Logger
}

// Config holds generation client configuration.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	SystemInstruction string
	Structured        bool
	MaxOutputTokens   int
	Temperature       float64
	Timeout           time.Duration
}

// DefaultConfig returns the default generation configuration.
func DefaultConfig() *Config {
	return &Config{
		Model:           "gemini-2.0-flash",
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		MaxOutputTokens: 256,
		Temperature:     0.9,
		Timeout:         60 * time.Second,
	}
}

// NewClient creates a new generation client.
func NewClient(cfg *Config, log *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = 256
	}

	return &Client{
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		model:           cfg.Model,
		system:          cfg.SystemInstruction,
		structured:      cfg.Structured,
		maxOutputTokens: cfg.MaxOutputTokens,
		temperature:     cfg.Temperature,
		log:             log,
	}
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type request struct {
	SystemInstruct   *content         `json:"systemInstruction,omitempty"`
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// structuredReply is the JSON envelope requested in structured mode.
type structuredReply struct {
	Text       string `json:"text"`
	Compliance *int   `json:"compliance"`
	Reasoning  string `json:"reasoning"`
}

// Generate asks the model for the persona's next reply. History entries are
// forwarded in their original order, each remapped into the provider's role
// vocabulary, with the transcript appended as the newest user turn.
func (c *Client) Generate(ctx context.Context, transcript string, history []domain.HistoryEntry) (*domain.GenerationResult, error) {
	contents := make([]content, 0, len(history)+1)
	for _, entry := range history {
		contents = append(contents, content{
			Role:  entry.Role.ProviderRole(),
			Parts: []part{{Text: entry.Content}},
		})
	}
	contents = append(contents, content{
		Role:  "user",
		Parts: []part{{Text: transcript}},
	})

	genCfg := generationConfig{
		MaxOutputTokens: c.maxOutputTokens,
		Temperature:     c.temperature,
	}
	if c.structured {
		genCfg.ResponseMIMEType = "application/json"
	}

	reqBody := request{
		Contents:         contents,
		GenerationConfig: genCfg,
	}
	if c.system != "" {
		reqBody.SystemInstruct = &content{Parts: []part{{Text: c.system}}}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("Generation API returned error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, fmt.Errorf("generation API error: status %d", resp.StatusCode)
	}

	var result response
	if err = json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("generation error: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from generation API")
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)

	if !c.structured {
		return &domain.GenerationResult{Text: text}, nil
	}

	return parseStructured(text)
}

// parseStructured decodes the structured JSON contract. Markdown fences are
// stripped first because models wrap JSON in them despite instructions.
func parseStructured(text string) (*domain.GenerationResult, error) {
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var reply structuredReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGeneration, err)
	}
	if strings.TrimSpace(reply.Text) == "" {
		return nil, fmt.Errorf("%w: missing text field", domain.ErrMalformedGeneration)
	}

	return &domain.GenerationResult{
		Text:       reply.Text,
		Compliance: reply.Compliance,
		Reasoning:  reply.Reasoning,
	}, nil
}
