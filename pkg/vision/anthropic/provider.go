package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"plant-journal-be/pkg/vision"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	defaultModel   = "claude-sonnet-4-20250514"
	maxTokens      = 1024
)

type AnthropicProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

// Ensure AnthropicProvider implements Provider
var _ vision.Provider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string) *AnthropicProvider {
	if modelName == "" {
		modelName = defaultModel
	}
	return &AnthropicProvider{
		BaseURL:   defaultBaseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// --- Request/Response structs (internal to this package) ---

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// --- Interface Implementation ---

func (p *AnthropicProvider) Identify(ctx context.Context, image vision.Image) (string, error) {
	reqPayload := messagesRequest{
		Model:     p.ModelName,
		MaxTokens: maxTokens,
		Messages: []message{
			{
				Role: "user",
				Content: []contentBlock{
					{
						Type: "image",
						Source: &imageSource{
							Type:      "base64",
							MediaType: image.MediaType,
							Data:      base64.StdEncoding.EncodeToString(image.Data),
						},
					},
					{
						Type: "text",
						Text: vision.IdentificationPrompt,
					},
				},
			},
		},
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", vision.NetworkError(fmt.Errorf("marshal request: %w", err))
	}

	url := p.BaseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", vision.NetworkError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", vision.NetworkError(fmt.Errorf("anthropic request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", vision.NetworkError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", vision.ClassifyHTTP(resp.StatusCode, string(body))
	}

	var apiResp messagesResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", vision.NetworkError(fmt.Errorf("decode response: %w", err))
	}

	for _, block := range apiResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", vision.NetworkError(fmt.Errorf("no text content in response"))
}
