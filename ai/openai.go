package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxProviderResponse = 1 << 20

// OpenAIConfig holds the settings for OpenAIImageClient. Nothing is read
// from the environment by the client itself.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Size    string
	Quality string
	// HTTPClient defaults to a client with a 90s timeout.
	HTTPClient *http.Client
}

// OpenAIImageClient calls the OpenAI images API.
type OpenAIImageClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	size    string
	quality string
}

func NewOpenAIImageClient(cfg OpenAIConfig) (*OpenAIImageClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	if cfg.Quality == "" {
		cfg.Quality = "standard"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &OpenAIImageClient{
		client:  cfg.HTTPClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		size:    cfg.Size,
		quality: cfg.Quality,
	}, nil
}

type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateImage requests a single image and returns its hosted URL.
func (c *OpenAIImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(imageGenerationRequest{
		Model:          c.model,
		Prompt:         prompt,
		N:              1,
		Size:           c.size,
		Quality:        c.quality,
		ResponseFormat: "url",
	})
	if err != nil {
		return "", fmt.Errorf("marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ExternalError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderResponse))
	if err != nil {
		return "", &ExternalError{Message: "read response", Err: err}
	}

	var parsed imageGenerationResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", &ExternalError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &ExternalError{Message: "malformed response", Err: decodeErr}
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", &ExternalError{Message: "response contained no image url"}
	}
	return parsed.Data[0].URL, nil
}
