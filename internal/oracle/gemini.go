package oracle

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiOracle calls the Gemini API through the genai SDK.
type GeminiOracle struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed oracle.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*GeminiOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiOracle{client: client, model: model}, nil
}

func (o *GeminiOracle) Provider() string { return ProviderGemini }

func (o *GeminiOracle) Complete(ctx context.Context, system, prompt string) (string, error) {
	temp := float32(temperature)
	resp, err := o.client.Models.GenerateContent(ctx, o.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       &temp,
			MaxOutputTokens:   maxTokens,
		})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
