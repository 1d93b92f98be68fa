// Package oracle talks to the external language model that ranks grants for
// a startup profile.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.0-flash"

	temperature = 0.3
	maxTokens   = 3000
)

// ErrEmptyCompletion is returned when the model answers with no content.
var ErrEmptyCompletion = errors.New("oracle returned an empty completion")

// Oracle sends a single system+user exchange to a model and returns the raw
// text of its answer.
type Oracle interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Provider() string
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds the oracle described by s. It returns (nil, nil) when no API key
// is configured, which callers treat as "oracle unavailable".
func New(ctx context.Context, s Settings) (Oracle, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, nil
	}
	switch strings.ToLower(s.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAI(s.APIKey, s.Model, s.BaseURL), nil
	case ProviderGemini:
		g, err := NewGemini(ctx, s.APIKey, s.Model, s.BaseURL)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported oracle provider %q", s.Provider)
	}
}
