package clients

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// ModelType names a Gemini model that supports the Google Search tool.
type ModelType string

const (
	// DefaultModel is the default model to use if none is specified
	DefaultModel ModelType = "gemini-2.5-flash"
	ProModel     ModelType = "gemini-2.5-pro"
)

// GoogleAi creates a Gemini API client. An empty apiKey is passed through
// unchanged; callers decide how a missing credential is reported.
func GoogleAi(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// ModelName resolves an empty model name to DefaultModel.
func ModelName(name string) string {
	if name == "" {
		return string(DefaultModel)
	}
	return name
}
