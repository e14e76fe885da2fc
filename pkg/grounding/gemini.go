package grounding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mikeboe/research-assistant/pkg/clients"
)

const missingKeyMessage = "API Key is missing. Set GEMINI_API_KEY in your environment or .env file, then restart the server."

// contentGenerator is the subset of *genai.Models used for grounded search.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSearcher answers research tasks with Gemini and the Google Search tool.
type GeminiSearcher struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	Logger  *slog.Logger
}

// NewGeminiSearcher creates a searcher for the given model. An empty apiKey
// yields a searcher whose every call fails with a configuration error, so the
// UI can report the problem instead of refusing to start.
func NewGeminiSearcher(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiSearcher, error) {
	s := &GeminiSearcher{
		model:   clients.ModelName(model),
		timeout: timeout,
		Logger:  slog.Default(),
	}
	if strings.TrimSpace(apiKey) == "" {
		return s, nil
	}

	client, err := clients.GoogleAi(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	s.models = client.Models
	return s, nil
}

// Model returns the model name used for searches.
func (s *GeminiSearcher) Model() string {
	return s.model
}

func (s *GeminiSearcher) Search(ctx context.Context, query string) (*SearchResult, error) {
	if s.models == nil {
		return nil, &Error{Kind: KindConfiguration, Message: missingKeyMessage}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.Logger.Info("Executing grounded search", "model", s.model, "query_len", len(query))
	start := time.Now()

	resp, err := s.models.GenerateContent(ctx, s.model, genai.Text(query), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		s.Logger.Error("Grounded search failed", "error", err, "elapsed", time.Since(start))
		return nil, classifyProviderError(err)
	}

	result, err := FromResponse(resp)
	if err != nil {
		s.Logger.Warn("Grounded search returned no answer", "error", err)
		return nil, err
	}

	s.Logger.Info("Grounded search completed", "sources", len(result.Sources), "elapsed", time.Since(start))
	return result, nil
}

// FromResponse maps a GenerateContent response into a SearchResult. Sources
// follow the order of the grounding chunks; chunks without web data become
// empty placeholders rather than being dropped.
func FromResponse(resp *genai.GenerateContentResponse) (*SearchResult, error) {
	if resp == nil {
		return nil, &Error{Kind: KindGeneric, Message: "No response received from the model."}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, &Error{Kind: KindGeneric, Message: fmt.Sprintf("The request was blocked: %s", resp.PromptFeedback.BlockReason)}
		}
		return nil, &Error{Kind: KindGeneric, Message: "No response received from the model."}
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text.WriteString(part.Text)
		}
	}

	sources := []Source{}
	if gm := candidate.GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			var src Source
			if chunk != nil && chunk.Web != nil {
				src = Source{Title: chunk.Web.Title, URI: chunk.Web.URI}
			}
			sources = append(sources, src)
		}
	}

	return &SearchResult{Text: text.String(), Sources: sources}, nil
}

// classifyProviderError converts SDK failures into *Error, rewording credential
// rejections so the message carries ApiKeyMarker.
func classifyProviderError(err error) error {
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return &Error{Kind: KindGeneric, Message: err.Error(), Err: err}
	}

	if isCredentialRejection(apiErr) {
		return &Error{Kind: KindConfiguration, Message: "Invalid API Key: " + apiErr.Message, Err: err}
	}

	msg := apiErr.Message
	if msg == "" {
		msg = err.Error()
	}
	return &Error{Kind: KindGeneric, Message: msg, Err: err}
}

// isCredentialRejection reports whether the provider refused the API key
// itself. A 403 for other reasons (unsupported region, disabled API) is not a
// credential problem.
func isCredentialRejection(apiErr genai.APIError) bool {
	switch apiErr.Code {
	case http.StatusUnauthorized:
		return true
	case http.StatusBadRequest, http.StatusForbidden:
		return mentionsAPIKey(apiErr)
	}
	return false
}

func mentionsAPIKey(apiErr genai.APIError) bool {
	msg := strings.ToLower(apiErr.Message)
	if strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") {
		return true
	}
	for _, detail := range apiErr.Details {
		if reason, ok := detail["reason"].(string); ok && strings.HasPrefix(reason, "API_KEY_") {
			return true
		}
	}
	return false
}
