package grounding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGenerator struct {
	resp      *genai.GenerateContentResponse
	err       error
	gotModel  string
	gotText   string
	gotConfig *genai.GenerateContentConfig
	deadline  bool
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotConfig = config
	_, f.deadline = ctx.Deadline()
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotText = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func groundedResponse(text string, chunks ...*genai.GroundingChunk) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: text}},
			},
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: chunks},
		}},
	}
}

func webChunk(title, uri string) *genai.GroundingChunk {
	return &genai.GroundingChunk{Web: &genai.GroundingChunkWeb{Title: title, URI: uri}}
}

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    *SearchResult
		wantErr bool
	}{
		{
			name: "Text and ordered sources",
			resp: groundedResponse("Paris",
				webChunk("Wikipedia", "https://en.wikipedia.org/wiki/Paris"),
				webChunk("Britannica", "https://www.britannica.com/place/Paris"),
			),
			want: &SearchResult{Text: "Paris", Sources: []Source{
				{Title: "Wikipedia", URI: "https://en.wikipedia.org/wiki/Paris"},
				{Title: "Britannica", URI: "https://www.britannica.com/place/Paris"},
			}},
		},
		{
			name: "Duplicates preserved",
			resp: groundedResponse("a", webChunk("x", "https://x.test"), webChunk("x", "https://x.test")),
			want: &SearchResult{Text: "a", Sources: []Source{
				{Title: "x", URI: "https://x.test"},
				{Title: "x", URI: "https://x.test"},
			}},
		},
		{
			name: "Missing fields default to empty placeholders",
			resp: groundedResponse("a", webChunk("", "https://only-uri.test"), &genai.GroundingChunk{}, webChunk("only title", "")),
			want: &SearchResult{Text: "a", Sources: []Source{
				{URI: "https://only-uri.test"},
				{},
				{Title: "only title"},
			}},
		},
		{
			name: "No grounding metadata",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "Hello "}, {Text: "thought", Thought: true}, {Text: "world"}}},
			}}},
			want: &SearchResult{Text: "Hello world", Sources: []Source{}},
		},
		{
			name:    "No candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: true,
		},
		{
			name:    "Nil response",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromResponse(tt.resp)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromResponseBlockedPrompt(t *testing.T) {
	_, err := FromResponse(&genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	})
	require.Error(t, err)
	assert.Contains(t, Message(err), "blocked")
}

func TestSearchMissingApiKey(t *testing.T) {
	s, err := NewGeminiSearcher(context.Background(), "  ", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", s.Model())

	_, err = s.Search(context.Background(), "capital of France")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), ApiKeyMarker)
}

func TestSearchUsesGoogleSearchTool(t *testing.T) {
	gen := &fakeGenerator{resp: groundedResponse("Paris", webChunk("Wikipedia", "https://en.wikipedia.org/wiki/Paris"))}
	s := &GeminiSearcher{models: gen, model: "test-model", timeout: time.Minute, Logger: discardLogger()}

	got, err := s.Search(context.Background(), "capital of France")
	require.NoError(t, err)

	assert.Equal(t, "Paris", got.Text)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "test-model", gen.gotModel)
	assert.Equal(t, "capital of France", gen.gotText)
	assert.True(t, gen.deadline)
	require.Len(t, gen.gotConfig.Tools, 1)
	assert.NotNil(t, gen.gotConfig.Tools[0].GoogleSearch)
}

func TestSearchClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantConfig bool
		wantMsg    string
	}{
		{
			name:       "Invalid key",
			err:        genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key.", Status: "INVALID_ARGUMENT"},
			wantConfig: true,
			wantMsg:    "Invalid API Key: API key not valid. Please pass a valid API key.",
		},
		{
			name:       "Unauthorized",
			err:        genai.APIError{Code: 401, Message: "Request had invalid authentication credentials.", Status: "UNAUTHENTICATED"},
			wantConfig: true,
			wantMsg:    "Invalid API Key: Request had invalid authentication credentials.",
		},
		{
			name:       "Forbidden key",
			err:        genai.APIError{Code: 403, Message: "Method doesn't allow unregistered callers. Please use API Key or other form of API consumer identity to call this API.", Status: "PERMISSION_DENIED"},
			wantConfig: true,
			wantMsg:    "Invalid API Key: Method doesn't allow unregistered callers. Please use API Key or other form of API consumer identity to call this API.",
		},
		{
			name: "Forbidden by error reason",
			err: genai.APIError{Code: 403, Message: "Requests to this API are blocked.", Status: "PERMISSION_DENIED", Details: []map[string]any{
				{"@type": "type.googleapis.com/google.rpc.ErrorInfo", "reason": "API_KEY_SERVICE_BLOCKED"},
			}},
			wantConfig: true,
			wantMsg:    "Invalid API Key: Requests to this API are blocked.",
		},
		{
			name:    "Unsupported region",
			err:     genai.APIError{Code: 403, Message: "User location is not supported for the API use.", Status: "PERMISSION_DENIED"},
			wantMsg: "User location is not supported for the API use.",
		},
		{
			name:    "Disabled API",
			err:     genai.APIError{Code: 403, Message: "Generative Language API has not been used in project 123 before or it is disabled.", Status: "PERMISSION_DENIED"},
			wantMsg: "Generative Language API has not been used in project 123 before or it is disabled.",
		},
		{
			name:    "Quota",
			err:     genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"},
			wantMsg: "Resource has been exhausted",
		},
		{
			name:    "Bad request unrelated to key",
			err:     genai.APIError{Code: 400, Message: "Request contains an invalid argument.", Status: "INVALID_ARGUMENT"},
			wantMsg: "Request contains an invalid argument.",
		},
		{
			name:    "Transport error",
			err:     fmt.Errorf("dial tcp: %w", errors.New("connection refused")),
			wantMsg: "dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &GeminiSearcher{models: &fakeGenerator{err: tt.err}, model: "m", Logger: discardLogger()}

			_, err := s.Search(context.Background(), "x")
			require.Error(t, err)
			assert.Equal(t, tt.wantConfig, IsConfigurationError(err))
			assert.Equal(t, tt.wantMsg, Message(err))
			var gErr *Error
			require.ErrorAs(t, err, &gErr)
			assert.NotNil(t, gErr.Err)
		})
	}
}
