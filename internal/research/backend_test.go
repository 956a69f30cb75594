package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-intel/pkg/anthropic"
	"github.com/sells-group/prospect-intel/pkg/perplexity"
)

func TestPerplexityBackend_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req perplexity.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be factual", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.True(t, req.ReturnCitations)

		json.NewEncoder(w).Encode(perplexity.ChatCompletionResponse{
			Choices:   []perplexity.Choice{{Message: perplexity.Message{Role: "assistant", Content: "findings"}}},
			Citations: []string{"https://src.example"},
		})
	}))
	defer srv.Close()

	b := NewPerplexityBackend(perplexity.NewClient("k", perplexity.WithBaseURL(srv.URL)))
	res, err := b.Research(context.Background(), "who is Jane?", "be factual")
	require.NoError(t, err)
	assert.Equal(t, "findings", res.Content)
	assert.Equal(t, []string{"https://src.example"}, res.Citations)
}

func TestPerplexityBackend_NoSystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req perplexity.ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		json.NewEncoder(w).Encode(perplexity.ChatCompletionResponse{
			Choices: []perplexity.Choice{{Message: perplexity.Message{Content: "ok"}}},
		})
	}))
	defer srv.Close()

	b := NewPerplexityBackend(perplexity.NewClient("k", perplexity.WithBaseURL(srv.URL)))
	_, err := b.Research(context.Background(), "q", "")
	require.NoError(t, err)
}

func TestPerplexityBackend_EmptyContentIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(perplexity.ChatCompletionResponse{})
	}))
	defer srv.Close()

	b := NewPerplexityBackend(perplexity.NewClient("k", perplexity.WithBaseURL(srv.URL)))
	_, err := b.Research(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestPerplexityBackend_HTTPErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	b := NewPerplexityBackend(perplexity.NewClient("k", perplexity.WithBaseURL(srv.URL)))
	_, err := b.Research(context.Background(), "q", "")
	assert.Error(t, err)
}

type mockAnthropicClient struct {
	response *anthropic.MessageResponse
	err      error
	lastReq  anthropic.MessageRequest
}

func (m *mockAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func TestAnthropicBackend_Success(t *testing.T) {
	ai := &mockAnthropicClient{
		response: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: "model knowledge"}},
		},
	}

	b := NewAnthropicBackend(ai, "claude-sonnet-4-5-20250929")
	res, err := b.Research(context.Background(), "prompt", "system")
	require.NoError(t, err)
	assert.Equal(t, "model knowledge", res.Content)
	assert.Empty(t, res.Citations, "messages API results carry no citations")
	assert.Equal(t, "system", ai.lastReq.System)
	assert.Equal(t, "claude-sonnet-4-5-20250929", ai.lastReq.Model)
}

func TestAnthropicBackend_EmptyContentIsError(t *testing.T) {
	ai := &mockAnthropicClient{response: &anthropic.MessageResponse{}}
	b := NewAnthropicBackend(ai, "claude-haiku-4-5-20251001")
	_, err := b.Research(context.Background(), "prompt", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}

func TestAnthropicBackend_ErrorPropagates(t *testing.T) {
	ai := &mockAnthropicClient{err: assert.AnError}
	b := NewAnthropicBackend(ai, "claude-haiku-4-5-20251001")
	_, err := b.Research(context.Background(), "prompt", "")
	assert.Error(t, err)
}
