// Package research implements the concurrency-bounded, multi-domain
// enrichment pipeline: formatting registry queries for a contact, executing
// them against a grounded research backend with cache-first lookup, and
// aggregating per-domain results with graceful degradation.
package research

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-intel/pkg/anthropic"
	"github.com/sells-group/prospect-intel/pkg/perplexity"
)

// BackendResult is the payload of one successful research call.
type BackendResult struct {
	Content   string
	Citations []string
}

// Backend is the black-box research-query execution collaborator. A call
// fails with an error on timeout, transport failure, or non-success status.
type Backend interface {
	Research(ctx context.Context, prompt, system string) (*BackendResult, error)
}

// PerplexityBackend executes research queries via the Perplexity grounded
// search API. This is the default backend.
type PerplexityBackend struct {
	client perplexity.Client
}

// NewPerplexityBackend wraps a Perplexity client as a research Backend.
func NewPerplexityBackend(client perplexity.Client) *PerplexityBackend {
	return &PerplexityBackend{client: client}
}

func (b *PerplexityBackend) Research(ctx context.Context, prompt, system string) (*BackendResult, error) {
	var messages []perplexity.Message
	if system != "" {
		messages = append(messages, perplexity.Message{Role: "system", Content: system})
	}
	messages = append(messages, perplexity.Message{Role: "user", Content: prompt})

	resp, err := b.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages:        messages,
		ReturnCitations: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "research: perplexity call")
	}

	content := resp.Content()
	if content == "" {
		return nil, eris.New("research: perplexity returned no content")
	}

	return &BackendResult{
		Content:   content,
		Citations: resp.Citations,
	}, nil
}

// AnthropicBackend executes research queries via the Anthropic messages API.
// It has no live web grounding, so answers reflect model knowledge only;
// useful as a fallback when the search backend is unavailable.
type AnthropicBackend struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicBackend wraps an Anthropic client as a research Backend.
func NewAnthropicBackend(client anthropic.Client, model string) *AnthropicBackend {
	return &AnthropicBackend{
		client:    client,
		model:     model,
		maxTokens: 2048,
	}
}

func (b *AnthropicBackend) Research(ctx context.Context, prompt, system string) (*BackendResult, error) {
	resp, err := b.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		System:    system,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "research: anthropic call")
	}

	text := resp.Text()
	if text == "" {
		return nil, eris.New("research: anthropic returned no content")
	}

	// No citations: the messages API is not grounded.
	return &BackendResult{Content: text}, nil
}
