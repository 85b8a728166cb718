// Package content defines the provider-agnostic abstraction for the
// generative-content collaborator consumed by business services layered
// above the orchestration core.
//
// Providers (OpenAI, Anthropic) implement the Provider interface so callers
// remain decoupled from vendor SDKs; MockProvider supports deterministic
// tests. The core itself adds no resilience here beyond what callers opt
// into by wrapping calls with the execution primitives.
package content

import (
	"context"
	"fmt"
)

// Request is a plain generation request.
type Request struct {
	// Prompt is the user-facing generation instruction.
	Prompt string `json:"prompt"`
	// System optionally steers the provider's behavior.
	System string `json:"system,omitempty"`
}

// Response is the provider's completed generation.
type Response struct {
	Text   string `json:"text"`
	Tokens int    `json:"tokens"`
}

// Info contains metadata about a provider implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Provider is the minimal interface business services use to generate
// templated teaching content.
type Provider interface {
	GenerateContent(ctx context.Context, req Request) (Response, error)

	// Info returns information about the provider implementation.
	Info() Info
}

// MockProvider is a lightweight in-memory Provider useful for tests and
// examples.
type MockProvider struct {
	info      Info
	responses map[string]string
}

// NewMockProvider constructs a MockProvider.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockProvider) AddResponse(prompt, response string) { m.responses[prompt] = response }

// GenerateContent implements Provider; unknown prompts echo a canned shape.
func (m *MockProvider) GenerateContent(_ context.Context, req Request) (Response, error) {
	if req.Prompt == "" {
		return Response{}, fmt.Errorf("prompt is required")
	}
	text := m.responses[req.Prompt]
	if text == "" {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}
	return Response{Text: text, Tokens: len(text)}, nil
}

// Info implements Provider.
func (m *MockProvider) Info() Info { return m.info }
