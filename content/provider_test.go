package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Provider = (*MockProvider)(nil)

func TestMockProvider_CannedResponse(t *testing.T) {
	p := NewMockProvider("test")
	p.AddResponse("outline a unit on fractions", "1. Introduce halves\n2. Compare quarters")

	resp, err := p.GenerateContent(context.Background(), Request{Prompt: "outline a unit on fractions"})
	require.NoError(t, err)
	assert.Equal(t, "1. Introduce halves\n2. Compare quarters", resp.Text)
	assert.Equal(t, len(resp.Text), resp.Tokens)
}

func TestMockProvider_UnknownPromptEchoes(t *testing.T) {
	p := NewMockProvider("test")

	resp, err := p.GenerateContent(context.Background(), Request{Prompt: "anything"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "anything")
}

func TestMockProvider_EmptyPrompt(t *testing.T) {
	p := NewMockProvider("test")
	_, err := p.GenerateContent(context.Background(), Request{})
	assert.Error(t, err)
}

func TestMockProvider_Info(t *testing.T) {
	p := NewMockProvider("unit-planner")
	info := p.Info()
	assert.Equal(t, "unit-planner", info.Name)
	assert.Equal(t, "mock", info.Provider)
}
