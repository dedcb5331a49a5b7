package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NoneProviderReturnsNilEmbedderNoError(t *testing.T) {
	e, err := New(Config{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, e)

	e, err = New(Config{Provider: ""})
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestNew_OllamaProvider(t *testing.T) {
	e, err := New(Config{Provider: "ollama", OllamaEndpoint: "http://localhost:11434", OllamaModel: "embeddinggemma"})
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "ollama:embeddinggemma", e.Name())
}

func TestNew_GenAIProviderRequiresAPIKey(t *testing.T) {
	_, err := New(Config{Provider: "genai"})
	assert.Error(t, err, "genai provider with no API key must fail fast, not reach the network")
}

func TestNew_UnsupportedProviderErrors(t *testing.T) {
	_, err := New(Config{Provider: "bogus"})
	assert.Error(t, err)
}
