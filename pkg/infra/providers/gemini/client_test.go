package gemini_test

import (
	"context"
	"testing"

	"github.com/NeuralTrust/TrustBook/pkg/infra/providers"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers/gemini"
	"github.com/stretchr/testify/assert"
)

func TestAsk_MissingAPIKey(t *testing.T) {
	resp, err := gemini.NewGeminiClient().Ask(context.Background(), &providers.Config{}, "q")

	assert.Nil(t, resp)
	assert.ErrorContains(t, err, "API key is required")
}
