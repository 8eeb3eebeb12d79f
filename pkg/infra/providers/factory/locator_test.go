package factory_test

import (
	"testing"

	"github.com/NeuralTrust/TrustBook/pkg/infra/providers/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderLocator_Get(t *testing.T) {
	locator := factory.NewProviderLocator()

	for _, name := range []string{
		factory.ProviderOpenAI,
		factory.ProviderGoogle,
		factory.ProviderAnthropic,
		factory.ProviderBedrock,
		factory.ProviderAzure,
		"OpenAI",
	} {
		client, err := locator.Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, client, name)
	}

	first, _ := locator.Get(factory.ProviderOpenAI)
	second, _ := locator.Get(factory.ProviderOpenAI)
	assert.Same(t, first, second)

	_, err := locator.Get("cohere")
	assert.ErrorContains(t, err, "unsupported provider: cohere")
}
