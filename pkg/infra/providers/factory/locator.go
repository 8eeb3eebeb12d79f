package factory

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/TrustBook/pkg/infra/providers"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers/anthropic"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers/azure"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers/bedrock"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers/gemini"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
	ProviderAzure     = "azure"
)

//go:generate mockery --name=ProviderLocator --dir=. --output=./mocks --filename=provider_locator_mock.go --case=underscore --with-expecter

type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
}

type providerLocator struct {
	clients map[string]providers.Client
}

// NewProviderLocator builds one client per provider; each client pools its
// own SDK connections per credential set.
func NewProviderLocator() ProviderLocator {
	return &providerLocator{
		clients: map[string]providers.Client{
			ProviderOpenAI:    openai.NewOpenaiClient(),
			ProviderGoogle:    gemini.NewGeminiClient(),
			ProviderAnthropic: anthropic.NewAnthropicClient(),
			ProviderBedrock:   bedrock.NewBedrockClient(),
			ProviderAzure:     azure.NewAzureClient(),
		},
	}
}

func (f *providerLocator) Get(provider string) (providers.Client, error) {
	client, ok := f.clients[strings.ToLower(provider)]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	return client, nil
}
