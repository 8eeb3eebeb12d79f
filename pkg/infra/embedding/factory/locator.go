package factory

import (
	"fmt"

	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustBook/pkg/infra/embedding/openai"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	OpenAIProvider = "openai"
)

type EmbeddingServiceLocator struct {
	logger     *logrus.Logger
	httpClient *fasthttp.Client
	apiKey     string
}

func NewServiceLocator(logger *logrus.Logger, httpClient *fasthttp.Client, apiKey string) *EmbeddingServiceLocator {
	return &EmbeddingServiceLocator{
		logger:     logger,
		httpClient: httpClient,
		apiKey:     apiKey,
	}
}

func (l *EmbeddingServiceLocator) GetService(provider string) (embedding.Embedder, error) {
	switch provider {
	case OpenAIProvider:
		return openai.NewOpenAIEmbeddingService(l.httpClient, l.apiKey, l.logger), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
