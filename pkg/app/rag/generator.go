package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers"
)

const answerTemplate = "Based on the textbook content, here's the answer to your question: %s"

//go:generate mockery --name=Generator --dir=. --output=./mocks --filename=generator_mock.go --case=underscore --with-expecter
type Generator interface {
	Generate(ctx context.Context, query string, results []embedding.SearchResult) (string, error)
}

// TemplateGenerator answers with a fixed sentence. It is used when no LLM
// provider is configured.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(_ context.Context, query string, _ []embedding.SearchResult) (string, error) {
	return fmt.Sprintf(answerTemplate, query), nil
}

type providerGenerator struct {
	client providers.Client
	config providers.Config
}

// NewProviderGenerator phrases the answer with an LLM, grounding it on the
// retrieved chunks.
func NewProviderGenerator(client providers.Client, config providers.Config) Generator {
	return &providerGenerator{
		client: client,
		config: config,
	}
}

func (g *providerGenerator) Generate(ctx context.Context, query string, results []embedding.SearchResult) (string, error) {
	cfg := g.config
	resp, err := g.client.Ask(ctx, &cfg, buildPrompt(query, results))
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(resp.Response)
	if answer == "" {
		return "", providers.ErrNoCompletion
	}
	return answer, nil
}

func buildPrompt(query string, results []embedding.SearchResult) string {
	var b strings.Builder
	b.WriteString("Textbook excerpts:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "\n[%d] Chapter %d: %s\n%s\n", i+1, r.Payload.ChapterNumber, r.Payload.ChapterTitle, r.Payload.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
