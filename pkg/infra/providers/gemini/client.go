package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/NeuralTrust/TrustBook/pkg/infra/providers"
	"google.golang.org/genai"
)

const defaultModel = "gemini-1.5-flash"

type client struct {
	clientPool *sync.Map
}

func NewGeminiClient() providers.Client {
	return &client{
		clientPool: &sync.Map{},
	}
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	genaiClient, err := c.getOrCreateClient(ctx, config.Credentials.ApiKey)
	if err != nil {
		return nil, err
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	var parts []*genai.Part
	if config.SystemPrompt != "" {
		parts = append(parts, &genai.Part{Text: config.SystemPrompt})
	}
	if len(config.Instructions) > 0 {
		parts = append(parts, &genai.Part{Text: providers.FormatInstructions(config.Instructions)})
	}

	genConfig := &genai.GenerateContentConfig{}
	if len(parts) > 0 {
		genConfig.SystemInstruction = &genai.Content{Parts: parts, Role: "system"}
	}
	if config.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(config.MaxTokens)
	}
	if config.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(float32(config.Temperature))
	}

	result, err := genaiClient.Models.GenerateContent(ctx, model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	responseText := strings.TrimSpace(result.Text())
	if responseText == "" {
		return nil, providers.ErrNoCompletion
	}

	resp := &providers.CompletionResponse{
		ID:       providers.ResponseID("gemini"),
		Model:    model,
		Response: responseText,
	}
	if result.UsageMetadata != nil {
		resp.Usage = providers.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (c *client) getOrCreateClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if v, ok := c.clientPool.Load(apiKey); ok {
		if cli, ok := v.(*genai.Client); ok {
			return cli, nil
		}
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	actual, _ := c.clientPool.LoadOrStore(apiKey, cli)
	return actual.(*genai.Client), nil
}
