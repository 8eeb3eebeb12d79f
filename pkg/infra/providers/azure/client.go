package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers"
	"github.com/valyala/fastjson"
)

const (
	defaultAPIVersion = "2024-02-15-preview"
	tokenScope        = "https://cognitiveservices.azure.com/.default"
)

type client struct {
	httpClient *http.Client
	credential func() (azcore.TokenCredential, error)
}

func NewAzureClient() providers.Client {
	return &client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		credential: func() (azcore.TokenCredential, error) {
			return azidentity.NewDefaultAzureCredential(nil)
		},
	}
}

// Ask calls a chat completions deployment. config.Model is the deployment
// name. With Azure.UseIdentity the request carries an Entra ID bearer token
// instead of the api-key header.
func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	azureCfg := config.Credentials.Azure
	if azureCfg == nil {
		return nil, fmt.Errorf("azure configuration is required")
	}
	if azureCfg.Endpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model (deployment ID) is required")
	}

	var token string
	if azureCfg.UseIdentity {
		t, err := c.getAzureADToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Azure AD token: %w", err)
		}
		token = t
	} else {
		if config.Credentials.ApiKey == "" {
			return nil, fmt.Errorf("API key is required when not using Azure identity")
		}
		token = config.Credentials.ApiKey
	}

	var messages []map[string]string
	if config.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": config.SystemPrompt})
	}
	if len(config.Instructions) > 0 {
		messages = append(messages, map[string]string{
			"role":    "user",
			"content": providers.FormatInstructions(config.Instructions),
		})
	}
	if prompt != "" {
		messages = append(messages, map[string]string{"role": "user", "content": prompt})
	}

	apiVersion := defaultAPIVersion
	if azureCfg.ApiVersion != "" {
		apiVersion = azureCfg.ApiVersion
	}
	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(azureCfg.Endpoint, "/"),
		config.Model,
		apiVersion,
	)

	reqBody := map[string]interface{}{"messages": messages}
	if config.Temperature > 0 {
		reqBody["temperature"] = config.Temperature
	}
	if config.MaxTokens > 0 {
		reqBody["max_tokens"] = config.MaxTokens
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if azureCfg.UseIdentity {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("api-key", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 status: %d\n%s", resp.StatusCode, string(respBody))
	}

	return parseCompletion(respBody, config.Model)
}

func parseCompletion(body []byte, model string) (*providers.CompletionResponse, error) {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	choices := v.GetArray("choices")
	if len(choices) == 0 {
		return nil, providers.ErrNoCompletion
	}
	content := string(choices[0].GetStringBytes("message", "content"))
	if strings.TrimSpace(content) == "" {
		return nil, providers.ErrNoCompletion
	}

	id := string(v.GetStringBytes("id"))
	if id == "" {
		id = providers.ResponseID("azure")
	}
	return &providers.CompletionResponse{
		ID:       id,
		Model:    model,
		Response: content,
		Usage: providers.Usage{
			PromptTokens:     v.GetInt("usage", "prompt_tokens"),
			CompletionTokens: v.GetInt("usage", "completion_tokens"),
			TotalTokens:      v.GetInt("usage", "total_tokens"),
		},
	}, nil
}

func (c *client) getAzureADToken(ctx context.Context) (string, error) {
	cred, err := c.credential()
	if err != nil {
		return "", fmt.Errorf("failed to create credential: %w", err)
	}
	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{tokenScope}})
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token.Token, nil
}
