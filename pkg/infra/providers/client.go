package providers

import (
	"context"
	"errors"
)

var ErrNoCompletion = errors.New("no completions returned")

type Config struct {
	Credentials  Credentials `json:"credentials"`
	Model        string      `json:"model"`
	MaxTokens    int         `json:"max_tokens,omitempty"`
	Temperature  float64     `json:"temperature,omitempty"`
	SystemPrompt string      `json:"system_prompt,omitempty"`
	Instructions []string    `json:"instructions,omitempty"`
}

type Credentials struct {
	ApiKey string `json:"api_key,omitempty"`
	// BaseURL overrides the provider endpoint for compatible gateways.
	BaseURL    string                 `json:"base_url,omitempty"`
	Azure      *AzureCredentials      `json:"azure,omitempty"`
	AwsBedrock *AwsBedrockCredentials `json:"aws_bedrock,omitempty"`
}

type AzureCredentials struct {
	Endpoint    string `json:"endpoint"`
	ApiVersion  string `json:"api_version,omitempty"`
	UseIdentity bool   `json:"use_identity,omitempty"`
}

type AwsBedrockCredentials struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
	UseRole   bool   `json:"use_role,omitempty"`
	RoleARN   string `json:"role_arn,omitempty"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Ask(ctx context.Context, config *Config, prompt string) (*CompletionResponse, error)
}

type CompletionResponse struct {
	ID       string `json:"id"`
	Model    string `json:"model"`
	Response string `json:"response"`
	Usage    Usage  `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
