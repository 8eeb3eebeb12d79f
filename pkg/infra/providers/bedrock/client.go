package bedrock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/NeuralTrust/TrustBook/pkg/infra/providers"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	stsTypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
)

const (
	defaultRegion    = "us-east-1"
	defaultModel     = "anthropic.claude-3-haiku-20240307-v1:0"
	roleSessionName  = "TrustBookBedrockSession"
	defaultMaxTokens = 1024
)

// ConverseAPI is the subset of the Bedrock runtime used for answer generation.
//
//go:generate mockery --name=ConverseAPI --dir=. --output=./mocks --filename=converse_api_mock.go --case=underscore --with-expecter
type ConverseAPI interface {
	Converse(
		ctx context.Context,
		params *bedrockruntime.ConverseInput,
		optFns ...func(*bedrockruntime.Options),
	) (*bedrockruntime.ConverseOutput, error)
}

type runtimeBuilder func(ctx context.Context, credentials providers.Credentials) (ConverseAPI, error)

type client struct {
	clientPool *sync.Map
	build      runtimeBuilder
}

func NewBedrockClient() providers.Client {
	return &client{
		clientPool: &sync.Map{},
		build:      buildRuntime,
	}
}

func (c *client) Ask(
	ctx context.Context,
	cfg *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	runtime, err := c.getOrCreateRuntime(ctx, cfg.Credentials)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	text := prompt
	if len(cfg.Instructions) > 0 {
		text = providers.FormatInstructions(cfg.Instructions) + "\n\n" + prompt
	}

	maxTokens := int32(defaultMaxTokens)
	if cfg.MaxTokens > 0 {
		maxTokens = int32(cfg.MaxTokens)
	}
	inference := &types.InferenceConfiguration{MaxTokens: aws.Int32(maxTokens)}
	if cfg.Temperature > 0 {
		inference.Temperature = aws.Float32(float32(cfg.Temperature))
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
		}},
		InferenceConfig: inference,
	}
	if cfg.SystemPrompt != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: cfg.SystemPrompt},
		}
	}

	output, err := runtime.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock converse failed: %w", err)
	}

	responseText := extractText(output)
	if responseText == "" {
		return nil, providers.ErrNoCompletion
	}

	resp := &providers.CompletionResponse{
		ID:       providers.ResponseID("bedrock"),
		Model:    model,
		Response: responseText,
	}
	if output.Usage != nil {
		resp.Usage = providers.Usage{
			PromptTokens:     int(aws.ToInt32(output.Usage.InputTokens)),
			CompletionTokens: int(aws.ToInt32(output.Usage.OutputTokens)),
			TotalTokens:      int(aws.ToInt32(output.Usage.TotalTokens)),
		}
	}
	return resp, nil
}

func extractText(output *bedrockruntime.ConverseOutput) string {
	msg, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	return strings.TrimSpace(sb.String())
}

func (c *client) getOrCreateRuntime(ctx context.Context, credentials providers.Credentials) (ConverseAPI, error) {
	key := poolKey(credentials)
	if v, ok := c.clientPool.Load(key); ok {
		if runtime, ok := v.(ConverseAPI); ok {
			return runtime, nil
		}
	}
	runtime, err := c.build(ctx, credentials)
	if err != nil {
		return nil, err
	}
	actual, _ := c.clientPool.LoadOrStore(key, runtime)
	return actual.(ConverseAPI), nil
}

func poolKey(credentials providers.Credentials) string {
	if credentials.AwsBedrock == nil {
		return credentials.ApiKey
	}
	return fmt.Sprintf("%s|%s|%s|%t|%s",
		credentials.AwsBedrock.AccessKey,
		credentials.AwsBedrock.SecretKey,
		credentials.AwsBedrock.Region,
		credentials.AwsBedrock.UseRole,
		credentials.AwsBedrock.RoleARN,
	)
}

func buildRuntime(ctx context.Context, credentials providers.Credentials) (ConverseAPI, error) {
	awsCfg, err := buildAwsConfig(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(awsCfg), nil
}

func buildAwsConfig(ctx context.Context, credentials providers.Credentials) (aws.Config, error) {
	if credentials.AwsBedrock == nil {
		return config.LoadDefaultConfig(ctx, config.WithRegion(defaultRegion))
	}

	region := credentials.AwsBedrock.Region
	if region == "" {
		region = defaultRegion
	}
	accessKey := credentials.AwsBedrock.AccessKey
	secretKey := credentials.AwsBedrock.SecretKey

	if credentials.AwsBedrock.UseRole && credentials.AwsBedrock.RoleARN != "" {
		creds, err := assumeRole(ctx, accessKey, secretKey, credentials.AwsBedrock.RoleARN, region)
		if err != nil {
			return aws.Config{}, err
		}
		return loadAWSConfig(ctx, aws.ToString(creds.AccessKeyId), aws.ToString(creds.SecretAccessKey), aws.ToString(creds.SessionToken), region)
	}
	if accessKey == "" {
		return config.LoadDefaultConfig(ctx, config.WithRegion(region))
	}
	return loadAWSConfig(ctx, accessKey, secretKey, "", region)
}

func loadAWSConfig(ctx context.Context, accessKey, secretKey, sessionToken, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     accessKey,
					SecretAccessKey: secretKey,
					SessionToken:    sessionToken,
				}, nil
			},
		)),
		config.WithRegion(region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func assumeRole(ctx context.Context, accessKey, secretKey, roleARN, region string) (*stsTypes.Credentials, error) {
	baseCfg, err := loadAWSConfig(ctx, accessKey, secretKey, "", region)
	if err != nil {
		return nil, err
	}
	output, err := sts.NewFromConfig(baseCfg).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(roleSessionName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role: %w", err)
	}
	return output.Credentials, nil
}
