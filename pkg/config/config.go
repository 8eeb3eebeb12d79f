package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type MetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	EnableLatency     bool `mapstructure:"enable_latency"`
	EnableConnections bool `mapstructure:"enable_connections"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Qdrant     QdrantConfig     `mapstructure:"qdrant"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RAG        RAGConfig        `mapstructure:"rag"`
	Generation GenerationConfig `mapstructure:"generation"`
	Audit      AuditConfig      `mapstructure:"audit"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
	AdminEmail  string `mapstructure:"admin_email"`

	// SecretKey signs admin JWTs. Empty leaves write routes open.
	SecretKey      string   `mapstructure:"secret_key"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type QdrantConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
	UseTLS bool   `mapstructure:"use_tls"`
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	ChatModel      string `mapstructure:"chat_model"`
}

// RateLimitConfig bounds calls per caller against the metered embedding budget.
type RateLimitConfig struct {
	MaxPerMinute int `mapstructure:"max_per_minute"`
	MaxPerDay    int `mapstructure:"max_per_day"`
}

type CacheConfig struct {
	QueryTTL   time.Duration `mapstructure:"query_ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
	EntityTTL  time.Duration `mapstructure:"entity_ttl"`
}

type RAGConfig struct {
	TopK               int           `mapstructure:"top_k"`
	ChunkSize          int           `mapstructure:"chunk_size"`
	RetrievalTimeout   time.Duration `mapstructure:"retrieval_timeout"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
}

// GenerationConfig selects the LLM that phrases answers from retrieved
// chunks. An empty provider answers with the canned template.
type GenerationConfig struct {
	Provider     string  `mapstructure:"provider"`
	Model        string  `mapstructure:"model"`
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
	SystemPrompt string  `mapstructure:"system_prompt"`

	AzureEndpoint    string `mapstructure:"azure_endpoint"`
	AzureAPIVersion  string `mapstructure:"azure_api_version"`
	AzureUseIdentity bool   `mapstructure:"azure_use_identity"`

	AWSAccessKey string `mapstructure:"aws_access_key"`
	AWSSecretKey string `mapstructure:"aws_secret_key"`
	AWSRegion    string `mapstructure:"aws_region"`
	AWSRoleARN   string `mapstructure:"aws_role_arn"`
}

// AuditConfig publishes content mutation events to Kafka when enabled.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	setDefaultValues(&globalConfig)

	return globalConfig.Validate()
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// booleans that default to on cannot be told apart from false after unmarshal
	viper.SetDefault("metrics.enable_latency", true)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = "localhost"
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = 6334
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.RateLimit.MaxPerMinute == 0 {
		cfg.RateLimit.MaxPerMinute = 100
	}
	if cfg.RateLimit.MaxPerDay == 0 {
		cfg.RateLimit.MaxPerDay = 1000
	}
	if cfg.Cache.QueryTTL == 0 {
		cfg.Cache.QueryTTL = 60 * time.Minute
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 10000
	}
	if cfg.Cache.EntityTTL == 0 {
		cfg.Cache.EntityTTL = 5 * time.Minute
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.RetrievalTimeout == 0 {
		cfg.RAG.RetrievalTimeout = 30 * time.Second
	}
	if cfg.RAG.BreakerTimeout == 0 {
		cfg.RAG.BreakerTimeout = 30 * time.Second
	}
	if cfg.RAG.BreakerMaxFailures == 0 {
		cfg.RAG.BreakerMaxFailures = 5
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 1024
	}
	if cfg.Generation.SystemPrompt == "" {
		cfg.Generation.SystemPrompt = defaultSystemPrompt
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Audit.Topic == "" {
		cfg.Audit.Topic = "trustbook.audit"
	}
}

const defaultSystemPrompt = "You are a teaching assistant for a textbook on physical AI and humanoid robotics. " +
	"Answer only from the provided textbook excerpts and say so when they do not contain the answer."

var supportedProviders = map[string]struct{}{
	"":          {},
	"openai":    {},
	"google":    {},
	"anthropic": {},
	"bedrock":   {},
	"azure":     {},
}

// Validate rejects limits and sizes that would make admission or chunking meaningless.
func (c *Config) Validate() error {
	if c.RateLimit.MaxPerMinute < 0 || c.RateLimit.MaxPerDay < 0 {
		return fmt.Errorf("%w: rate limits must be positive", ErrInvalidConfig)
	}
	if c.RAG.ChunkSize < 0 {
		return fmt.Errorf("%w: rag.chunk_size must be positive", ErrInvalidConfig)
	}
	if c.RAG.TopK < 0 {
		return fmt.Errorf("%w: rag.top_k must be positive", ErrInvalidConfig)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("%w: cache.max_entries must not be negative", ErrInvalidConfig)
	}
	if c.Audit.Enabled && c.Audit.Brokers == "" {
		return fmt.Errorf("%w: audit.brokers is required when audit is enabled", ErrInvalidConfig)
	}
	if _, ok := supportedProviders[strings.ToLower(c.Generation.Provider)]; !ok {
		return fmt.Errorf("%w: unsupported generation.provider %q", ErrInvalidConfig, c.Generation.Provider)
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
