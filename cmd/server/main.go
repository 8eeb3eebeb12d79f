package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/NeuralTrust/TrustBook/docs"
	"github.com/NeuralTrust/TrustBook/pkg/app/chapter"
	"github.com/NeuralTrust/TrustBook/pkg/app/preference"
	"github.com/NeuralTrust/TrustBook/pkg/app/rag"
	"github.com/NeuralTrust/TrustBook/pkg/app/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/app/user"
	"github.com/NeuralTrust/TrustBook/pkg/config"
	handlers "github.com/NeuralTrust/TrustBook/pkg/handlers/http"
	"github.com/NeuralTrust/TrustBook/pkg/infra/auditlogs"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/NeuralTrust/TrustBook/pkg/infra/database"
	embeddingFactory "github.com/NeuralTrust/TrustBook/pkg/infra/embedding/factory"
	"github.com/NeuralTrust/TrustBook/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustBook/pkg/infra/jwt"
	infraLogger "github.com/NeuralTrust/TrustBook/pkg/infra/logger"
	_ "github.com/NeuralTrust/TrustBook/pkg/infra/migrations"
	"github.com/NeuralTrust/TrustBook/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustBook/pkg/infra/providers"
	providersFactory "github.com/NeuralTrust/TrustBook/pkg/infra/providers/factory"
	"github.com/NeuralTrust/TrustBook/pkg/infra/ratelimit"
	"github.com/NeuralTrust/TrustBook/pkg/infra/repository"
	"github.com/NeuralTrust/TrustBook/pkg/infra/vector"
	"github.com/NeuralTrust/TrustBook/pkg/middleware"
	"github.com/NeuralTrust/TrustBook/pkg/server"
	"github.com/NeuralTrust/TrustBook/pkg/server/router"
	"github.com/NeuralTrust/TrustBook/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closer, err := infraLogger.NewLogger(infraLogger.Options{
		File:    os.Getenv("LOG_FILE"),
		Console: os.Getenv("LOG_FILE") != "",
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closer.Close()

	if err := config.Load("../../config"); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	prometheus.Initialize(prometheus.MetricsConfig{
		EnableLatency:     cfg.Metrics.EnableLatency,
		EnableConnections: cfg.Metrics.EnableConnections,
	})

	db, err := database.NewDB(logger, &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	cacheClient, err := cache.NewClient(cache.Config{
		Host:      cfg.Redis.Host,
		Port:      cfg.Redis.Port,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		TLS:       cfg.Redis.TLS,
		EntityTTL: cfg.Cache.EntityTTL,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to initialize cache: %v", err)
	}
	answerCache := cacheClient.CreateTTLMap(cache.QueryTTLName, cfg.Cache.QueryTTL, cfg.Cache.MaxEntries)

	vectorStore, err := vector.NewQdrantStore(vector.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to initialize vector store: %v", err)
	}
	defer vectorStore.Close()

	httpClient := httpx.NewFastHTTPClient(
		httpx.WithTimeout(cfg.RAG.RetrievalTimeout),
		httpx.WithUserAgent(version.AppName+"/"+version.Version),
	)
	embedder, err := embeddingFactory.NewServiceLocator(logger, httpClient, cfg.OpenAI.APIKey).
		GetService(embeddingFactory.OpenAIProvider)
	if err != nil {
		logger.Fatalf("failed to initialize embedder: %v", err)
	}

	limiter, err := ratelimit.NewSlidingWindowLimiter(ratelimit.Config{
		MaxPerMinute: cfg.RateLimit.MaxPerMinute,
		MaxPerDay:    cfg.RateLimit.MaxPerDay,
	}, nil)
	if err != nil {
		logger.Fatalf("failed to initialize rate limiter: %v", err)
	}

	// repository
	userRepository := repository.NewUserRepository(db.DB)
	textbookRepository := repository.NewTextbookRepository(db.DB)
	chapterRepository := repository.NewChapterRepository(db.DB)
	preferenceRepository := repository.NewPreferenceRepository(db.DB)
	ragIndexRepository := repository.NewRAGIndexRepository(db.DB)

	// service
	textbookFinder := textbook.NewFinder(logger, textbookRepository, cacheClient)
	textbookCreator := textbook.NewCreator(logger, textbookRepository, userRepository, cacheClient)
	textbookUpdater := textbook.NewUpdater(logger, textbookRepository, cacheClient)
	chapterService := chapter.NewService(logger, chapterRepository, textbookRepository, cacheClient)
	userService := user.NewService(logger, userRepository)
	preferenceService := preference.NewService(logger, preferenceRepository, textbookFinder)

	indexer := rag.NewIndexer(logger, textbookRepository, ragIndexRepository, embedder, vectorStore, cfg.RAG.ChunkSize)
	breaker := httpx.NewCircuitBreaker("retrieval", cfg.RAG.BreakerTimeout, cfg.RAG.BreakerMaxFailures, logger)
	orchestrator := rag.NewOrchestrator(
		logger,
		limiter,
		answerCache,
		ragIndexRepository,
		embedder,
		vectorStore,
		breaker,
		buildGenerator(cfg, logger),
		rag.OrchestratorConfig{
			TopK:             cfg.RAG.TopK,
			QueryTTL:         cfg.Cache.QueryTTL,
			RetrievalTimeout: cfg.RAG.RetrievalTimeout,
			EmbeddingModel:   cfg.OpenAI.EmbeddingModel,
		},
	)

	auditService := buildAuditService(cfg, logger)
	defer auditService.Close()

	var jwtManager jwt.Manager
	if cfg.Server.SecretKey != "" {
		jwtManager = jwt.NewJwtManager(cfg.Server.SecretKey)
	} else {
		logger.Warn("server.secret_key is empty, content mutations are not authenticated")
	}

	//middleware
	middlewareTransport := &middleware.Transport{
		PanicRecoverMiddleware:  middleware.NewPanicRecoverMiddleware(logger),
		CORSMiddleware:          middleware.NewCORSGlobalMiddleware(cfg.Server.AllowedOrigins, nil, false, nil, "600"),
		RequestLoggerMiddleware: middleware.NewRequestLoggerMiddleware(logger),
		IdentityMiddleware:      middleware.NewIdentityMiddleware(),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(
			logger, limiter, router.SkipRateLimitPaths(), []string{router.QuerySuffix},
		),
		AdminAuthMiddleware: middleware.NewAdminAuthMiddleware(logger, jwtManager),
	}
	if cfg.Metrics.Enabled {
		middlewareTransport.MetricsMiddleware = middleware.NewMetricsMiddleware()
	}

	// Handler Transport
	handlerTransport := &handlers.HandlerTransport{
		// System
		RootHandler:       handlers.NewRootHandler(),
		HealthHandler:     handlers.NewHealthHandler(),
		UsageHandler:      handlers.NewUsageHandler(limiter),
		GetVersionHandler: handlers.NewGetVersionHandler(),
		// RAG
		QueryHandler:          handlers.NewQueryHandler(logger, orchestrator),
		CreateRAGIndexHandler: handlers.NewCreateRAGIndexHandler(logger, indexer, auditService, cfg.OpenAI.EmbeddingModel),
		GetRAGIndexHandler:    handlers.NewGetRAGIndexHandler(logger, indexer),
		// Textbook
		CreateTextbookHandler: handlers.NewCreateTextbookHandler(logger, textbookCreator, auditService),
		GetTextbookHandler:    handlers.NewGetTextbookHandler(logger, textbookFinder),
		UpdateTextbookHandler: handlers.NewUpdateTextbookHandler(logger, textbookUpdater, auditService),
		ListChaptersHandler:   handlers.NewListChaptersHandler(logger, textbookFinder),
		// Chapter
		CreateChapterHandler: handlers.NewCreateChapterHandler(logger, chapterService, auditService),
		GetChapterHandler:    handlers.NewGetChapterHandler(logger, chapterService),
		UpdateChapterHandler: handlers.NewUpdateChapterHandler(logger, chapterService, auditService),
		DeleteChapterHandler: handlers.NewDeleteChapterHandler(logger, chapterService, auditService),
		// User
		CreateUserHandler: handlers.NewCreateUserHandler(logger, userService, auditService),
		GetUserHandler:    handlers.NewGetUserHandler(logger, userService),
		// Preferences
		GetPreferenceHandler:    handlers.NewGetPreferenceHandler(logger, preferenceService),
		SetPreferenceHandler:    handlers.NewSetPreferenceHandler(logger, preferenceService),
		FilteredChaptersHandler: handlers.NewFilteredChaptersHandler(logger, preferenceService),
	}

	srv := server.NewAPIServer(server.APIServerDI{Config: cfg, Logger: logger})
	srv.WithRouters(router.NewAPIRouter(middlewareTransport, handlerTransport))

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
		return
	}
	logger.Info("server gracefully stopped")
}

// buildAuditService connects the audit trail. A broker that cannot be reached
// at startup disables auditing rather than the API.
func buildAuditService(cfg *config.Config, logger *logrus.Logger) auditlogs.Service {
	if !cfg.Audit.Enabled {
		return auditlogs.NewService(nil, cfg.Audit.Topic, logger, false)
	}
	producer, err := auditlogs.NewKafkaProducer(auditlogs.KafkaConfig{
		Brokers: cfg.Audit.Brokers,
		Topic:   cfg.Audit.Topic,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("audit trail disabled")
		return auditlogs.NewService(nil, cfg.Audit.Topic, logger, false)
	}
	logger.WithField("topic", cfg.Audit.Topic).Info("audit trail enabled")
	return auditlogs.NewService(producer, cfg.Audit.Topic, logger, true)
}

// buildGenerator picks the LLM that phrases answers. Without a provider, or
// when the provider cannot be resolved, answers use the fixed template.
func buildGenerator(cfg *config.Config, logger *logrus.Logger) rag.Generator {
	gen := cfg.Generation
	if gen.Provider == "" {
		return rag.TemplateGenerator{}
	}
	client, err := providersFactory.NewProviderLocator().Get(gen.Provider)
	if err != nil {
		logger.WithError(err).Warn("falling back to template answers")
		return rag.TemplateGenerator{}
	}

	apiKey := gen.APIKey
	if apiKey == "" && strings.EqualFold(gen.Provider, providersFactory.ProviderOpenAI) {
		apiKey = cfg.OpenAI.APIKey
	}
	model := gen.Model
	if model == "" {
		model = cfg.OpenAI.ChatModel
	}

	creds := providers.Credentials{ApiKey: apiKey, BaseURL: gen.BaseURL}
	switch strings.ToLower(gen.Provider) {
	case providersFactory.ProviderAzure:
		creds.Azure = &providers.AzureCredentials{
			Endpoint:    gen.AzureEndpoint,
			ApiVersion:  gen.AzureAPIVersion,
			UseIdentity: gen.AzureUseIdentity,
		}
	case providersFactory.ProviderBedrock:
		creds.AwsBedrock = &providers.AwsBedrockCredentials{
			AccessKey: gen.AWSAccessKey,
			SecretKey: gen.AWSSecretKey,
			Region:    gen.AWSRegion,
			UseRole:   gen.AWSRoleARN != "",
			RoleARN:   gen.AWSRoleARN,
		}
	}

	logger.WithFields(logrus.Fields{"provider": gen.Provider, "model": model}).Info("llm answer generation enabled")
	return rag.NewProviderGenerator(client, providers.Config{
		Credentials:  creds,
		Model:        model,
		MaxTokens:    gen.MaxTokens,
		Temperature:  gen.Temperature,
		SystemPrompt: gen.SystemPrompt,
	})
}
