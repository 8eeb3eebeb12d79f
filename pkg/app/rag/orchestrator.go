package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustBook/pkg/domain/ragindex"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/NeuralTrust/TrustBook/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustBook/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustBook/pkg/infra/ratelimit"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTopK     = 5
	DefaultQueryTTL = 60 * time.Minute

	confidencePerSource = 0.2
)

// AnswerCache is satisfied by *cache.TTLMap.
type AnswerCache interface {
	Get(key string) (interface{}, bool)
	SetWithTTL(key string, value interface{}, ttl time.Duration)
}

//go:generate mockery --name=Orchestrator --dir=. --output=./mocks --filename=orchestrator_mock.go --case=underscore --with-expecter
type Orchestrator interface {
	AnswerQuery(ctx context.Context, req QueryRequest) (*QueryResult, error)
}

type OrchestratorConfig struct {
	TopK             int
	QueryTTL         time.Duration
	RetrievalTimeout time.Duration
	EmbeddingModel   string
}

type orchestrator struct {
	logger      *logrus.Logger
	limiter     ratelimit.Limiter
	cache       AnswerCache
	indexRepo   ragindex.Repository
	embedder    embedding.Embedder
	vectorStore embedding.VectorStore
	breaker     httpx.CircuitBreaker
	generator   Generator
	cfg         OrchestratorConfig
}

func NewOrchestrator(
	logger *logrus.Logger,
	limiter ratelimit.Limiter,
	answerCache AnswerCache,
	indexRepo ragindex.Repository,
	embedder embedding.Embedder,
	vectorStore embedding.VectorStore,
	breaker httpx.CircuitBreaker,
	generator Generator,
	cfg OrchestratorConfig,
) Orchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.QueryTTL == 0 {
		cfg.QueryTTL = DefaultQueryTTL
	}
	if generator == nil {
		generator = TemplateGenerator{}
	}
	return &orchestrator{
		logger:      logger,
		limiter:     limiter,
		cache:       answerCache,
		indexRepo:   indexRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		breaker:     breaker,
		generator:   generator,
		cfg:         cfg,
	}
}

// AnswerQuery admits the caller, serves a cached answer when one exists,
// and otherwise retrieves context from the textbook's index and caches the
// generated answer. Denied and not-ready are outcomes, not errors.
func (o *orchestrator) AnswerQuery(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	textbookID, err := uuid.Parse(req.TextbookID)
	if err != nil {
		return nil, domain.NewValidationError("invalid textbook id %q", req.TextbookID)
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, domain.NewValidationError("query must not be empty")
	}

	log := o.logger.WithFields(logrus.Fields{
		"textbook_id": req.TextbookID,
		"caller":      shortKey(req.CallerKey),
	})

	if !o.limiter.Allow(req.CallerKey) {
		log.Debug("query denied by rate limiter")
		prometheus.QueryOutcomes.WithLabelValues("denied").Inc()
		return &QueryResult{Outcome: OutcomeDenied}, nil
	}

	fingerprint := cache.Fingerprint(req.TextbookID, req.Query)
	if cached, ok := o.cache.Get(fingerprint); ok {
		if resp, ok := cached.(*QueryResponse); ok {
			log.Debug("query answered from cache")
			prometheus.QueryOutcomes.WithLabelValues("cached").Inc()
			return &QueryResult{Outcome: OutcomeAnswered, Response: resp, Cached: true}, nil
		}
	}

	index, err := o.indexRepo.GetByTextbookID(ctx, textbookID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			prometheus.QueryOutcomes.WithLabelValues("not_ready").Inc()
			return &QueryResult{Outcome: OutcomeNotReady}, nil
		}
		log.WithError(err).Error("failed to look up rag index")
		return nil, fmt.Errorf("failed to look up rag index: %w", err)
	}
	if !index.IsReady() {
		log.WithField("status", index.Status).Debug("rag index not ready")
		prometheus.QueryOutcomes.WithLabelValues("not_ready").Inc()
		return &QueryResult{Outcome: OutcomeNotReady}, nil
	}

	results, err := o.retrieve(ctx, index, req.Query)
	if err != nil {
		log.WithError(err).Error("retrieval failed")
		prometheus.QueryOutcomes.WithLabelValues("failed").Inc()
		return nil, err
	}

	start := time.Now()
	answer, err := o.generator.Generate(ctx, req.Query, results)
	prometheus.StageLatency.WithLabelValues("generate").Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		log.WithError(err).Error("answer generation failed")
		prometheus.QueryOutcomes.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}

	sources := toSources(results)
	resp := &QueryResponse{
		Query:      req.Query,
		Response:   answer,
		Sources:    sources,
		Confidence: confidence(len(sources)),
	}
	o.cache.SetWithTTL(fingerprint, resp, o.cfg.QueryTTL)
	prometheus.QueryOutcomes.WithLabelValues("answered").Inc()

	return &QueryResult{Outcome: OutcomeAnswered, Response: resp}, nil
}

// retrieve embeds the query and searches the index collection under the
// retrieval timeout and circuit breaker.
func (o *orchestrator) retrieve(ctx context.Context, index *ragindex.RAGIndex, query string) ([]embedding.SearchResult, error) {
	if o.cfg.RetrievalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RetrievalTimeout)
		defer cancel()
	}

	model := index.EmbeddingModel
	if model == "" {
		model = o.cfg.EmbeddingModel
	}

	var results []embedding.SearchResult
	call := func() error {
		start := time.Now()
		vectors, err := o.embedder.Embed(ctx, model, []string{query})
		prometheus.StageLatency.WithLabelValues("embed").Observe(float64(time.Since(start).Milliseconds()))
		if err != nil {
			return err
		}
		if len(vectors) != 1 {
			return fmt.Errorf("expected one query embedding, got %d", len(vectors))
		}

		start = time.Now()
		results, err = o.vectorStore.Search(ctx, index.QdrantCollectionID, vectors[0], o.cfg.TopK)
		prometheus.StageLatency.WithLabelValues("search").Observe(float64(time.Since(start).Milliseconds()))
		return err
	}

	var err error
	if o.breaker != nil {
		err = o.breaker.Execute(call)
	} else {
		err = call()
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: timed out: %v", ErrRetrievalFailure, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailure, err)
	}
	return results, nil
}

func toSources(results []embedding.SearchResult) []Source {
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			ChapterID:     r.Payload.ChapterID,
			ChapterTitle:  r.Payload.ChapterTitle,
			PageReference: fmt.Sprintf("Chapter %d", r.Payload.ChapterNumber),
		})
	}
	return sources
}

func confidence(sources int) float64 {
	return math.Min(float64(sources)*confidencePerSource, 1.0)
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
