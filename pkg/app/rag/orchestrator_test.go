package rag_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/app/rag"
	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustBook/pkg/domain/ragindex"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/NeuralTrust/TrustBook/pkg/infra/httpx"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const embeddingModel = "text-embedding-3-small"

type orchestratorFixture struct {
	limiter   *limiterMock
	indexRepo *indexRepoMock
	embedder  *embedderMock
	store     *vectorStoreMock
	cache     *cache.TTLMap
	sut       rag.Orchestrator
}

func newOrchestratorFixture(generator rag.Generator, cfg rag.OrchestratorConfig) *orchestratorFixture {
	logger, _ := test.NewNullLogger()
	f := &orchestratorFixture{
		limiter:   new(limiterMock),
		indexRepo: new(indexRepoMock),
		embedder:  new(embedderMock),
		store:     new(vectorStoreMock),
		cache:     cache.NewTTLMap(time.Minute, &cache.TTLMapOpts{MaxEntries: 100}),
	}
	breaker := httpx.NewCircuitBreaker("retrieval-test", time.Second, 5, logger)
	f.sut = rag.NewOrchestrator(logger, f.limiter, f.cache, f.indexRepo, f.embedder, f.store, breaker, generator, cfg)
	return f
}

func readyIndex(textbookID uuid.UUID) *ragindex.RAGIndex {
	return &ragindex.RAGIndex{
		ID:                 uuid.New(),
		TextbookID:         textbookID,
		QdrantCollectionID: ragindex.CollectionName(textbookID),
		Status:             ragindex.StatusReady,
		EmbeddingModel:     embeddingModel,
	}
}

func searchResults(n int) []embedding.SearchResult {
	results := make([]embedding.SearchResult, n)
	for i := range results {
		results[i] = embedding.SearchResult{
			ID:    uuid.NewString(),
			Score: 0.9,
			Payload: embedding.ChunkPayload{
				Text:          "Robots perceive and act.",
				ChapterID:     uuid.NewString(),
				ChapterTitle:  "Foundations",
				ChapterNumber: i + 1,
			},
		}
	}
	return results
}

func TestAnswerQuery_AnswersAndCaches(t *testing.T) {
	f := newOrchestratorFixture(nil, rag.OrchestratorConfig{TopK: 5})
	textbookID := uuid.New()
	index := readyIndex(textbookID)
	vector := []float32{0.1, 0.2, 0.3}
	results := searchResults(2)

	f.limiter.On("Allow", "caller").Return(true).Twice()
	f.indexRepo.On("GetByTextbookID", mock.Anything, textbookID).Return(index, nil).Once()
	f.embedder.On("Embed", mock.Anything, embeddingModel, []string{"What is a robot?"}).Return([][]float32{vector}, nil).Once()
	f.store.On("Search", mock.Anything, index.QdrantCollectionID, vector, 5).Return(results, nil).Once()

	req := rag.QueryRequest{TextbookID: textbookID.String(), Query: "What is a robot?", CallerKey: "caller"}
	result, err := f.sut.AnswerQuery(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, rag.OutcomeAnswered, result.Outcome)
	assert.False(t, result.Cached)
	require.NotNil(t, result.Response)
	assert.Equal(t, "What is a robot?", result.Response.Query)
	assert.Equal(t, "Based on the textbook content, here's the answer to your question: What is a robot?", result.Response.Response)
	assert.InDelta(t, 0.4, result.Response.Confidence, 1e-9)
	require.Len(t, result.Response.Sources, 2)
	assert.Equal(t, "Chapter 1", result.Response.Sources[0].PageReference)
	assert.Equal(t, results[1].Payload.ChapterID, result.Response.Sources[1].ChapterID)
	assert.Equal(t, "Foundations", result.Response.Sources[1].ChapterTitle)

	second, err := f.sut.AnswerQuery(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Same(t, result.Response, second.Response)

	f.limiter.AssertExpectations(t)
	f.indexRepo.AssertExpectations(t)
	f.embedder.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func TestAnswerQuery_ConfidenceIsCapped(t *testing.T) {
	f := newOrchestratorFixture(nil, rag.OrchestratorConfig{TopK: 7})
	textbookID := uuid.New()

	f.limiter.On("Allow", "caller").Return(true)
	f.indexRepo.On("GetByTextbookID", mock.Anything, textbookID).Return(readyIndex(textbookID), nil)
	f.embedder.On("Embed", mock.Anything, embeddingModel, mock.Anything).Return([][]float32{{1}}, nil)
	f.store.On("Search", mock.Anything, mock.Anything, mock.Anything, 7).Return(searchResults(7), nil)

	result, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{
		TextbookID: textbookID.String(), Query: "q", CallerKey: "caller",
	})

	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Response.Confidence)
}

func TestAnswerQuery_DeniedSkipsCacheAndRetrieval(t *testing.T) {
	f := newOrchestratorFixture(nil, rag.OrchestratorConfig{})
	textbookID := uuid.New()
	f.cache.Set(cache.Fingerprint(textbookID.String(), "q"), &rag.QueryResponse{Query: "q"})
	f.limiter.On("Allow", "caller").Return(false).Once()

	result, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{
		TextbookID: textbookID.String(), Query: "q", CallerKey: "caller",
	})

	require.NoError(t, err)
	assert.Equal(t, rag.OutcomeDenied, result.Outcome)
	assert.Nil(t, result.Response)
	f.indexRepo.AssertNotCalled(t, "GetByTextbookID", mock.Anything, mock.Anything)
	f.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerQuery_InvalidInputIsRejectedBeforeAdmission(t *testing.T) {
	f := newOrchestratorFixture(nil, rag.OrchestratorConfig{})

	_, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{TextbookID: "not-a-uuid", Query: "q", CallerKey: "k"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sut.AnswerQuery(context.Background(), rag.QueryRequest{TextbookID: uuid.NewString(), Query: "   ", CallerKey: "k"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.limiter.AssertNotCalled(t, "Allow", mock.Anything)
}

func TestAnswerQuery_NotReady(t *testing.T) {
	tests := []struct {
		name  string
		index *ragindex.RAGIndex
		err   error
	}{
		{name: "no index", err: domain.NewNotFoundError("rag index for textbook", uuid.Nil)},
		{name: "processing", index: &ragindex.RAGIndex{Status: ragindex.StatusProcessing}},
		{name: "failed", index: &ragindex.RAGIndex{Status: ragindex.StatusFailed}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrchestratorFixture(nil, rag.OrchestratorConfig{})
			textbookID := uuid.New()
			f.limiter.On("Allow", "caller").Return(true)
			f.indexRepo.On("GetByTextbookID", mock.Anything, textbookID).Return(tt.index, tt.err)

			result, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{
				TextbookID: textbookID.String(), Query: "q", CallerKey: "caller",
			})

			require.NoError(t, err)
			assert.Equal(t, rag.OutcomeNotReady, result.Outcome)
			f.embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAnswerQuery_RepositoryErrorPropagates(t *testing.T) {
	f := newOrchestratorFixture(nil, rag.OrchestratorConfig{})
	textbookID := uuid.New()
	dbErr := errors.New("connection refused")
	f.limiter.On("Allow", "caller").Return(true)
	f.indexRepo.On("GetByTextbookID", mock.Anything, textbookID).Return(nil, dbErr)

	result, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{
		TextbookID: textbookID.String(), Query: "q", CallerKey: "caller",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, rag.ErrRetrievalFailure)
}

func TestAnswerQuery_RetrievalFailureLeavesCacheEmpty(t *testing.T) {
	f := newOrchestratorFixture(nil, rag.OrchestratorConfig{})
	textbookID := uuid.New()
	f.limiter.On("Allow", "caller").Return(true)
	f.indexRepo.On("GetByTextbookID", mock.Anything, textbookID).Return(readyIndex(textbookID), nil)
	f.embedder.On("Embed", mock.Anything, embeddingModel, mock.Anything).Return([][]float32{{1}}, nil)
	f.store.On("Search", mock.Anything, mock.Anything, mock.Anything, rag.DefaultTopK).
		Return(nil, errors.New("qdrant unavailable"))

	result, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{
		TextbookID: textbookID.String(), Query: "q", CallerKey: "caller",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, rag.ErrRetrievalFailure)
	assert.Contains(t, err.Error(), "qdrant unavailable")
	assert.Equal(t, 0, f.cache.Len())
}

func TestAnswerQuery_RetrievalTimeout(t *testing.T) {
	f := newOrchestratorFixture(nil, rag.OrchestratorConfig{RetrievalTimeout: 20 * time.Millisecond})
	textbookID := uuid.New()
	f.limiter.On("Allow", "caller").Return(true)
	f.indexRepo.On("GetByTextbookID", mock.Anything, textbookID).Return(readyIndex(textbookID), nil)
	f.embedder.On("Embed", mock.Anything, embeddingModel, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	result, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{
		TextbookID: textbookID.String(), Query: "q", CallerKey: "caller",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, rag.ErrRetrievalFailure)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, 0, f.cache.Len())
}

func TestAnswerQuery_GenerationFailure(t *testing.T) {
	generator := new(generatorMock)
	f := newOrchestratorFixture(generator, rag.OrchestratorConfig{})
	textbookID := uuid.New()
	f.limiter.On("Allow", "caller").Return(true)
	f.indexRepo.On("GetByTextbookID", mock.Anything, textbookID).Return(readyIndex(textbookID), nil)
	f.embedder.On("Embed", mock.Anything, embeddingModel, mock.Anything).Return([][]float32{{1}}, nil)
	f.store.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(searchResults(1), nil)
	generator.On("Generate", mock.Anything, "q", mock.Anything).Return("", errors.New("provider down"))

	result, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{
		TextbookID: textbookID.String(), Query: "q", CallerKey: "caller",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, rag.ErrGenerationFailure)
	assert.Equal(t, 0, f.cache.Len())
}

func TestAnswerQuery_UsesGeneratorAnswer(t *testing.T) {
	generator := new(generatorMock)
	f := newOrchestratorFixture(generator, rag.OrchestratorConfig{})
	textbookID := uuid.New()
	results := searchResults(1)
	f.limiter.On("Allow", "caller").Return(true)
	f.indexRepo.On("GetByTextbookID", mock.Anything, textbookID).Return(readyIndex(textbookID), nil)
	f.embedder.On("Embed", mock.Anything, embeddingModel, mock.Anything).Return([][]float32{{1}}, nil)
	f.store.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(results, nil)
	generator.On("Generate", mock.Anything, "q", results).Return("Robots act.", nil)

	result, err := f.sut.AnswerQuery(context.Background(), rag.QueryRequest{
		TextbookID: textbookID.String(), Query: "q", CallerKey: "caller",
	})

	require.NoError(t, err)
	assert.Equal(t, "Robots act.", result.Response.Response)
	assert.InDelta(t, 0.2, result.Response.Confidence, 1e-9)
	generator.AssertExpectations(t)
}
