package rag_test

import (
	"context"

	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustBook/pkg/domain/ragindex"
	"github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/infra/ratelimit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type limiterMock struct{ mock.Mock }

func (m *limiterMock) Allow(key string) bool {
	return m.Called(key).Bool(0)
}

func (m *limiterMock) Stats(key string) ratelimit.Stats {
	return m.Called(key).Get(0).(ratelimit.Stats)
}

type indexRepoMock struct{ mock.Mock }

func (m *indexRepoMock) GetByTextbookID(ctx context.Context, textbookID uuid.UUID) (*ragindex.RAGIndex, error) {
	args := m.Called(ctx, textbookID)
	index, _ := args.Get(0).(*ragindex.RAGIndex)
	return index, args.Error(1)
}

func (m *indexRepoMock) Save(ctx context.Context, index *ragindex.RAGIndex) error {
	return m.Called(ctx, index).Error(0)
}

func (m *indexRepoMock) UpdateStatus(ctx context.Context, id uuid.UUID, status ragindex.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

type textbookRepoMock struct{ mock.Mock }

func (m *textbookRepoMock) Save(ctx context.Context, book *textbook.Textbook) error {
	return m.Called(ctx, book).Error(0)
}

func (m *textbookRepoMock) Update(ctx context.Context, book *textbook.Textbook) error {
	return m.Called(ctx, book).Error(0)
}

func (m *textbookRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*textbook.Textbook, error) {
	args := m.Called(ctx, id)
	book, _ := args.Get(0).(*textbook.Textbook)
	return book, args.Error(1)
}

func (m *textbookRepoMock) GetWithChapters(ctx context.Context, id uuid.UUID) (*textbook.Textbook, error) {
	args := m.Called(ctx, id)
	book, _ := args.Get(0).(*textbook.Textbook)
	return book, args.Error(1)
}

type embedderMock struct{ mock.Mock }

func (m *embedderMock) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	args := m.Called(ctx, model, texts)
	vectors, _ := args.Get(0).([][]float32)
	return vectors, args.Error(1)
}

type vectorStoreMock struct{ mock.Mock }

func (m *vectorStoreMock) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	return m.Called(ctx, collection, dimension).Error(0)
}

func (m *vectorStoreMock) DeleteCollection(ctx context.Context, collection string) error {
	return m.Called(ctx, collection).Error(0)
}

func (m *vectorStoreMock) Upsert(ctx context.Context, collection string, points []embedding.Point) error {
	return m.Called(ctx, collection, points).Error(0)
}

func (m *vectorStoreMock) Search(ctx context.Context, collection string, vector []float32, limit int) ([]embedding.SearchResult, error) {
	args := m.Called(ctx, collection, vector, limit)
	results, _ := args.Get(0).([]embedding.SearchResult)
	return results, args.Error(1)
}

type generatorMock struct{ mock.Mock }

func (m *generatorMock) Generate(ctx context.Context, query string, results []embedding.SearchResult) (string, error) {
	args := m.Called(ctx, query, results)
	return args.String(0), args.Error(1)
}
