package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustBook/pkg/domain/ragindex"
	"github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/infra/chunker"
	"github.com/NeuralTrust/TrustBook/pkg/infra/prometheus"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultChunkSize = 1000
	embedBatchSize   = 64
)

//go:generate mockery --name=Indexer --dir=. --output=./mocks --filename=indexer_mock.go --case=underscore --with-expecter
type Indexer interface {
	CreateIndex(ctx context.Context, textbookID uuid.UUID, embeddingModel string) (*ragindex.RAGIndex, error)
	GetIndex(ctx context.Context, textbookID uuid.UUID) (*ragindex.RAGIndex, error)
}

type indexer struct {
	logger       *logrus.Logger
	textbookRepo textbook.Repository
	indexRepo    ragindex.Repository
	embedder     embedding.Embedder
	vectorStore  embedding.VectorStore
	chunkSize    int
}

func NewIndexer(
	logger *logrus.Logger,
	textbookRepo textbook.Repository,
	indexRepo ragindex.Repository,
	embedder embedding.Embedder,
	vectorStore embedding.VectorStore,
	chunkSize int,
) Indexer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &indexer{
		logger:       logger,
		textbookRepo: textbookRepo,
		indexRepo:    indexRepo,
		embedder:     embedder,
		vectorStore:  vectorStore,
		chunkSize:    chunkSize,
	}
}

func (i *indexer) GetIndex(ctx context.Context, textbookID uuid.UUID) (*ragindex.RAGIndex, error) {
	return i.indexRepo.GetByTextbookID(ctx, textbookID)
}

// CreateIndex (re)builds the vector collection of a textbook. The index row
// is stored as processing first and ends ready, or failed with the cause
// returned. An existing row for the textbook is reused.
func (i *indexer) CreateIndex(ctx context.Context, textbookID uuid.UUID, embeddingModel string) (*ragindex.RAGIndex, error) {
	if embeddingModel == "" {
		return nil, domain.NewValidationError("embedding_model is required")
	}

	book, err := i.textbookRepo.GetWithChapters(ctx, textbookID)
	if err != nil {
		return nil, err
	}

	index, err := i.indexRepo.GetByTextbookID(ctx, textbookID)
	if err != nil && !domain.IsNotFoundError(err) {
		return nil, err
	}
	if index == nil {
		index = &ragindex.RAGIndex{TextbookID: textbookID}
	}
	index.QdrantCollectionID = ragindex.CollectionName(textbookID)
	index.EmbeddingModel = embeddingModel
	index.Status = ragindex.StatusProcessing
	if err := i.indexRepo.Save(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to save rag index: %w", err)
	}

	log := i.logger.WithFields(logrus.Fields{
		"textbook_id": textbookID.String(),
		"collection":  index.QdrantCollectionID,
	})

	start := time.Now()
	count, err := i.build(ctx, book, index)
	if err != nil {
		log.WithError(err).Error("failed to build rag index")
		index.Status = ragindex.StatusFailed
		if statusErr := i.indexRepo.UpdateStatus(ctx, index.ID, ragindex.StatusFailed); statusErr != nil {
			log.WithError(statusErr).Error("failed to mark rag index as failed")
		}
		return index, err
	}

	if err := i.indexRepo.UpdateStatus(ctx, index.ID, ragindex.StatusReady); err != nil {
		return nil, err
	}
	index.Status = ragindex.StatusReady
	prometheus.IndexedChunks.Add(float64(count))
	log.WithFields(logrus.Fields{
		"chunks":   count,
		"duration": time.Since(start).String(),
	}).Info("rag index ready")

	return index, nil
}

func (i *indexer) build(ctx context.Context, book *textbook.Textbook, index *ragindex.RAGIndex) (int, error) {
	var points []embedding.Point
	for _, ch := range book.Chapters {
		chunks, err := chunker.Split(ch.Content, i.chunkSize)
		if err != nil {
			return 0, err
		}
		for _, c := range chunks {
			points = append(points, embedding.Point{
				ID: uuid.NewString(),
				Payload: embedding.ChunkPayload{
					Text:          c.Text,
					ChapterID:     ch.ID.String(),
					ChapterTitle:  ch.Title,
					ChapterNumber: ch.ChapterNumber,
					TextbookID:    book.ID.String(),
					TextbookTitle: book.Title,
					ChunkNumber:   c.Index,
					TotalChunks:   c.Total,
				},
			})
		}
	}
	if len(points) == 0 {
		return 0, domain.NewValidationError("textbook %s has no chapter content to index", book.ID)
	}

	for start := 0; start < len(points); start += embedBatchSize {
		end := min(start+embedBatchSize, len(points))
		batch := points[start:end]

		texts := make([]string, len(batch))
		for j := range batch {
			texts[j] = batch[j].Payload.Text
		}
		vectors, err := i.embedder.Embed(ctx, index.EmbeddingModel, texts)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunks: %w", err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}
		for j := range batch {
			batch[j].Vector = vectors[j]
		}
	}

	// Points from a previous build carry random ids and possibly another
	// dimension, so the collection is recreated rather than appended to.
	if err := i.vectorStore.DeleteCollection(ctx, index.QdrantCollectionID); err != nil {
		return 0, fmt.Errorf("failed to drop previous collection: %w", err)
	}
	if err := i.vectorStore.EnsureCollection(ctx, index.QdrantCollectionID, len(points[0].Vector)); err != nil {
		return 0, fmt.Errorf("failed to create collection: %w", err)
	}
	if err := i.vectorStore.Upsert(ctx, index.QdrantCollectionID, points); err != nil {
		return 0, fmt.Errorf("failed to upsert chunks: %w", err)
	}
	return len(points), nil
}
