package ragindex_test

import (
	"testing"

	"github.com/NeuralTrust/TrustBook/pkg/domain/ragindex"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCollectionName(t *testing.T) {
	id := uuid.MustParse("3f1c8a52-9d7e-4b1a-8c55-0e2f6a4b7d10")
	assert.Equal(t, "textbook_3f1c8a52-9d7e-4b1a-8c55-0e2f6a4b7d10_collection", ragindex.CollectionName(id))
}

func TestRAGIndex_BeforeCreateDefaultsToProcessing(t *testing.T) {
	index := &ragindex.RAGIndex{TextbookID: uuid.New(), EmbeddingModel: "text-embedding-3-small"}

	assert.NoError(t, index.BeforeCreate(nil))
	assert.Equal(t, ragindex.StatusProcessing, index.Status)
	assert.False(t, index.IsReady())
}

func TestRAGIndex_ValidateRejectsUnknownStatus(t *testing.T) {
	index := &ragindex.RAGIndex{Status: "archived", EmbeddingModel: "m"}
	assert.Error(t, index.Validate())
}
