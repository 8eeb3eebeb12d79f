package embedding

import (
	"context"
)

//go:generate mockery --name=VectorStore --dir=. --output=./mocks --filename=vector_store_mock.go --case=underscore --with-expecter
type VectorStore interface {
	EnsureCollection(ctx context.Context, collection string, dimension int) error
	// DeleteCollection removes collection and its points. Missing collections are not an error.
	DeleteCollection(ctx context.Context, collection string) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]SearchResult, error)
}

type Point struct {
	ID      string
	Vector  []float32
	Payload ChunkPayload
}
