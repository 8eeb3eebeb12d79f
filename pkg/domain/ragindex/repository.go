package ragindex

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=rag_index_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	// GetByTextbookID returns a not found error when no index exists.
	GetByTextbookID(ctx context.Context, textbookID uuid.UUID) (*RAGIndex, error)
	Save(ctx context.Context, index *RAGIndex) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
