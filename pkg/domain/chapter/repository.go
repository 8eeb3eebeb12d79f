package chapter

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=chapter_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, chapter *Chapter) error
	Update(ctx context.Context, chapter *Chapter) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chapter, error)
	GetByNumber(ctx context.Context, textbookID uuid.UUID, number int) (*Chapter, error)
	ListByTextbook(ctx context.Context, textbookID uuid.UUID) ([]Chapter, error)
}
