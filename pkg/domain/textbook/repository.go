package textbook

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=textbook_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, textbook *Textbook) error
	Update(ctx context.Context, textbook *Textbook) error
	GetByID(ctx context.Context, id uuid.UUID) (*Textbook, error)
	GetWithChapters(ctx context.Context, id uuid.UUID) (*Textbook, error)
}
