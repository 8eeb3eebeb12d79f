package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type textbookRepository struct {
	db *gorm.DB
}

func NewTextbookRepository(db *gorm.DB) textbook.Repository {
	return &textbookRepository{
		db: db,
	}
}

func (r *textbookRepository) Save(ctx context.Context, book *textbook.Textbook) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *textbookRepository) Update(ctx context.Context, book *textbook.Textbook) error {
	return r.db.WithContext(ctx).Omit("Chapters").Save(book).Error
}

func (r *textbookRepository) GetByID(ctx context.Context, id uuid.UUID) (*textbook.Textbook, error) {
	entity := new(textbook.Textbook)
	if err := r.db.WithContext(ctx).First(entity, "id = ?", id).Error; err != nil {
		return nil, textbookLookupError(err, id)
	}
	return entity, nil
}

// GetWithChapters loads the textbook and its chapters ordered by number.
func (r *textbookRepository) GetWithChapters(ctx context.Context, id uuid.UUID) (*textbook.Textbook, error) {
	entity := new(textbook.Textbook)
	err := r.db.WithContext(ctx).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapter_number ASC")
		}).
		First(entity, "id = ?", id).Error
	if err != nil {
		return nil, textbookLookupError(err, id)
	}
	return entity, nil
}

func textbookLookupError(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError("textbook", id)
	}
	return fmt.Errorf("failed to get textbook: %w", err)
}
