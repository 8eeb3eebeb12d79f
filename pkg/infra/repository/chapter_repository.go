package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/domain/chapter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type chapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) chapter.Repository {
	return &chapterRepository{
		db: db,
	}
}

func (r *chapterRepository) Save(ctx context.Context, c *chapter.Chapter) error {
	err := r.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: chapter %d", domain.ErrAlreadyExists, c.ChapterNumber)
	}
	return err
}

func (r *chapterRepository) Update(ctx context.Context, c *chapter.Chapter) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *chapterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&chapter.Chapter{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete chapter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("chapter", id)
	}
	return nil
}

func (r *chapterRepository) GetByID(ctx context.Context, id uuid.UUID) (*chapter.Chapter, error) {
	entity := new(chapter.Chapter)
	if err := r.db.WithContext(ctx).First(entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("chapter", id)
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return entity, nil
}

// GetByNumber returns nil without error when the number is free.
func (r *chapterRepository) GetByNumber(ctx context.Context, textbookID uuid.UUID, number int) (*chapter.Chapter, error) {
	var entities []chapter.Chapter
	err := r.db.WithContext(ctx).
		Where("textbook_id = ? AND chapter_number = ?", textbookID, number).
		Limit(1).
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter by number: %w", err)
	}
	if len(entities) == 0 {
		return nil, nil
	}
	return &entities[0], nil
}

func (r *chapterRepository) ListByTextbook(ctx context.Context, textbookID uuid.UUID) ([]chapter.Chapter, error) {
	var entities []chapter.Chapter
	err := r.db.WithContext(ctx).
		Where("textbook_id = ?", textbookID).
		Order("chapter_number ASC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return entities, nil
}
