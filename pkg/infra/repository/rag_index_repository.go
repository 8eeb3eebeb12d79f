package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/domain/ragindex"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ragIndexRepository struct {
	db *gorm.DB
}

func NewRAGIndexRepository(db *gorm.DB) ragindex.Repository {
	return &ragIndexRepository{
		db: db,
	}
}

func (r *ragIndexRepository) GetByTextbookID(ctx context.Context, textbookID uuid.UUID) (*ragindex.RAGIndex, error) {
	entity := new(ragindex.RAGIndex)
	if err := r.db.WithContext(ctx).First(entity, "textbook_id = ?", textbookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("rag index for textbook", textbookID)
		}
		return nil, fmt.Errorf("failed to get rag index: %w", err)
	}
	return entity, nil
}

func (r *ragIndexRepository) Save(ctx context.Context, index *ragindex.RAGIndex) error {
	return r.db.WithContext(ctx).Save(index).Error
}

func (r *ragIndexRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status ragindex.Status) error {
	result := r.db.WithContext(ctx).
		Model(&ragindex.RAGIndex{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update rag index status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("rag index", id)
	}
	return nil
}
