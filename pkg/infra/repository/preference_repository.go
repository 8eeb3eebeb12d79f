package repository

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/TrustBook/pkg/domain/preference"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) preference.Repository {
	return &preferenceRepository{
		db: db,
	}
}

func (r *preferenceRepository) Get(ctx context.Context, userID, textbookID uuid.UUID) (*preference.UserPreference, error) {
	var entities []preference.UserPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND textbook_id = ?", userID, textbookID).
		Limit(1).
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user preference: %w", err)
	}
	if len(entities) == 0 {
		return nil, nil
	}
	return &entities[0], nil
}

func (r *preferenceRepository) Save(ctx context.Context, p *preference.UserPreference) error {
	return r.db.WithContext(ctx).Save(p).Error
}
