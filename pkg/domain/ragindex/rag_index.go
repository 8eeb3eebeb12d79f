package ragindex

import (
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// RAGIndex tracks the vector collection built for a textbook.
type RAGIndex struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TextbookID         uuid.UUID `json:"textbook_id" gorm:"type:uuid;not null;uniqueIndex"`
	QdrantCollectionID string    `json:"qdrant_collection_id" gorm:"not null"`
	Status             Status    `json:"status" gorm:"not null;default:processing"`
	EmbeddingModel     string    `json:"embedding_model" gorm:"not null"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (RAGIndex) TableName() string {
	return "rag_indices"
}

func CollectionName(textbookID uuid.UUID) string {
	return fmt.Sprintf("textbook_%s_collection", textbookID.String())
}

func (r *RAGIndex) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusProcessing
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	return r.Validate()
}

func (r *RAGIndex) BeforeUpdate(tx *gorm.DB) error {
	r.UpdatedAt = time.Now()
	return r.Validate()
}

func (r *RAGIndex) Validate() error {
	switch r.Status {
	case StatusProcessing, StatusReady, StatusFailed:
	default:
		return domain.NewValidationError("invalid rag index status %q", r.Status)
	}
	if r.EmbeddingModel == "" {
		return domain.NewValidationError("embedding_model is required")
	}
	return nil
}

func (r *RAGIndex) IsReady() bool {
	return r.Status == StatusReady
}
