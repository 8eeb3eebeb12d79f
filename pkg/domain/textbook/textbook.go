package textbook

import (
	"strings"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/domain/chapter"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultVersion = "1.0.0"

type Textbook struct {
	ID          uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string            `json:"title" gorm:"not null"`
	Description string            `json:"description,omitempty"`
	Version     string            `json:"version" gorm:"default:1.0.0"`
	AuthorID    uuid.UUID         `json:"author_id" gorm:"type:uuid;not null;index"`
	Chapters    []chapter.Chapter `json:"-" gorm:"foreignKey:TextbookID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (t *Textbook) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Version == "" {
		t.Version = DefaultVersion
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return t.Validate()
}

func (t *Textbook) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}

func (t *Textbook) Validate() error {
	title := strings.TrimSpace(t.Title)
	if len(title) < 5 || len(title) > 100 {
		return domain.NewValidationError("title must be between 5-100 characters")
	}
	if t.AuthorID == uuid.Nil {
		return domain.NewValidationError("author_id is required")
	}
	return nil
}
