package chapter

import (
	"strings"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chapter struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TextbookID    uuid.UUID `json:"textbook_id" gorm:"type:uuid;not null;uniqueIndex:idx_chapter_textbook_number"`
	Title         string    `json:"title" gorm:"not null"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	ChapterNumber int       `json:"chapter_number" gorm:"not null;uniqueIndex:idx_chapter_textbook_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return c.Validate()
}

func (c *Chapter) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return c.Validate()
}

// Validate checks the chapter body. Content is markdown and is stored as is.
func (c *Chapter) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return domain.NewValidationError("chapter title is required")
	}
	if strings.TrimSpace(c.Content) == "" {
		return domain.NewValidationError("chapter content is required")
	}
	if c.ChapterNumber < 1 {
		return domain.NewValidationError("chapter number must be greater than 0")
	}
	return nil
}
