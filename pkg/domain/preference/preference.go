package preference

import (
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultLanguage = "en"

type UserPreference struct {
	ID                 uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID             uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_preference_user_textbook"`
	TextbookID         uuid.UUID        `json:"textbook_id" gorm:"type:uuid;not null;uniqueIndex:idx_preference_user_textbook"`
	SelectedChapters   domain.UUIDArray `json:"selected_chapters" gorm:"type:uuid[]"`
	LanguagePreference string           `json:"language_preference" gorm:"default:en"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

func (p *UserPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.LanguagePreference == "" {
		p.LanguagePreference = DefaultLanguage
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (p *UserPreference) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}
