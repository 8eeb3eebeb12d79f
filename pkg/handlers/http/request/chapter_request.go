package request

import (
	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/google/uuid"
)

type CreateChapterRequest struct {
	TextbookID    string `json:"textbook_id"` // @required
	Title         string `json:"title"`       // @required
	Content       string `json:"content"`     // @required
	ChapterNumber int    `json:"chapter_number"`
}

type UpdateChapterRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	ChapterNumber *int    `json:"chapter_number"`
}

func (r *CreateChapterRequest) Validate() error {
	if _, err := uuid.Parse(r.TextbookID); err != nil {
		return domain.NewValidationError("invalid textbook_id %q", r.TextbookID)
	}
	return nil
}

func (r *UpdateChapterRequest) Validate() error {
	if r.Title == nil && r.Content == nil && r.ChapterNumber == nil {
		return domain.NewValidationError("nothing to update")
	}
	return nil
}
