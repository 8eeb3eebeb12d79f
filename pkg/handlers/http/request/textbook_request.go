package request

import (
	"strings"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/google/uuid"
)

type CreateTextbookRequest struct {
	Title       string `json:"title"`     // @required
	AuthorID    string `json:"author_id"` // @required
	Description string `json:"description"`
}

// UpdateTextbookRequest applies only the fields that are present.
type UpdateTextbookRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (r *CreateTextbookRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return domain.NewValidationError("title is required")
	}
	if _, err := uuid.Parse(r.AuthorID); err != nil {
		return domain.NewValidationError("invalid author_id %q", r.AuthorID)
	}
	return nil
}

func (r *UpdateTextbookRequest) Validate() error {
	if r.Title == nil && r.Description == nil {
		return domain.NewValidationError("nothing to update")
	}
	return nil
}
