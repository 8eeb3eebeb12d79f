package request

import (
	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/google/uuid"
)

type SetPreferenceRequest struct {
	SelectedChapters   []string `json:"selected_chapters"`
	LanguagePreference string   `json:"language_preference"`
}

// ChapterIDs parses the selection, keeping the caller's order.
func (r *SetPreferenceRequest) ChapterIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.SelectedChapters))
	for _, raw := range r.SelectedChapters {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, domain.NewValidationError("invalid chapter id %q", raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
