package preference

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=preference_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	// Get returns nil without error when the user has no preference stored.
	Get(ctx context.Context, userID, textbookID uuid.UUID) (*UserPreference, error)
	Save(ctx context.Context, preference *UserPreference) error
}
