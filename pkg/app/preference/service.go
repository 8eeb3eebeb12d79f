package preference

import (
	"context"

	"github.com/NeuralTrust/TrustBook/pkg/app/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/domain/chapter"
	domainPreference "github.com/NeuralTrust/TrustBook/pkg/domain/preference"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Service --dir=. --output=./mocks --filename=preference_service_mock.go --case=underscore --with-expecter
type Service interface {
	Get(ctx context.Context, userID, textbookID uuid.UUID) (*domainPreference.UserPreference, error)
	Set(ctx context.Context, userID, textbookID uuid.UUID, req *request.SetPreferenceRequest) (*domainPreference.UserPreference, error)
	// FilteredChapters returns the user's selected chapters in the order
	// they were selected. With no usable selection every chapter is returned.
	FilteredChapters(ctx context.Context, userID, textbookID uuid.UUID) ([]chapter.Chapter, error)
}

type service struct {
	logger         *logrus.Logger
	repo           domainPreference.Repository
	textbookFinder textbook.Finder
}

func NewService(logger *logrus.Logger, repo domainPreference.Repository, textbookFinder textbook.Finder) Service {
	return &service{
		logger:         logger,
		repo:           repo,
		textbookFinder: textbookFinder,
	}
}

func (s *service) Get(ctx context.Context, userID, textbookID uuid.UUID) (*domainPreference.UserPreference, error) {
	entity, err := s.repo.Get(ctx, userID, textbookID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, domain.NewNotFoundError("user preference for textbook", textbookID)
	}
	return entity, nil
}

func (s *service) Set(
	ctx context.Context,
	userID, textbookID uuid.UUID,
	req *request.SetPreferenceRequest,
) (*domainPreference.UserPreference, error) {
	ids, err := req.ChapterIDs()
	if err != nil {
		return nil, err
	}
	if _, err := s.textbookFinder.Find(ctx, textbookID); err != nil {
		return nil, err
	}

	entity, err := s.repo.Get(ctx, userID, textbookID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		entity = &domainPreference.UserPreference{
			UserID:     userID,
			TextbookID: textbookID,
		}
	}
	entity.SelectedChapters = ids
	if req.LanguagePreference != "" {
		entity.LanguagePreference = req.LanguagePreference
	}

	if err := s.repo.Save(ctx, entity); err != nil {
		s.logger.WithError(err).Error("failed to save user preference")
		return nil, err
	}
	return entity, nil
}

func (s *service) FilteredChapters(ctx context.Context, userID, textbookID uuid.UUID) ([]chapter.Chapter, error) {
	chapters, err := s.textbookFinder.FindChapters(ctx, textbookID)
	if err != nil {
		return nil, err
	}

	pref, err := s.repo.Get(ctx, userID, textbookID)
	if err != nil {
		return nil, err
	}
	if pref == nil || len(pref.SelectedChapters) == 0 {
		return chapters, nil
	}

	byID := make(map[uuid.UUID]chapter.Chapter, len(chapters))
	for _, ch := range chapters {
		byID[ch.ID] = ch
	}
	ordered := make([]chapter.Chapter, 0, len(pref.SelectedChapters))
	for _, id := range pref.SelectedChapters {
		if ch, ok := byID[id]; ok {
			ordered = append(ordered, ch)
		}
	}
	if len(ordered) == 0 {
		return chapters, nil
	}
	return ordered, nil
}
