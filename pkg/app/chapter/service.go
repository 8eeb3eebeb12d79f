package chapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	domainChapter "github.com/NeuralTrust/TrustBook/pkg/domain/chapter"
	"github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Service --dir=. --output=./mocks --filename=chapter_service_mock.go --case=underscore --with-expecter
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*domainChapter.Chapter, error)
	Create(ctx context.Context, req *request.CreateChapterRequest) (*domainChapter.Chapter, error)
	Update(ctx context.Context, id uuid.UUID, req *request.UpdateChapterRequest) (*domainChapter.Chapter, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	logger       *logrus.Logger
	repo         domainChapter.Repository
	textbookRepo textbook.Repository
	cache        cache.Client
}

func NewService(
	logger *logrus.Logger,
	repo domainChapter.Repository,
	textbookRepo textbook.Repository,
	c cache.Client,
) Service {
	return &service{
		logger:       logger,
		repo:         repo,
		textbookRepo: textbookRepo,
		cache:        c,
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domainChapter.Chapter, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req *request.CreateChapterRequest) (*domainChapter.Chapter, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	textbookID := uuid.MustParse(req.TextbookID)
	if _, err := s.textbookRepo.GetByID(ctx, textbookID); err != nil {
		return nil, err
	}

	entity := &domainChapter.Chapter{
		TextbookID:    textbookID,
		Title:         strings.TrimSpace(req.Title),
		Content:       req.Content,
		ChapterNumber: req.ChapterNumber,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureNumberFree(ctx, textbookID, entity.ChapterNumber, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, entity); err != nil {
		s.logger.WithError(err).Error("failed to create chapter")
		return nil, err
	}

	s.invalidate(ctx, textbookID)
	return entity, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *request.UpdateChapterRequest) (*domainChapter.Chapter, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		entity.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		entity.Content = *req.Content
	}
	if req.ChapterNumber != nil && *req.ChapterNumber != entity.ChapterNumber {
		if err := s.ensureNumberFree(ctx, entity.TextbookID, *req.ChapterNumber, entity.ID); err != nil {
			return nil, err
		}
		entity.ChapterNumber = *req.ChapterNumber
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entity); err != nil {
		s.logger.WithError(err).Error("failed to update chapter")
		return nil, err
	}

	s.invalidate(ctx, entity.TextbookID)
	return entity, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, entity.TextbookID)
	return nil
}

func (s *service) ensureNumberFree(ctx context.Context, textbookID uuid.UUID, number int, self uuid.UUID) error {
	existing, err := s.repo.GetByNumber(ctx, textbookID, number)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return fmt.Errorf("%w: chapter %d already exists in textbook %s", domain.ErrAlreadyExists, number, textbookID)
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, textbookID uuid.UUID) {
	if err := s.cache.InvalidateTextbook(ctx, textbookID.String()); err != nil {
		s.logger.WithError(err).WithField("textbook_id", textbookID.String()).Warn("failed to invalidate textbook cache")
	}
}
