package textbook

import (
	"context"
	"errors"

	"github.com/NeuralTrust/TrustBook/pkg/domain/chapter"
	domainTextbook "github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Finder --dir=. --output=./mocks --filename=textbook_finder_mock.go --case=underscore --with-expecter
type Finder interface {
	Find(ctx context.Context, id uuid.UUID) (*domainTextbook.Textbook, error)
	// FindChapters returns the chapters ordered by number. A missing
	// textbook is a not found error; a textbook without chapters is not.
	FindChapters(ctx context.Context, id uuid.UUID) ([]chapter.Chapter, error)
}

type finder struct {
	logger *logrus.Logger
	repo   domainTextbook.Repository
	cache  cache.Client
}

func NewFinder(logger *logrus.Logger, repo domainTextbook.Repository, c cache.Client) Finder {
	return &finder{
		logger: logger,
		repo:   repo,
		cache:  c,
	}
}

func (f *finder) Find(ctx context.Context, id uuid.UUID) (*domainTextbook.Textbook, error) {
	cached, err := f.cache.GetTextbook(ctx, id.String())
	if err == nil {
		return cached, nil
	}
	f.logCacheError(err, id, "textbook")

	entity, err := f.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := f.cache.SaveTextbook(ctx, entity); err != nil {
		f.logger.WithError(err).Warn("failed to cache textbook")
	}
	return entity, nil
}

func (f *finder) FindChapters(ctx context.Context, id uuid.UUID) ([]chapter.Chapter, error) {
	cached, err := f.cache.GetChapters(ctx, id.String())
	if err == nil {
		return cached, nil
	}
	f.logCacheError(err, id, "chapters")

	entity, err := f.repo.GetWithChapters(ctx, id)
	if err != nil {
		return nil, err
	}
	chapters := entity.Chapters
	if chapters == nil {
		chapters = []chapter.Chapter{}
	}
	if err := f.cache.SaveChapters(ctx, id.String(), chapters); err != nil {
		f.logger.WithError(err).Warn("failed to cache chapters")
	}
	return chapters, nil
}

func (f *finder) logCacheError(err error, id uuid.UUID, kind string) {
	if errors.Is(err, cache.ErrCacheMiss) {
		return
	}
	f.logger.WithError(err).WithFields(logrus.Fields{
		"textbook_id": id.String(),
		"kind":        kind,
	}).Warn("failed to read from redis cache")
}
