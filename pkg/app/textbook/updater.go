package textbook

import (
	"context"
	"strings"

	domainTextbook "github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Updater --dir=. --output=./mocks --filename=textbook_updater_mock.go --case=underscore --with-expecter
type Updater interface {
	Update(ctx context.Context, id uuid.UUID, req *request.UpdateTextbookRequest) (*domainTextbook.Textbook, error)
}

type updater struct {
	logger *logrus.Logger
	repo   domainTextbook.Repository
	cache  cache.Client
}

func NewUpdater(logger *logrus.Logger, repo domainTextbook.Repository, c cache.Client) Updater {
	return &updater{
		logger: logger,
		repo:   repo,
		cache:  c,
	}
}

func (u *updater) Update(ctx context.Context, id uuid.UUID, req *request.UpdateTextbookRequest) (*domainTextbook.Textbook, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	entity, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		entity.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		entity.Description = *req.Description
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, entity); err != nil {
		u.logger.WithError(err).Error("failed to update textbook")
		return nil, err
	}

	if err := u.cache.InvalidateTextbook(ctx, id.String()); err != nil {
		u.logger.WithError(err).Warn("failed to invalidate textbook cache")
	}
	return entity, nil
}
