package textbook

import (
	"context"
	"strings"

	domainTextbook "github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/domain/user"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Creator --dir=. --output=./mocks --filename=textbook_creator_mock.go --case=underscore --with-expecter
type Creator interface {
	Create(ctx context.Context, req *request.CreateTextbookRequest) (*domainTextbook.Textbook, error)
}

type creator struct {
	logger   *logrus.Logger
	repo     domainTextbook.Repository
	userRepo user.Repository
	cache    cache.Client
}

func NewCreator(
	logger *logrus.Logger,
	repo domainTextbook.Repository,
	userRepo user.Repository,
	c cache.Client,
) Creator {
	return &creator{
		logger:   logger,
		repo:     repo,
		userRepo: userRepo,
		cache:    c,
	}
}

// Create stores a new textbook for an existing author.
func (c *creator) Create(ctx context.Context, req *request.CreateTextbookRequest) (*domainTextbook.Textbook, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	authorID := uuid.MustParse(req.AuthorID)
	if _, err := c.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	entity := &domainTextbook.Textbook{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		AuthorID:    authorID,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	if err := c.repo.Save(ctx, entity); err != nil {
		c.logger.WithError(err).Error("failed to create textbook")
		return nil, err
	}

	if err := c.cache.SaveTextbook(ctx, entity); err != nil {
		c.logger.WithError(err).Warn("failed to cache textbook")
	}
	return entity, nil
}
