package user

import (
	"context"
	"strings"

	domainUser "github.com/NeuralTrust/TrustBook/pkg/domain/user"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Service --dir=. --output=./mocks --filename=user_service_mock.go --case=underscore --with-expecter
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*domainUser.User, error)
	Create(ctx context.Context, req *request.CreateUserRequest) (*domainUser.User, error)
}

type service struct {
	logger *logrus.Logger
	repo   domainUser.Repository
}

func NewService(logger *logrus.Logger, repo domainUser.Repository) Service {
	return &service{
		logger: logger,
		repo:   repo,
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domainUser.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, req *request.CreateUserRequest) (*domainUser.User, error) {
	entity := &domainUser.User{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Name:     strings.TrimSpace(req.Name),
		UserType: domainUser.Type(req.UserType),
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, entity); err != nil {
		s.logger.WithError(err).Error("failed to create user")
		return nil, err
	}
	return entity, nil
}
