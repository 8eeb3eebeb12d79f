package textbook_test

import (
	"context"
	"testing"

	"github.com/NeuralTrust/TrustBook/pkg/app/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdater_UpdateInvalidatesCache(t *testing.T) {
	logger, _ := test.NewNullLogger()
	db, redis := redismock.NewClientMock()
	repo := new(repoMock)
	book := newBook()
	title := "  Physical AI, Second Edition "

	repo.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	repo.On("Update", mock.Anything, book).Return(nil)
	redis.ExpectDel("textbook:"+book.ID.String(), "textbook:"+book.ID.String()+":chapters").SetVal(2)

	updated, err := textbook.NewUpdater(logger, repo, cache.NewClientWithRedis(db, entityTTL)).
		Update(context.Background(), book.ID, &request.UpdateTextbookRequest{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "Physical AI, Second Edition", updated.Title)
	assert.NoError(t, redis.ExpectationsWereMet())
}

func TestUpdater_RejectsInvalidTitle(t *testing.T) {
	logger, _ := test.NewNullLogger()
	db, _ := redismock.NewClientMock()
	repo := new(repoMock)
	book := newBook()
	title := "AI"

	repo.On("GetByID", mock.Anything, book.ID).Return(book, nil)

	_, err := textbook.NewUpdater(logger, repo, cache.NewClientWithRedis(db, entityTTL)).
		Update(context.Background(), book.ID, &request.UpdateTextbookRequest{Title: &title})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdater_EmptyRequest(t *testing.T) {
	logger, _ := test.NewNullLogger()
	db, _ := redismock.NewClientMock()

	_, err := textbook.NewUpdater(logger, new(repoMock), cache.NewClientWithRedis(db, entityTTL)).
		Update(context.Background(), newBook().ID, &request.UpdateTextbookRequest{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
