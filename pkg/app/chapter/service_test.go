package chapter_test

import (
	"context"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/app/chapter"
	"github.com/NeuralTrust/TrustBook/pkg/domain"
	domainChapter "github.com/NeuralTrust/TrustBook/pkg/domain/chapter"
	"github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/NeuralTrust/TrustBook/pkg/handlers/http/request"
	"github.com/NeuralTrust/TrustBook/pkg/infra/cache"
	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type chapterRepoMock struct{ mock.Mock }

func (m *chapterRepoMock) Save(ctx context.Context, c *domainChapter.Chapter) error {
	return m.Called(ctx, c).Error(0)
}

func (m *chapterRepoMock) Update(ctx context.Context, c *domainChapter.Chapter) error {
	return m.Called(ctx, c).Error(0)
}

func (m *chapterRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *chapterRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domainChapter.Chapter, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domainChapter.Chapter)
	return c, args.Error(1)
}

func (m *chapterRepoMock) GetByNumber(ctx context.Context, textbookID uuid.UUID, number int) (*domainChapter.Chapter, error) {
	args := m.Called(ctx, textbookID, number)
	c, _ := args.Get(0).(*domainChapter.Chapter)
	return c, args.Error(1)
}

func (m *chapterRepoMock) ListByTextbook(ctx context.Context, textbookID uuid.UUID) ([]domainChapter.Chapter, error) {
	args := m.Called(ctx, textbookID)
	c, _ := args.Get(0).([]domainChapter.Chapter)
	return c, args.Error(1)
}

type textbookRepoMock struct{ mock.Mock }

func (m *textbookRepoMock) Save(ctx context.Context, book *textbook.Textbook) error {
	return m.Called(ctx, book).Error(0)
}

func (m *textbookRepoMock) Update(ctx context.Context, book *textbook.Textbook) error {
	return m.Called(ctx, book).Error(0)
}

func (m *textbookRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*textbook.Textbook, error) {
	args := m.Called(ctx, id)
	book, _ := args.Get(0).(*textbook.Textbook)
	return book, args.Error(1)
}

func (m *textbookRepoMock) GetWithChapters(ctx context.Context, id uuid.UUID) (*textbook.Textbook, error) {
	args := m.Called(ctx, id)
	book, _ := args.Get(0).(*textbook.Textbook)
	return book, args.Error(1)
}

type fixture struct {
	repo      *chapterRepoMock
	textbooks *textbookRepoMock
	redis     redismock.ClientMock
	sut       chapter.Service
}

func newFixture() *fixture {
	logger, _ := test.NewNullLogger()
	db, redis := redismock.NewClientMock()
	f := &fixture{
		repo:      new(chapterRepoMock),
		textbooks: new(textbookRepoMock),
		redis:     redis,
	}
	f.sut = chapter.NewService(logger, f.repo, f.textbooks, cache.NewClientWithRedis(db, time.Minute))
	return f
}

func (f *fixture) expectInvalidation(textbookID uuid.UUID) {
	f.redis.ExpectDel("textbook:"+textbookID.String(), "textbook:"+textbookID.String()+":chapters").SetVal(1)
}

func TestService_Create(t *testing.T) {
	f := newFixture()
	textbookID := uuid.New()

	f.textbooks.On("GetByID", mock.Anything, textbookID).Return(&textbook.Textbook{ID: textbookID}, nil)
	f.repo.On("GetByNumber", mock.Anything, textbookID, 1).Return(nil, nil)
	f.repo.On("Save", mock.Anything, mock.AnythingOfType("*chapter.Chapter")).Return(nil)
	f.expectInvalidation(textbookID)

	created, err := f.sut.Create(context.Background(), &request.CreateChapterRequest{
		TextbookID:    textbookID.String(),
		Title:         " Introduction ",
		Content:       "# Physical AI",
		ChapterNumber: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "Introduction", created.Title)
	assert.Equal(t, textbookID, created.TextbookID)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestService_Create_DuplicateNumber(t *testing.T) {
	f := newFixture()
	textbookID := uuid.New()

	f.textbooks.On("GetByID", mock.Anything, textbookID).Return(&textbook.Textbook{ID: textbookID}, nil)
	f.repo.On("GetByNumber", mock.Anything, textbookID, 2).Return(&domainChapter.Chapter{ID: uuid.New()}, nil)

	_, err := f.sut.Create(context.Background(), &request.CreateChapterRequest{
		TextbookID: textbookID.String(), Title: "Sensors", Content: "c", ChapterNumber: 2,
	})

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Create_MissingTextbook(t *testing.T) {
	f := newFixture()
	textbookID := uuid.New()
	f.textbooks.On("GetByID", mock.Anything, textbookID).Return(nil, domain.NewNotFoundError("textbook", textbookID))

	_, err := f.sut.Create(context.Background(), &request.CreateChapterRequest{
		TextbookID: textbookID.String(), Title: "Sensors", Content: "c", ChapterNumber: 1,
	})

	assert.True(t, domain.IsNotFoundError(err))
}

func TestService_Create_InvalidChapter(t *testing.T) {
	f := newFixture()
	textbookID := uuid.New()
	f.textbooks.On("GetByID", mock.Anything, textbookID).Return(&textbook.Textbook{ID: textbookID}, nil)

	_, err := f.sut.Create(context.Background(), &request.CreateChapterRequest{
		TextbookID: textbookID.String(), Title: "Sensors", Content: "c", ChapterNumber: 0,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_Update_RenumberChecksConflicts(t *testing.T) {
	f := newFixture()
	existing := &domainChapter.Chapter{ID: uuid.New(), TextbookID: uuid.New(), Title: "Intro", Content: "c", ChapterNumber: 1}
	number := 3

	f.repo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("GetByNumber", mock.Anything, existing.TextbookID, 3).Return(nil, nil)
	f.repo.On("Update", mock.Anything, existing).Return(nil)
	f.expectInvalidation(existing.TextbookID)

	updated, err := f.sut.Update(context.Background(), existing.ID, &request.UpdateChapterRequest{ChapterNumber: &number})

	require.NoError(t, err)
	assert.Equal(t, 3, updated.ChapterNumber)
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestService_Update_SameNumberSkipsLookup(t *testing.T) {
	f := newFixture()
	existing := &domainChapter.Chapter{ID: uuid.New(), TextbookID: uuid.New(), Title: "Intro", Content: "c", ChapterNumber: 1}
	number := 1
	content := "# Updated"

	f.repo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("Update", mock.Anything, existing).Return(nil)
	f.expectInvalidation(existing.TextbookID)

	updated, err := f.sut.Update(context.Background(), existing.ID, &request.UpdateChapterRequest{
		ChapterNumber: &number,
		Content:       &content,
	})

	require.NoError(t, err)
	assert.Equal(t, "# Updated", updated.Content)
	f.repo.AssertNotCalled(t, "GetByNumber", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Delete(t *testing.T) {
	f := newFixture()
	existing := &domainChapter.Chapter{ID: uuid.New(), TextbookID: uuid.New()}

	f.repo.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	f.repo.On("Delete", mock.Anything, existing.ID).Return(nil)
	f.expectInvalidation(existing.TextbookID)

	require.NoError(t, f.sut.Delete(context.Background(), existing.ID))
	assert.NoError(t, f.redis.ExpectationsWereMet())
}

func TestService_Delete_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, domain.NewNotFoundError("chapter", id))

	err := f.sut.Delete(context.Background(), id)

	assert.True(t, domain.IsNotFoundError(err))
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
