package vector

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type fakePoints struct {
	qdrant.PointsClient
	lastSearch *qdrant.SearchPoints
	response   *qdrant.SearchResponse
	err        error
}

func (f *fakePoints) Search(_ context.Context, in *qdrant.SearchPoints, _ ...grpc.CallOption) (*qdrant.SearchResponse, error) {
	f.lastSearch = in
	return f.response, f.err
}

type fakeQdrant struct {
	exists    bool
	created   []*qdrant.CreateCollection
	deleted   []string
	upserts   []*qdrant.UpsertPoints
	points    *fakePoints
	existsErr error
	upsertErr error
}

func (f *fakeQdrant) CollectionExists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeQdrant) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = append(f.created, req)
	return nil
}

func (f *fakeQdrant) DeleteCollection(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeQdrant) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, f.upsertErr
}

func (f *fakeQdrant) GetPointsClient() qdrant.PointsClient { return f.points }

func (f *fakeQdrant) Close() error { return nil }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestQdrantStore_EnsureCollection(t *testing.T) {
	client := &fakeQdrant{}
	store := newQdrantStore(client, quietLogger())

	require.NoError(t, store.EnsureCollection(context.Background(), "textbook_x_collection", 1536))
	require.Len(t, client.created, 1)
	assert.Equal(t, "textbook_x_collection", client.created[0].CollectionName)

	client.exists = true
	require.NoError(t, store.EnsureCollection(context.Background(), "textbook_x_collection", 1536))
	assert.Len(t, client.created, 1)

	client.existsErr = errors.New("unavailable")
	assert.Error(t, store.EnsureCollection(context.Background(), "other", 3))
}

func TestQdrantStore_DeleteCollection(t *testing.T) {
	client := &fakeQdrant{}
	store := newQdrantStore(client, quietLogger())

	require.NoError(t, store.DeleteCollection(context.Background(), "textbook_x_collection"))
	assert.Empty(t, client.deleted)

	client.exists = true
	require.NoError(t, store.DeleteCollection(context.Background(), "textbook_x_collection"))
	assert.Equal(t, []string{"textbook_x_collection"}, client.deleted)

	client.existsErr = errors.New("unavailable")
	assert.Error(t, store.DeleteCollection(context.Background(), "textbook_x_collection"))
}

func TestQdrantStore_UpsertConvertsPayload(t *testing.T) {
	client := &fakeQdrant{}
	store := newQdrantStore(client, quietLogger())

	err := store.Upsert(context.Background(), "c", []embedding.Point{{
		ID:     "9b2f6a40-5c1e-4f7b-9d1a-2c3e4f5a6b7c",
		Vector: []float32{0.1, 0.2},
		Payload: embedding.ChunkPayload{
			Text:          "chunk text",
			ChapterID:     "ch-1",
			ChapterTitle:  "Intro",
			ChapterNumber: 3,
			ChunkNumber:   0,
			TotalChunks:   2,
		},
	}})

	require.NoError(t, err)
	require.Len(t, client.upserts, 1)
	point := client.upserts[0].Points[0]
	assert.Equal(t, "chunk text", point.Payload["text"].GetStringValue())
	assert.Equal(t, int64(3), point.Payload["chapter_number"].GetIntegerValue())
	assert.Equal(t, int64(2), point.Payload["total_chunks"].GetIntegerValue())
}

func TestQdrantStore_UpsertNothing(t *testing.T) {
	client := &fakeQdrant{}
	store := newQdrantStore(client, quietLogger())

	require.NoError(t, store.Upsert(context.Background(), "c", nil))
	assert.Empty(t, client.upserts)
}

func TestQdrantStore_SearchDecodesPayload(t *testing.T) {
	payload, err := toPayload(embedding.ChunkPayload{
		Text:          "Robots balance with feedback.",
		ChapterID:     "ch-7",
		ChapterTitle:  "Control",
		ChapterNumber: 7,
		TextbookID:    "tb-1",
	})
	require.NoError(t, err)

	points := &fakePoints{response: &qdrant.SearchResponse{Result: []*qdrant.ScoredPoint{{
		Id:      qdrant.NewID("9b2f6a40-5c1e-4f7b-9d1a-2c3e4f5a6b7c"),
		Score:   0.87,
		Payload: payload,
	}}}}
	store := newQdrantStore(&fakeQdrant{points: points}, quietLogger())

	results, err := store.Search(context.Background(), "c", []float32{1, 0}, 5)

	require.NoError(t, err)
	assert.Equal(t, uint64(5), points.lastSearch.Limit)
	require.Len(t, results, 1)
	assert.Equal(t, "9b2f6a40-5c1e-4f7b-9d1a-2c3e4f5a6b7c", results[0].ID)
	assert.InDelta(t, 0.87, results[0].Score, 1e-6)
	assert.Equal(t, "Control", results[0].Payload.ChapterTitle)
	assert.Equal(t, 7, results[0].Payload.ChapterNumber)
}

func TestQdrantStore_SearchError(t *testing.T) {
	points := &fakePoints{err: errors.New("deadline exceeded")}
	store := newQdrantStore(&fakeQdrant{points: points}, quietLogger())

	_, err := store.Search(context.Background(), "c", []float32{1}, 5)
	assert.Error(t, err)
}
