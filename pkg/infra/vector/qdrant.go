package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/NeuralTrust/TrustBook/pkg/domain/embedding"
	"github.com/mitchellh/mapstructure"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// qdrantAPI is the subset of *qdrant.Client the store needs.
type qdrantAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	GetPointsClient() qdrant.PointsClient
	Close() error
}

type QdrantStore struct {
	client qdrantAPI
	logger *logrus.Logger
}

var _ embedding.VectorStore = (*QdrantStore)(nil)

func NewQdrantStore(cfg Config, logger *logrus.Logger) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client for %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	logger.WithFields(logrus.Fields{
		"host": cfg.Host,
		"port": cfg.Port,
	}).Info("qdrant client created")
	return newQdrantStore(client, logger), nil
}

func newQdrantStore(client qdrantAPI, logger *logrus.Logger) *QdrantStore {
	return &QdrantStore{client: client, logger: logger}
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	s.logger.WithField("collection", collection).Debug("qdrant collection created")
	return nil
}

func (s *QdrantStore) DeleteCollection(ctx context.Context, collection string) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	s.logger.WithField("collection", collection).Debug("qdrant collection deleted")
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []embedding.Point) error {
	if len(points) == 0 {
		return nil
	}
	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		payload, err := toPayload(p.Payload)
		if err != nil {
			return fmt.Errorf("point %s: %w", p.ID, err)
		}
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		})
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]embedding.SearchResult, error) {
	resp, err := s.client.GetPointsClient().Search(ctx, &qdrant.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]embedding.SearchResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		payload, err := fromPayload(point.GetPayload())
		if err != nil {
			s.logger.WithError(err).WithField("collection", collection).Warn("skipping point with malformed payload")
			continue
		}
		results = append(results, embedding.SearchResult{
			ID:      pointID(point.GetId()),
			Score:   point.GetScore(),
			Payload: payload,
		})
	}
	return results, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func toPayload(p embedding.ChunkPayload) (map[string]*qdrant.Value, error) {
	payload := make(map[string]*qdrant.Value)
	for key, value := range p.ToMap() {
		if n, ok := value.(int); ok {
			value = int64(n)
		}
		val, err := qdrant.NewValue(value)
		if err != nil {
			return nil, fmt.Errorf("failed to convert payload value for key %s: %w", key, err)
		}
		payload[key] = val
	}
	return payload, nil
}

func fromPayload(payload map[string]*qdrant.Value) (embedding.ChunkPayload, error) {
	raw := make(map[string]any, len(payload))
	for key, value := range payload {
		switch v := value.GetKind().(type) {
		case *qdrant.Value_StringValue:
			raw[key] = v.StringValue
		case *qdrant.Value_IntegerValue:
			raw[key] = v.IntegerValue
		case *qdrant.Value_DoubleValue:
			raw[key] = v.DoubleValue
		case *qdrant.Value_BoolValue:
			raw[key] = v.BoolValue
		}
	}

	var out embedding.ChunkPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(raw); err != nil {
		return out, fmt.Errorf("failed to decode chunk payload: %w", err)
	}
	return out, nil
}

func pointID(id *qdrant.PointId) string {
	switch v := id.GetPointIdOptions().(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	}
	return ""
}
