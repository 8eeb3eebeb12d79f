package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain/chapter"
	"github.com/NeuralTrust/TrustBook/pkg/domain/textbook"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	TextbookKeyPattern = "textbook:%s"
	ChaptersKeyPattern = "textbook:%s:chapters"

	QueryTTLName = "query"

	setTimeout = 2 * time.Second
)

// ErrCacheMiss is returned when a key is absent or has expired.
var ErrCacheMiss = errors.New("cache miss")

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore --with-expecter
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	CreateTTLMap(name string, ttl time.Duration, maxEntries int) *TTLMap
	GetTTLMap(name string) *TTLMap
	ClearAllTTLMaps()

	GetTextbook(ctx context.Context, id string) (*textbook.Textbook, error)
	SaveTextbook(ctx context.Context, tb *textbook.Textbook) error
	GetChapters(ctx context.Context, textbookID string) ([]chapter.Chapter, error)
	SaveChapters(ctx context.Context, textbookID string, chapters []chapter.Chapter) error
	InvalidateTextbook(ctx context.Context, textbookID string) error
}

type Config struct {
	Host      string
	Port      int
	Password  string
	DB        int
	TLS       bool
	EntityTTL time.Duration
}

type client struct {
	redisClient *redis.Client
	ttlMaps     sync.Map
	entityTTL   time.Duration
}

func NewClient(config Config, logger *logrus.Logger) (Client, error) {
	options := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
		}
	}
	redisClient := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"host":  config.Host,
			"port":  config.Port,
			"error": err.Error(),
		}).Error("failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": config.Host,
		"port": config.Port,
	}).Info("redis connected successfully")

	return NewClientWithRedis(redisClient, config.EntityTTL), nil
}

// NewClientWithRedis wraps an existing connection. entityTTL bounds how long
// textbook entries live in redis; zero keeps them until invalidated.
func NewClientWithRedis(redisClient *redis.Client, entityTTL time.Duration) Client {
	return &client{
		redisClient: redisClient,
		entityTTL:   entityTTL,
	}
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	value, err := c.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return value, err
}

func (c *client) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, setTimeout)
	defer cancel()
	return c.redisClient.Set(ctx, key, value, expiration).Err()
}

func (c *client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redisClient.Del(ctx, keys...).Err()
}

// CreateTTLMap registers a named in-process map. Creating a name twice
// returns the map that already exists.
func (c *client) CreateTTLMap(name string, ttl time.Duration, maxEntries int) *TTLMap {
	ttlMap, _ := c.ttlMaps.LoadOrStore(name, NewTTLMap(ttl, &TTLMapOpts{MaxEntries: maxEntries}))
	return ttlMap.(*TTLMap)
}

func (c *client) GetTTLMap(name string) *TTLMap {
	if value, ok := c.ttlMaps.Load(name); ok {
		if ttlMap, ok := value.(*TTLMap); ok {
			return ttlMap
		}
	}
	return nil
}

func (c *client) ClearAllTTLMaps() {
	c.ttlMaps.Range(func(_, value interface{}) bool {
		if ttlMap, ok := value.(*TTLMap); ok {
			ttlMap.Clear()
		}
		return true
	})
}

func (c *client) GetTextbook(ctx context.Context, id string) (*textbook.Textbook, error) {
	res, err := c.Get(ctx, fmt.Sprintf(TextbookKeyPattern, id))
	if err != nil {
		return nil, err
	}
	entity := new(textbook.Textbook)
	if err := json.Unmarshal([]byte(res), entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (c *client) SaveTextbook(ctx context.Context, tb *textbook.Textbook) error {
	tbJSON, err := json.Marshal(tb)
	if err != nil {
		return err
	}
	return c.Set(ctx, fmt.Sprintf(TextbookKeyPattern, tb.ID), string(tbJSON), c.entityTTL)
}

func (c *client) GetChapters(ctx context.Context, textbookID string) ([]chapter.Chapter, error) {
	res, err := c.Get(ctx, fmt.Sprintf(ChaptersKeyPattern, textbookID))
	if err != nil {
		return nil, err
	}
	var chapters []chapter.Chapter
	if err := json.Unmarshal([]byte(res), &chapters); err != nil {
		return nil, err
	}
	return chapters, nil
}

func (c *client) SaveChapters(ctx context.Context, textbookID string, chapters []chapter.Chapter) error {
	chaptersJSON, err := json.Marshal(chapters)
	if err != nil {
		return err
	}
	return c.Set(ctx, fmt.Sprintf(ChaptersKeyPattern, textbookID), string(chaptersJSON), c.entityTTL)
}

// InvalidateTextbook drops the textbook entry and its chapter list.
func (c *client) InvalidateTextbook(ctx context.Context, textbookID string) error {
	return c.Delete(ctx,
		fmt.Sprintf(TextbookKeyPattern, textbookID),
		fmt.Sprintf(ChaptersKeyPattern, textbookID),
	)
}
