package auditlogs

import (
	"encoding/json"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/common"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Service interface {
	Emit(c *fiber.Ctx, event Event)
	Close() error
}

type service struct {
	enabled  bool
	logger   *logrus.Logger
	producer Producer
	topic    string
	now      func() time.Time
}

func NewService(producer Producer, topic string, logger *logrus.Logger, enabled bool) Service {
	return &service{
		enabled:  enabled,
		logger:   logger,
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

// Emit publishes event keyed by its target id. Failures are logged and never
// reach the caller.
func (s *service) Emit(c *fiber.Ctx, event Event) {
	if !s.enabled || s.producer == nil {
		return
	}

	event.Timestamp = s.now().UTC()
	event.Context = Context{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		RequestID: c.Get(RequestIDHeader),
	}
	if subject, ok := c.Locals(common.AdminSubjectContext).(string); ok && subject != "" {
		event.Actor = Actor{ID: subject, Type: ActorTypeAdmin}
	} else {
		event.Actor = Actor{ID: "1", Type: ActorTypeSystem}
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).Error("failed to marshal audit event")
		return
	}

	err = s.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &s.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.Target.ID),
		Value:          data,
	}, nil)
	if err != nil {
		s.logger.WithError(err).WithField("type", event.Event.Type).Error("failed to emit audit event")
	}
}

func (s *service) Close() error {
	if s.producer != nil {
		if remaining := s.producer.Flush(flushTimeoutMs); remaining > 0 {
			s.logger.WithField("pending", remaining).Warn("audit events left unflushed")
		}
		s.producer.Close()
	}
	return nil
}
