package auditlogs

import (
	"errors"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

const flushTimeoutMs = 5000

// Producer is the subset of *kafka.Producer the audit service needs.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type KafkaConfig struct {
	Brokers string
	Topic   string
}

func (c KafkaConfig) Validate() error {
	if c.Brokers == "" {
		return errors.New("kafka brokers are required")
	}
	if c.Topic == "" {
		return errors.New("kafka topic is required")
	}
	return nil
}

// NewKafkaProducer connects to the brokers and logs failed deliveries in the
// background, so Emit never waits on the broker.
func NewKafkaProducer(cfg KafkaConfig, logger *logrus.Logger) (*kafka.Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audit kafka config: %w", err)
	}
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	go func() {
		for e := range producer.Events() {
			m, ok := e.(*kafka.Message)
			if !ok || m.TopicPartition.Error == nil {
				continue
			}
			logger.WithError(m.TopicPartition.Error).Warn("audit event delivery failed")
		}
	}()
	return producer, nil
}
