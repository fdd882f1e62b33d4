// internal/pub/kafka.go
package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
)

var kafkaPublishErrors = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "kafka_publish_errors_total",
		Help: "Total number of Kafka publish errors",
	},
)

// MessageWriter is the subset of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter builds an async, batched writer for the transaction topic.
func NewKafkaWriter(brokers []string, topic string, logger *zap.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Compression:  kafka.Snappy,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
	}
}

// TransactionStream appends transaction events to Kafka keyed by user id.
type TransactionStream struct {
	writer MessageWriter
	logger *zap.Logger
}

func NewTransactionStream(writer MessageWriter, logger *zap.Logger) *TransactionStream {
	return &TransactionStream{writer: writer, logger: logger}
}

// PublishTransactionEvent never fails the caller; errors are logged and counted.
func (s *TransactionStream) PublishTransactionEvent(ctx context.Context, event *domain.TransactionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		kafkaPublishErrors.Inc()
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
		Time:  time.Now(),
	}); err != nil {
		s.logger.Error("failed to publish transaction to Kafka",
			zap.Error(err),
			zap.String("user_id", event.UserID))
		kafkaPublishErrors.Inc()
		return nil
	}
	return nil
}
