// internal/pub/pub.go
package pub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"solarcredits-service/internal/domain"
)

const transactionChannelPrefix = "transactions:"

// TransactionChannel is the per-user realtime channel for inserted transactions.
func TransactionChannel(userID string) string {
	return transactionChannelPrefix + userID
}

type TransactionEventPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewTransactionEventPublisher(rdb *redis.Client, logger *zap.Logger) *TransactionEventPublisher {
	return &TransactionEventPublisher{rdb: rdb, logger: logger}
}

// PublishTransactionEvent publishes a transaction event to the user's channel
func (p *TransactionEventPublisher) PublishTransactionEvent(ctx context.Context, event *domain.TransactionEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.rdb.Publish(ctx, TransactionChannel(event.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("transaction event published",
		zap.String("event_type", event.EventType),
		zap.String("user_id", event.UserID))
	return nil
}

// Subscribe streams event payloads published for one user. The stream ends when ctx is done
// or the returned close func is called.
func (p *TransactionEventPublisher) Subscribe(ctx context.Context, userID string) (<-chan []byte, func() error, error) {
	ps := p.rdb.Subscribe(ctx, TransactionChannel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, ps.Close, nil
}
