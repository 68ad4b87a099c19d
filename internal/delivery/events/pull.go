package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
)

const (
	fetchBatch   = 10
	fetchMaxWait = 5 * time.Second
	fetchBackoff = 5 * time.Second
)

// PullConsumer fetches review events from the durable consumer in batches
type PullConsumer struct {
	sub    *nats.Subscription
	logger *logger.Logger
}

// NewPullConsumer binds to the durable consumer, creating stream and consumer when missing
func NewPullConsumer(js nats.JetStreamContext, log *logger.Logger) (*PullConsumer, error) {
	streams := NewStreamConfig(js, log)
	if err := streams.EnsureStream(); err != nil {
		return nil, err
	}
	if err := streams.EnsureConsumer(); err != nil {
		return nil, err
	}

	sub, err := js.PullSubscribe(review.EventsSubject, ConsumerName,
		nats.Bind(StreamName, ConsumerName),
		nats.ManualAck(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind consumer %s: %w", ConsumerName, err)
	}

	log.WithFields(map[string]interface{}{
		"stream":   StreamName,
		"consumer": ConsumerName,
	}).Info("Subscribed to JetStream consumer")

	return &PullConsumer{sub: sub, logger: log}, nil
}

// Run fetches and dispatches messages until ctx is cancelled.
// Handler errors nak the message so JetStream redelivers it with backoff.
func (c *PullConsumer) Run(ctx context.Context, handler Handler) {
	for ctx.Err() == nil {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchMaxWait)
		msgs, err := c.sub.Fetch(fetchBatch, nats.Context(fetchCtx))
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, nats.ErrTimeout) || ctx.Err() != nil {
				continue
			}
			c.logger.Error("Failed to fetch messages from JetStream", err)
			select {
			case <-time.After(fetchBackoff):
			case <-ctx.Done():
			}
			continue
		}

		for _, msg := range msgs {
			c.dispatch(msg, handler)
		}
	}
}

func (c *PullConsumer) dispatch(msg *nats.Msg, handler Handler) {
	if err := handler(msg.Data); err != nil {
		c.logger.Error("Failed to handle event", err)
		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Error("Failed to NAK message", nakErr)
		}
		return
	}

	if err := msg.Ack(); err != nil {
		c.logger.Error("Failed to ACK message", err)
	}
}

// Close drops the subscription. The durable consumer keeps its position on the server.
func (c *PullConsumer) Close() {
	if err := c.sub.Unsubscribe(); err != nil {
		c.logger.Warnf("Failed to unsubscribe from JetStream: %v", err)
	}
}
