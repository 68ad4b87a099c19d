package events

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/catalog_api/internal/config"
	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
)

// Handler processes one raw event payload
type Handler func(data []byte) error

// Consumer is a plain NATS subscriber. It sees every event on the subject
// without taking part in the stream's work queue.
type Consumer struct {
	nc     *nats.Conn
	logger *logger.Logger
	subs   []*nats.Subscription
}

// NewConsumer creates a new NATS consumer
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := Connect(cfg.NATS.URL, "catalog-notifier", log)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		nc:     nc,
		logger: log,
	}, nil
}

// Subscribe runs handler for every message published on subject
func (c *Consumer) Subscribe(subject string, handler Handler) error {
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			c.logger.Errorf(err, "Failed to handle message on subject %s", subject)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	c.subs = append(c.subs, sub)
	c.logger.Infof("Subscribed to NATS subject: %s", subject)
	return nil
}

// Close unsubscribes and closes the connection
func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Warnf("Failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	c.subs = nil

	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}

// LoggingHandler logs each review event with its key fields and the indented payload
func LoggingHandler(log *logger.Logger) Handler {
	return func(data []byte) error {
		var event review.ReviewEvent
		if err := json.Unmarshal(data, &event); err != nil {
			log.Error("Failed to unmarshal event", err)
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}

		fields := map[string]interface{}{
			"event_type": event.EventType,
			"product_id": event.ProductID.String(),
			"rating":     event.Rating,
		}
		if event.Review != nil {
			fields["review_id"] = event.Review.ID.String()
			fields["grade"] = event.Review.Grade
		}

		pretty, err := json.MarshalIndent(event, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format event: %w", err)
		}

		log.WithFields(fields).Infof("Received event:\n%s", pretty)
		return nil
	}
}
