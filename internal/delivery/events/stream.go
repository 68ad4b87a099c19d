package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
)

const (
	// StreamName is the JetStream stream holding review events
	StreamName = "REVIEWS"

	// ConsumerName is the durable consumer shared by rating worker replicas
	ConsumerName = "rating-worker"

	// MaxDeliveryAttempts bounds redelivery. A dropped event is healed by the
	// next event for the same product, since reconciliation reads the database.
	MaxDeliveryAttempts = 3

	// AckWait is how long a fetched message may stay unacknowledged
	AckWait = 30 * time.Second

	streamMaxAge = 24 * time.Hour
)

// StreamConfig creates the stream and durable consumer on demand
type StreamConfig struct {
	js     nats.JetStreamContext
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js nats.JetStreamContext, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		logger: log,
	}
}

// backoffSchedule returns 1s, 2s, 4s, ... for redeliveries.
// The first delivery is immediate so n attempts need n-1 delays.
func backoffSchedule(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

func streamSettings() *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{review.EventsSubject},
		Retention:   nats.WorkQueuePolicy,
		Storage:     nats.FileStorage,
		Replicas:    1,
		MaxAge:      streamMaxAge,
		Discard:     nats.DiscardOld,
		Description: "Review lifecycle events",
	}
}

func consumerSettings() *nats.ConsumerConfig {
	return &nats.ConsumerConfig{
		Durable:       ConsumerName,
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       AckWait,
		MaxDeliver:    MaxDeliveryAttempts,
		FilterSubject: review.EventsSubject,
		BackOff:       backoffSchedule(MaxDeliveryAttempts),
		Description:   "Product rating reconciliation",
	}
}

// EnsureStream creates the review stream if it does not exist yet
func (s *StreamConfig) EnsureStream() error {
	info, err := s.js.StreamInfo(StreamName)
	if errors.Is(err, nats.ErrStreamNotFound) {
		s.logger.WithFields(map[string]interface{}{
			"stream":  StreamName,
			"subject": review.EventsSubject,
		}).Info("Creating JetStream stream")

		if _, err := s.js.AddStream(streamSettings()); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", StreamName, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"stream":   info.Config.Name,
		"messages": info.State.Msgs,
		"bytes":    info.State.Bytes,
	}).Debug("JetStream stream already exists")

	return nil
}

// EnsureConsumer creates the durable rating worker consumer if it does not exist yet
func (s *StreamConfig) EnsureConsumer() error {
	info, err := s.js.ConsumerInfo(StreamName, ConsumerName)
	if errors.Is(err, nats.ErrConsumerNotFound) {
		s.logger.WithFields(map[string]interface{}{
			"stream":   StreamName,
			"consumer": ConsumerName,
		}).Info("Creating JetStream consumer")

		if _, err := s.js.AddConsumer(StreamName, consumerSettings()); err != nil {
			return fmt.Errorf("failed to create consumer %s: %w", ConsumerName, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"consumer":    info.Name,
		"pending":     info.NumPending,
		"redelivered": info.NumRedelivered,
		"ack_pending": info.NumAckPending,
	}).Info("JetStream consumer already exists")

	return nil
}
