package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/catalog_api/internal/pkg/logger"
	"github.com/Pesokrava/catalog_api/internal/usecase/review"
)

// ErrMissingProductID is returned for events that carry no product
var ErrMissingProductID = errors.New("event has no product_id")

// Reconciler recomputes a product's rating from its active reviews
type Reconciler interface {
	Reconcile(ctx context.Context, productID uuid.UUID) error
}

// Options tunes debouncing and retries
type Options struct {
	DebounceWindow time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	AttemptTimeout time.Duration
}

// DefaultOptions returns the retry settings used in production with the given debounce window
func DefaultOptions(debounce time.Duration) Options {
	return Options{
		DebounceWindow: debounce,
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		AttemptTimeout: 5 * time.Second,
	}
}

// RatingWorker collapses bursts of review events into one reconciliation per product
type RatingWorker struct {
	reconciler Reconciler
	opts       Options
	logger     *logger.Logger

	mu       sync.Mutex
	pending  map[uuid.UUID]*pendingUpdate
	closed   bool
	inflight sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

type pendingUpdate struct {
	timestamp time.Time
	timer     *time.Timer
}

// NewRatingWorker creates a new rating worker
func NewRatingWorker(reconciler Reconciler, opts Options, log *logger.Logger) *RatingWorker {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RatingWorker{
		reconciler: reconciler,
		opts:       opts,
		logger:     log,
		pending:    make(map[uuid.UUID]*pendingUpdate),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// HandleEvent decodes a review event and schedules a debounced reconciliation
func (w *RatingWorker) HandleEvent(data []byte) error {
	var event review.ReviewEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.ProductID == uuid.Nil {
		return ErrMissingProductID
	}

	w.logger.WithFields(map[string]interface{}{
		"event_type": event.EventType,
		"product_id": event.ProductID.String(),
		"timestamp":  event.Timestamp,
	}).Debug("Received review event")

	w.schedule(event.ProductID, event.Timestamp)
	return nil
}

func (w *RatingWorker) schedule(productID uuid.UUID, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.logger.Debug("Worker shutting down, ignoring event")
		return
	}

	if existing, found := w.pending[productID]; found {
		// An older event cannot change the outcome of the queued run.
		if timestamp.Before(existing.timestamp) {
			return
		}
		if existing.timer.Stop() {
			w.inflight.Done()
		}
	}

	update := &pendingUpdate{timestamp: timestamp}
	w.inflight.Add(1)
	update.timer = time.AfterFunc(w.opts.DebounceWindow, func() {
		w.run(productID, update)
	})
	w.pending[productID] = update
}

func (w *RatingWorker) run(productID uuid.UUID, update *pendingUpdate) {
	defer w.inflight.Done()

	w.mu.Lock()
	if w.pending[productID] == update {
		delete(w.pending, productID)
	}
	w.mu.Unlock()

	log := w.logger.With("product_id", productID.String())
	backoff := w.opts.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= w.opts.MaxRetries; attempt++ {
		if attempt > 1 {
			log.WithFields(map[string]interface{}{
				"attempt":    attempt,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying rating reconciliation")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				return
			}
			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, w.opts.AttemptTimeout)
		lastErr = w.reconciler.Reconcile(ctx, productID)
		cancel()

		if lastErr == nil {
			return
		}
	}

	log.With("max_retries", w.opts.MaxRetries).Error("Rating reconciliation failed after all retries", lastErr)
}

// Shutdown drops queued updates and waits for running ones, up to ctx's deadline
func (w *RatingWorker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	cancelled := 0
	for id, update := range w.pending {
		if update.timer.Stop() {
			w.inflight.Done()
			cancelled++
		}
		delete(w.pending, id)
	}
	w.mu.Unlock()

	w.logger.WithFields(map[string]interface{}{
		"cancelled_updates": cancelled,
	}).Info("Shutting down rating worker")

	done := make(chan struct{})
	go func() {
		w.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		w.logger.Warn("Shutdown timeout reached, abandoning in-flight updates")
		return ctx.Err()
	}
}

// PendingCount returns the number of products waiting for their debounce window
func (w *RatingWorker) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
