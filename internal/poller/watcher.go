package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/osmak/agentctl/internal/config"
	"github.com/osmak/agentctl/internal/logger"
	"github.com/osmak/agentctl/internal/models"
)

var (
	// ErrAttemptsExhausted is returned when a task is still not terminal
	// after the configured maximum number of status fetches.
	ErrAttemptsExhausted = errors.New("poll attempt limit reached before task finished")

	// ErrDurationExceeded is returned when a poll chain runs longer than
	// the configured maximum duration.
	ErrDurationExceeded = errors.New("poll duration limit reached before task finished")
)

// StatusFetcher retrieves the current snapshot of a task from the
// remote source.
type StatusFetcher interface {
	FetchTaskStatus(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error)
}

// StatusFetcherFunc adapts a function to the StatusFetcher interface.
type StatusFetcherFunc func(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error)

func (f StatusFetcherFunc) FetchTaskStatus(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error) {
	return f(ctx, taskID)
}

// Watcher polls a task's status until it reaches a terminal state. One
// fetch is in flight at a time per chain; after a non-terminal snapshot
// the next fetch is scheduled after the configured interval. With
// FetchRetries set to zero a failed fetch abandons the chain without
// touching the previously published snapshot; with retries configured,
// the fetch is retried with exponential backoff before giving up.
type Watcher struct {
	fetcher      StatusFetcher
	interval     time.Duration
	maxAttempts  int
	maxDuration  time.Duration
	fetchRetries int
	retryDelay   time.Duration
	tracker      *Tracker
	onUpdate     func(models.TaskResult)
}

// NewWatcher creates a watcher with poll settings taken from the
// configuration.
func NewWatcher(fetcher StatusFetcher, cfg *config.Config) *Watcher {
	return &Watcher{
		fetcher:      fetcher,
		interval:     cfg.PollInterval,
		maxAttempts:  cfg.MaxPollAttempts,
		maxDuration:  cfg.MaxPollDuration,
		fetchRetries: cfg.FetchRetries,
		retryDelay:   cfg.FetchRetryDelay,
		tracker:      NewTracker(),
	}
}

// Tracker returns the shared snapshot reference written by this
// watcher's poll chains.
func (w *Watcher) Tracker() *Tracker {
	return w.tracker
}

// SetOnUpdate registers a callback invoked with every snapshot the
// watcher observes, including intermediate non-terminal ones.
func (w *Watcher) SetOnUpdate(fn func(models.TaskResult)) {
	w.onUpdate = fn
}

// Watch runs one poll chain: fetch, publish, and reschedule until the
// task reports a terminal status, the context is cancelled, or a
// configured limit is hit. It returns the last observed snapshot, which
// is nil when the very first fetch fails.
func (w *Watcher) Watch(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error) {
	gen := w.tracker.Begin()
	logger.Debug("Starting poll chain for task %s (generation %d)", taskID, gen)

	var last *models.TaskResult
	start := time.Now()

	for attempt := 1; ; attempt++ {
		result, err := w.fetch(ctx, taskID)
		if err != nil {
			logger.Error("Failed to fetch status for task %s: %v", taskID, err)
			return last, fmt.Errorf("failed to fetch status for task %s: %w", taskID, err)
		}

		last = result
		if !w.tracker.publish(gen, result) {
			logger.Debug("Dropping stale snapshot for task %s (generation %d superseded)", taskID, gen)
			return last, nil
		}

		if w.onUpdate != nil {
			w.onUpdate(*result)
		}

		if result.Status.IsTerminal() {
			logger.Debug("Task %s reached terminal status %s after %d fetches", taskID, result.Status, attempt)
			return last, nil
		}

		if w.maxAttempts > 0 && attempt >= w.maxAttempts {
			logger.Warn("Task %s still %s after %d fetches, giving up", taskID, result.Status, attempt)
			return last, ErrAttemptsExhausted
		}

		if w.maxDuration > 0 && time.Since(start)+w.interval > w.maxDuration {
			logger.Warn("Task %s still %s after %s, giving up", taskID, result.Status, time.Since(start))
			return last, ErrDurationExceeded
		}

		if err := sleep(ctx, w.interval); err != nil {
			return last, err
		}
	}
}

// fetch performs one status fetch, with bounded retries when configured.
func (w *Watcher) fetch(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error) {
	if w.fetchRetries <= 0 {
		return w.fetcher.FetchTaskStatus(ctx, taskID)
	}

	var result *models.TaskResult
	backoff := retry.WithMaxRetries(uint64(w.fetchRetries), retry.NewExponential(w.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := w.fetcher.FetchTaskStatus(ctx, taskID)
		if err != nil {
			logger.Warn("Retrying status fetch for task %s: %v", taskID, err)
			return retry.RetryableError(err)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
