package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmak/agentctl/internal/config"
	"github.com/osmak/agentctl/internal/models"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.PollInterval = 5 * time.Millisecond
	cfg.FetchRetryDelay = time.Millisecond
	return cfg
}

// scriptedFetcher returns one canned response per fetch, in order. A
// nil entry yields a transport error.
type scriptedFetcher struct {
	responses []*models.TaskResult
	calls     atomic.Int64
}

func (f *scriptedFetcher) FetchTaskStatus(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error) {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.responses) {
		return nil, fmt.Errorf("unexpected fetch %d for task %s", n+1, taskID)
	}
	if f.responses[n] == nil {
		return nil, errors.New("connection refused")
	}
	return f.responses[n], nil
}

func snapshot(taskID models.TaskID, status models.TaskStatus) *models.TaskResult {
	return &models.TaskResult{
		TaskID:    taskID,
		Status:    status,
		CreatedAt: time.Now().Add(-time.Minute),
		UpdatedAt: time.Now(),
	}
}

func TestWatch_TerminalStatusSingleFetch(t *testing.T) {
	terminal := []models.TaskStatus{
		models.TaskStatusCompleted,
		models.TaskStatusFailed,
		models.TaskStatusCancelled,
	}

	for _, status := range terminal {
		t.Run(string(status), func(t *testing.T) {
			fetcher := &scriptedFetcher{responses: []*models.TaskResult{snapshot("t1", status)}}
			w := NewWatcher(fetcher, testConfig())

			result, err := w.Watch(context.Background(), "t1")
			require.NoError(t, err)
			assert.Equal(t, status, result.Status)
			assert.EqualValues(t, 1, fetcher.calls.Load())
		})
	}
}

func TestWatch_NonTerminalReschedules(t *testing.T) {
	nonTerminal := []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusRunning,
	}

	for _, status := range nonTerminal {
		t.Run(string(status), func(t *testing.T) {
			fetcher := &scriptedFetcher{responses: []*models.TaskResult{
				snapshot("t1", status),
				snapshot("t1", models.TaskStatusCompleted),
			}}
			w := NewWatcher(fetcher, testConfig())

			result, err := w.Watch(context.Background(), "t1")
			require.NoError(t, err)
			assert.Equal(t, models.TaskStatusCompleted, result.Status)
			assert.EqualValues(t, 2, fetcher.calls.Load())
		})
	}
}

func TestWatch_ChainLengthMatchesResponses(t *testing.T) {
	// N non-terminal responses followed by one terminal one produce
	// exactly N+1 fetches.
	const n = 5
	responses := make([]*models.TaskResult, 0, n+1)
	for i := 0; i < n; i++ {
		responses = append(responses, snapshot("t1", models.TaskStatusRunning))
	}
	responses = append(responses, snapshot("t1", models.TaskStatusCompleted))

	fetcher := &scriptedFetcher{responses: responses}
	w := NewWatcher(fetcher, testConfig())

	result, err := w.Watch(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, result.Status)
	assert.EqualValues(t, n+1, fetcher.calls.Load())
}

func TestWatch_FetchFailureAbandonsChain(t *testing.T) {
	fetcher := &scriptedFetcher{responses: []*models.TaskResult{
		snapshot("t2", models.TaskStatusRunning),
		nil,
	}}
	w := NewWatcher(fetcher, testConfig())

	result, err := w.Watch(context.Background(), "t2")
	require.Error(t, err)
	assert.EqualValues(t, 2, fetcher.calls.Load())

	// The last successful snapshot is preserved, both in the return
	// value and in the shared tracker.
	require.NotNil(t, result)
	assert.Equal(t, models.TaskStatusRunning, result.Status)
	require.NotNil(t, w.Tracker().Current())
	assert.Equal(t, models.TaskStatusRunning, w.Tracker().Current().Status)
}

func TestWatch_FirstFetchFailure(t *testing.T) {
	fetcher := &scriptedFetcher{responses: []*models.TaskResult{nil}}
	w := NewWatcher(fetcher, testConfig())

	result, err := w.Watch(context.Background(), "t2")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Nil(t, w.Tracker().Current())
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestWatch_FullLifecycle(t *testing.T) {
	completed := snapshot("t1", models.TaskStatusCompleted)
	completed.Result = json.RawMessage(`{"ok":true}`)

	fetcher := &scriptedFetcher{responses: []*models.TaskResult{
		snapshot("t1", models.TaskStatusPending),
		snapshot("t1", models.TaskStatusRunning),
		completed,
	}}
	w := NewWatcher(fetcher, testConfig())

	var seen []models.TaskStatus
	w.SetOnUpdate(func(r models.TaskResult) {
		seen = append(seen, r.Status)
	})

	result, err := w.Watch(context.Background(), "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, fetcher.calls.Load())

	assert.Equal(t, models.TaskStatusCompleted, result.Status)
	assert.JSONEq(t, `{"ok":true}`, string(result.Result))
	assert.Equal(t, result, w.Tracker().Current())
	assert.Equal(t, []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusRunning,
		models.TaskStatusCompleted,
	}, seen)
}

// blockingFetcher parks every fetch until released.
type blockingFetcher struct {
	started  chan struct{}
	release  chan struct{}
	response *models.TaskResult
}

func (f *blockingFetcher) FetchTaskStatus(ctx context.Context, taskID models.TaskID) (*models.TaskResult, error) {
	f.started <- struct{}{}
	<-f.release
	return f.response, nil
}

func TestWatch_SupersededChainCannotClobber(t *testing.T) {
	// Chain for t3 starts first but its response arrives after a chain
	// for t4 has already begun and finished. The shared snapshot must
	// reflect t4.
	slow := &blockingFetcher{
		started:  make(chan struct{}, 1),
		release:  make(chan struct{}),
		response: snapshot("t3", models.TaskStatusCompleted),
	}
	w := NewWatcher(slow, testConfig())

	t3Done := make(chan *models.TaskResult, 1)
	go func() {
		result, _ := w.Watch(context.Background(), "t3")
		t3Done <- result
	}()
	<-slow.started

	// Second chain begins while t3's fetch is still in flight, which
	// supersedes t3's generation.
	gen := w.Tracker().Begin()
	t4 := snapshot("t4", models.TaskStatusCompleted)
	require.True(t, w.tracker.publish(gen, t4))

	close(slow.release)
	result := <-t3Done

	// t3's chain still observed its own snapshot, but the shared
	// reference kept t4's.
	require.NotNil(t, result)
	assert.Equal(t, models.TaskID("t3"), result.TaskID)
	assert.Equal(t, models.TaskID("t4"), w.Tracker().Current().TaskID)
}

func TestWatch_MaxAttempts(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPollAttempts = 3

	fetcher := &scriptedFetcher{responses: []*models.TaskResult{
		snapshot("t1", models.TaskStatusRunning),
		snapshot("t1", models.TaskStatusRunning),
		snapshot("t1", models.TaskStatusRunning),
	}}
	w := NewWatcher(fetcher, cfg)

	result, err := w.Watch(context.Background(), "t1")
	require.ErrorIs(t, err, ErrAttemptsExhausted)
	assert.Equal(t, models.TaskStatusRunning, result.Status)
	assert.EqualValues(t, 3, fetcher.calls.Load())
}

func TestWatch_MaxDuration(t *testing.T) {
	cfg := testConfig()
	cfg.PollInterval = 20 * time.Millisecond
	cfg.MaxPollDuration = 30 * time.Millisecond

	responses := make([]*models.TaskResult, 10)
	for i := range responses {
		responses[i] = snapshot("t1", models.TaskStatusPending)
	}
	fetcher := &scriptedFetcher{responses: responses}
	w := NewWatcher(fetcher, cfg)

	result, err := w.Watch(context.Background(), "t1")
	require.ErrorIs(t, err, ErrDurationExceeded)
	assert.Equal(t, models.TaskStatusPending, result.Status)
	assert.Less(t, int(fetcher.calls.Load()), 10)
}

func TestWatch_ContextCancellation(t *testing.T) {
	responses := make([]*models.TaskResult, 100)
	for i := range responses {
		responses[i] = snapshot("t1", models.TaskStatusRunning)
	}
	fetcher := &scriptedFetcher{responses: responses}
	w := NewWatcher(fetcher, testConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Millisecond)
	defer cancel()

	result, err := w.Watch(ctx, "t1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, result)
	assert.Equal(t, models.TaskStatusRunning, result.Status)
}

func TestWatch_FetchRetries(t *testing.T) {
	cfg := testConfig()
	cfg.FetchRetries = 2

	fetcher := &scriptedFetcher{responses: []*models.TaskResult{
		nil,
		nil,
		snapshot("t1", models.TaskStatusCompleted),
	}}
	w := NewWatcher(fetcher, cfg)

	result, err := w.Watch(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, result.Status)
	assert.EqualValues(t, 3, fetcher.calls.Load())
}

func TestWatch_FetchRetriesExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.FetchRetries = 1

	fetcher := &scriptedFetcher{responses: []*models.TaskResult{nil, nil}}
	w := NewWatcher(fetcher, cfg)

	result, err := w.Watch(context.Background(), "t1")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}
