package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/plantrec/internal/cache"
)

type MockTask struct {
	mock.Mock
	runs atomic.Int32
}

func (m *MockTask) Name() string { return "mock" }

func (m *MockTask) Run(ctx context.Context) error {
	m.runs.Add(1)
	args := m.Called(ctx)
	return args.Error(0)
}

func TestWorker_RunsTaskUntilStopped(t *testing.T) {
	task := new(MockTask)
	task.On("Run", mock.Anything).Return(nil)

	w := NewWorker(task, 5*time.Millisecond)
	go w.Start(context.Background())

	require.Eventually(t, func() bool { return task.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	after := task.runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, task.runs.Load())
}

func TestWorker_ContinuesAfterFailure(t *testing.T) {
	task := new(MockTask)
	task.On("Run", mock.Anything).Return(errors.New("boom"))

	w := NewWorker(task, 5*time.Millisecond)
	go w.Start(context.Background())

	require.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	w.Stop()
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	task := new(MockTask)
	task.On("Run", mock.Anything).Return(nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(task, time.Hour)
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

type countingSweeper struct {
	calls int
	n     int
}

func (s *countingSweeper) Sweep() int {
	s.calls++
	return s.n
}

func TestCacheSweeper_Run(t *testing.T) {
	store := &countingSweeper{n: 3}
	s := NewCacheSweeper(store)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, "cache_sweep", s.Name())
}

func TestCacheSweeper_DropsExpiredMemoryEntries(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryBackend(10)
	require.NoError(t, backend.Set(ctx, "plants:a", []byte("1"), time.Millisecond))
	require.NoError(t, backend.Set(ctx, "plants:b", []byte("2"), time.Hour))

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, NewCacheSweeper(backend).Run(ctx))

	assert.Equal(t, 1, backend.Len())
}
