package jobs

import (
	"context"
	"time"

	"github.com/cloo-solutions/plantrec/internal/logging"
)

// Task is one unit of periodic background work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Worker runs a Task on a fixed interval until stopped.
type Worker struct {
	task     Task
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

func NewWorker(task Task, interval time.Duration) *Worker {
	return &Worker{
		task:     task,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start blocks, running the task every interval. A failed run is logged
// and the loop continues.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	logging.Info().Str("task", w.task.Name()).Dur("interval", w.interval).Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Str("task", w.task.Name()).Msg("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			logging.Info().Str("task", w.task.Name()).Msg("worker stopped")
			return
		case <-ticker.C:
			if err := w.task.Run(ctx); err != nil {
				logging.Error().Err(err).Str("task", w.task.Name()).Msg("worker task failed")
			}
		}
	}
}

// Stop signals the loop and waits for it to exit. Start must be running.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
