package workers

import (
	"context"
	"errors"
	"sync"
)

type Workers struct {
	workers []Worker
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every worker and waits for all of them. The first failure
// cancels the others; errors from context cancellation are not reported.
func (w *Workers) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, worker := range w.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := worker.Run(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				return
			}
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			cancel()
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
