package testutil

import (
	"errors"
	"sync"

	"identrust/internal/sentinel"
)

// Outcomes counts how a batch of concurrent calls ended.
type Outcomes struct {
	Successes int
	Conflicts int
	NotFound  int
	Failures  int
}

func (o Outcomes) Total() int {
	return o.Successes + o.Conflicts + o.NotFound + o.Failures
}

// RunConcurrent calls fn(0..n-1) from n goroutines at once and tallies the
// results. Store sentinels are recognised through any wrapping.
func RunConcurrent(n int, fn func(i int) error) Outcomes {
	var (
		mu    sync.Mutex
		out   Outcomes
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := range n {
		wg.Go(func() {
			<-start
			err := fn(i)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				out.Successes++
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				out.Conflicts++
			case errors.Is(err, sentinel.ErrNotFound):
				out.NotFound++
			default:
				out.Failures++
			}
		})
	}
	close(start)
	wg.Wait()
	return out
}
