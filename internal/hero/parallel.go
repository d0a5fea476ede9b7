package hero

import (
	"fmt"
	"runtime"
	"sync"
)

// forEachParallel calls fn for every path using a bounded pool of workers.
// Once fn fails, remaining paths are skipped and the first error is
// returned, wrapped with its path.
func forEachParallel(paths []string, workers int, fn func(string) error) error {
	if len(paths) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan string, len(paths))
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		failed   = make(chan struct{})
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				select {
				case <-failed:
					return
				default:
				}
				if err := fn(p); err != nil {
					once.Do(func() {
						firstErr = fmt.Errorf("writing %s: %w", p, err)
						close(failed)
					})
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
