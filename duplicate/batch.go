package duplicate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// CheckBatch runs independent checks on a worker pool.
// Results are returned in request order; a request that failed has a nil
// result and its error is joined into the returned error.
func (d *Detector) CheckBatch(ctx context.Context, requests []Request) ([]*Result, error) {
	results := make([]*Result, len(requests))
	if len(requests) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(min(d.workers, len(requests)))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	errs := make([]error, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			result, err := d.Check(ctx, req)
			if err != nil {
				errs[i] = fmt.Errorf("request %d: %w", i, err)
				return
			}
			results[i] = result
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = fmt.Errorf("request %d: %w", i, submitErr)
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		d.logger.Warn("batch duplicate check incomplete", "requests", len(requests), "err", err)
		return results, err
	}
	return results, nil
}
