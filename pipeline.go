package nextconvert

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

func generateJobs(ctx context.Context, jobs []Job) (<-chan Job, <-chan error) {
	out := make(chan Job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, job := range jobs {
			select {
			case out <- job:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()
	return out, errc
}

func (c *Converter) jobWorker(ctx context.Context, in <-chan Job) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for job := range in {
			if err := ctx.Err(); err != nil {
				errc <- err
				return
			}
			c.logger.Printf("Running %s\n", job)
			if err := job.run(c); err != nil {
				errc <- errors.Wrapf(err, "%s", job)
				return
			}
		}
	}()
	return errc
}

// waitForPipeline returns the first error from any stage, cancelling the
// rest of the pipeline, once every stage has finished.
func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Build runs every job using up to workers concurrent workers, or one per
// CPU if workers is not positive. The first failing job stops any jobs not
// yet started and its error is returned.
func (c *Converter) Build(ctx context.Context, jobs []Job, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	in, errc := generateJobs(ctx, jobs)
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errcList = append(errcList, c.jobWorker(ctx, in))
	}

	return waitForPipeline(cancelFunc, errcList...)
}
