package search

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent search handed to RunAll.
type Job[S comparable] struct {
	Name    string
	Problem Problem[S]
	Start   S
}

// JobResult pairs a job with its outcome. Err is set when that run was
// aborted; other jobs are unaffected.
type JobResult[S comparable] struct {
	Name   string
	Result Result[S]
	Err    error
}

// RunAll runs jobs on a pool of WithWorkers goroutines and returns the
// results in job order. Each run owns its own frontier and explored set.
// The returned error is only ctx's error when ctx ends before all jobs start.
func RunAll[S comparable](ctx context.Context, jobs []Job[S], options ...Option) ([]JobResult[S], error) {
	searchOptions, err := buildOptions(options)
	if err != nil {
		return nil, err
	}

	results := make([]JobResult[S], len(jobs))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(searchOptions.NumberOfWorkers)

	for i, job := range jobs {
		if err := groupContext.Err(); err != nil {
			break
		}
		group.Go(func() error {
			result, err := Search(groupContext, job.Problem, job.Start, options...)
			results[i] = JobResult[S]{Name: job.Name, Result: result, Err: err}
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
