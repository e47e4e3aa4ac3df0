// Package async provides helpers for running per-instance work in parallel.
package async

import (
	"context"
	"errors"
	"fmt"
)

// Task is one named unit of concurrent work.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel starts every task concurrently and waits for all of them.
// Failures are collected and joined so the caller sees every instance that
// misbehaved, not just the first one.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	results := make(chan result, len(tasks))
	for _, task := range tasks {
		task := task
		go func() {
			results <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var errs []error
	for range tasks {
		res := <-results
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.name, res.err))
		}
	}
	return errors.Join(errs...)
}
