// Package async provides utilities for parallel task execution.
//
// This package contains generic helpers for running multiple operations
// concurrently and collecting their errors. It backs the fan-out stages of
// the install pipeline, where one monitor runs per component and the stage
// barrier waits for all of them.
package async

import (
	"context"
	"errors"
	"fmt"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes all tasks concurrently and waits for every one of
// them to finish, regardless of individual failures. The returned error
// joins all task errors, each prefixed with its task name, so a stage
// barrier can report every failed component at once.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	for _, task := range tasks {
		go func() {
			err := task.Func(ctx)
			resultChan <- result{name: task.Name, err: err}
		}()
	}

	var errs []error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.name, res.err))
		}
	}

	return errors.Join(errs...)
}
