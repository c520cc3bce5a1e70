// Package cleanup implements a registry for deferred best-effort cleanup of
// benchmark artifacts. Tasks are collected while a run progresses and later
// executed in a guaranteed block, regardless of how the run ended.
package cleanup

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
)

type task struct {
	name string
	fn   func() error
}

// Registry is a collection of named cleanup functions for delayed execution.
type Registry struct {
	sync.Mutex
	tasks []task
}

// NewRegistry returns a pointer to a new [Registry].
func NewRegistry() *Registry {
	return &Registry{
		tasks: []task{},
	}
}

// Add registers a named cleanup function for later execution. Functions with
// parameters can be added by invoking a parameterized function that
// immediately returns a func() error, capturing any parameters in the closure.
func (r *Registry) Add(name string, fn func() error) {
	r.Lock()
	defer r.Unlock()

	r.tasks = append(r.tasks, task{name: name, fn: fn})
}

// Run executes all registered cleanup functions in reverse registration
// order, like deferred calls would. Failures never abort the remaining
// tasks; they are aggregated into the returned error.
func (r *Registry) Run() error {
	r.Lock()
	defer r.Unlock()

	var result *multierror.Error

	for i := len(r.tasks) - 1; i >= 0; i-- {
		t := r.tasks[i]

		if err := t.fn(); err != nil {
			slog.Warn("Could not fully clean up artifact.",
				"artifact", t.name,
				"err", err,
			)
			result = multierror.Append(result, fmt.Errorf("(cleanup) %s: %w", t.name, err))
		}
	}

	r.tasks = nil

	return result.ErrorOrNil() //nolint:wrapcheck
}
