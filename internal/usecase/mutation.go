package usecase

import (
	"context"
	"fmt"
	"sync"
)

// MutationController serializes optimistic writes per scope. A mutation
// applies its local change first, then pushes to the backend; a backend
// failure triggers the rollback so the serving snapshot never keeps state the
// spreadsheet rejected.
type MutationController struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

func NewMutationController() *MutationController {
	return &MutationController{inFlight: make(map[string]bool)}
}

// Busy reports whether any mutation currently holds the scope. The
// reconciler checks this before swapping a refreshed snapshot in.
func (c *MutationController) Busy(scope string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[scope]
}

// Run executes one optimistic mutation. apply performs the local change and
// returns the rollback that undoes it; returning an error from apply
// short-circuits before any network traffic. remote pushes the change to the
// backend and is never retried.
func (c *MutationController) Run(
	ctx context.Context,
	scope string,
	apply func(ctx context.Context) (rollback func(ctx context.Context), err error),
	remote func(ctx context.Context) error,
) error {
	if apply == nil {
		return fmt.Errorf("%w: mutation apply step is required", ErrInvalidInput)
	}

	c.mu.Lock()
	if c.inFlight[scope] {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMutationInFlight, scope)
	}
	c.inFlight[scope] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, scope)
		c.mu.Unlock()
	}()

	rollback, err := apply(ctx)
	if err != nil {
		return err
	}
	if remote == nil {
		return nil
	}

	if err := remote(ctx); err != nil {
		if rollback != nil {
			rollback(ctx)
		}
		return err
	}
	return nil
}
