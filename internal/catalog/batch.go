package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/dexcompanion/internal/config"
)

// BatchPolicy decides what a batch fetch returns when some requests fail.
type BatchPolicy string

const (
	// AllOrNothing fails the whole batch on the first error.
	AllOrNothing BatchPolicy = config.BatchAllOrNothing
	// KeepPartial returns every successful result alongside a *BatchError.
	KeepPartial BatchPolicy = config.BatchKeepPartial
)

// Failure is one failed key in a batch.
type Failure struct {
	Key string
	Err error
}

// BatchError lists the keys that failed under KeepPartial.
type BatchError struct {
	Failures []Failure
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Key, f.Err)
	}
	return fmt.Sprintf("%d of batch failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes each failure so errors.Is(err, ErrNotFound) works.
func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}

// gather fetches every key concurrently and joins before returning. Results
// keep the order of keys regardless of completion order.
//
// Precondition: fetch must be safe for concurrent use.
// Postcondition: Under AllOrNothing returns all results or (nil, first error).
// Under KeepPartial returns the successes in key order and a *BatchError when
// any key failed. A cancelled ctx is always returned as an error.
func gather[T any](ctx context.Context, policy BatchPolicy, limit int, keys []string, fetch func(context.Context, string) (T, error)) ([]T, error) {
	if len(keys) == 0 {
		return []T{}, nil
	}
	results := make([]T, len(keys))

	if policy != KeepPartial {
		g, gCtx := errgroup.WithContext(ctx)
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, key := range keys {
			g.Go(func() error {
				v, err := fetch(gCtx, key)
				if err != nil {
					return fmt.Errorf("fetching %q: %w", key, err)
				}
				results[i] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return results, nil
	}

	errs := make([]error, len(keys))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, key := range keys {
		g.Go(func() error {
			results[i], errs[i] = fetch(ctx, key)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(keys))
	var batchErr BatchError
	for i, key := range keys {
		if errs[i] != nil {
			batchErr.Failures = append(batchErr.Failures, Failure{Key: key, Err: errs[i]})
			continue
		}
		out = append(out, results[i])
	}
	if len(batchErr.Failures) > 0 {
		return out, &batchErr
	}
	return out, nil
}

// IsPartial reports whether err is a *BatchError, meaning the accompanying
// results are usable but incomplete.
func IsPartial(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}
