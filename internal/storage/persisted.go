package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dexcompanion/internal/observability"
)

// Shape describes how a Persisted value is defaulted and copied.
type Shape[T any] struct {
	// Default returns the state used when no document exists.
	Default func() T
	// Clone returns a deep copy.
	Clone func(T) T
	// Normalize repairs a loaded state. Optional.
	Normalize func(T) T
}

// Persisted is an in-memory state mirrored to one whole document. Every
// mutation is written before it becomes visible.
//
// Safe for concurrent use. Mutations are serialized. Observers are called in
// subscription order with snapshots in commit order, one snapshot at a time,
// outside the state lock. When mutations race, one mutating goroutine may
// deliver snapshots committed by another; an observer may itself mutate.
type Persisted[T any] struct {
	mu      sync.Mutex
	docs    Documents
	name    string
	shape   Shape[T]
	state   T
	logger  *zap.Logger
	metrics *observability.StoreMetrics

	obsMu     sync.Mutex
	observers []observer[T]
	nextObs   int
	pending   []T
	draining  bool
}

type observer[T any] struct {
	id int
	fn func(T)
}

// OpenPersisted loads document name from docs, falling back to
// shape.Default when it does not exist.
//
// Precondition: docs and logger must be non-nil; shape.Default and
// shape.Clone must be non-nil.
// Postcondition: Returns the Persisted value and whether the document
// existed, or a non-nil error if it exists but cannot be read.
func OpenPersisted[T any](ctx context.Context, docs Documents, name string, shape Shape[T], logger *zap.Logger, metrics *observability.StoreMetrics) (*Persisted[T], bool, error) {
	st, found, err := LoadJSON[T](ctx, docs, name)
	if err != nil {
		return nil, false, err
	}
	if !found {
		st = shape.Default()
	}
	if shape.Normalize != nil {
		st = shape.Normalize(st)
	}
	return &Persisted[T]{
		docs:      docs,
		name:      name,
		shape:     shape,
		state:     st,
		logger:    logger,
		metrics:   metrics,
	}, found, nil
}

// Name returns the document name.
func (p *Persisted[T]) Name() string { return p.name }

// Get returns a copy of the current state.
func (p *Persisted[T]) Get() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shape.Clone(p.state)
}

// Subscribe registers fn for change notifications and returns a function
// that unregisters it.
func (p *Persisted[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	p.obsMu.Lock()
	defer p.obsMu.Unlock()
	id := p.nextObs
	p.nextObs++
	p.observers = append(p.observers, observer[T]{id: id, fn: fn})
	return func() {
		p.obsMu.Lock()
		defer p.obsMu.Unlock()
		p.observers = slices.DeleteFunc(p.observers, func(o observer[T]) bool { return o.id == id })
	}
}

// Apply runs mutate on a copy of the current state, writes the result, and
// only then makes it current. op names the mutation in logs and metrics.
//
// Postcondition: on a write failure the current state is unchanged and the
// error is returned wrapped with op.
func (p *Persisted[T]) Apply(ctx context.Context, op string, mutate func(*T)) (T, error) {
	p.mu.Lock()
	next := p.shape.Clone(p.state)
	mutate(&next)
	size, err := SaveJSON(ctx, p.docs, p.name, next)
	p.metrics.Mutation(p.name, op, size, err)
	if err != nil {
		p.mu.Unlock()
		p.logger.Warn("document write failed", zap.String("op", op), zap.String("document", p.name), zap.Error(err))
		var zero T
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	p.state = next
	snapshot := p.shape.Clone(next)
	p.enqueue(snapshot)
	p.mu.Unlock()

	p.logger.Debug("document persisted", zap.String("op", op), zap.String("document", p.name), zap.Int("bytes", size))
	p.drain()
	return snapshot, nil
}

// Clear deletes the document and resets the state to shape.Default without
// writing a new document.
func (p *Persisted[T]) Clear(ctx context.Context) error {
	p.mu.Lock()
	if err := p.docs.Delete(ctx, p.name); err != nil {
		p.mu.Unlock()
		p.metrics.Mutation(p.name, "clear", 0, err)
		return fmt.Errorf("clear: %w", err)
	}
	p.state = p.shape.Default()
	p.enqueue(p.shape.Clone(p.state))
	p.mu.Unlock()

	p.metrics.Mutation(p.name, "clear", 0, nil)
	p.logger.Debug("document cleared", zap.String("document", p.name))
	p.drain()
	return nil
}

// enqueue queues st for delivery.
//
// Precondition: p.mu is held, so the queue follows commit order.
func (p *Persisted[T]) enqueue(st T) {
	p.obsMu.Lock()
	p.pending = append(p.pending, st)
	p.obsMu.Unlock()
}

// drain delivers queued snapshots until the queue is empty. Only one
// goroutine drains at a time; any other caller returns at once and its
// snapshot is delivered by the active drainer.
func (p *Persisted[T]) drain() {
	p.obsMu.Lock()
	if p.draining {
		p.obsMu.Unlock()
		return
	}
	p.draining = true
	for len(p.pending) > 0 {
		st := p.pending[0]
		p.pending[0] = *new(T)
		p.pending = p.pending[1:]
		fns := make([]func(T), len(p.observers))
		for i, o := range p.observers {
			fns[i] = o.fn
		}
		p.obsMu.Unlock()
		for _, fn := range fns {
			fn(p.shape.Clone(st))
		}
		p.obsMu.Lock()
	}
	p.draining = false
	p.obsMu.Unlock()
}
