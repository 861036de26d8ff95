// Package server manages the background services that run alongside a
// command, such as the metrics endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Service represents a long-running component.
type Service interface {
	// Run blocks until ctx is cancelled or the service fails. A clean
	// shutdown returns nil.
	Run(ctx context.Context) error
}

// FuncService adapts a function into the Service interface.
type FuncService func(ctx context.Context) error

// Run calls f.
func (f FuncService) Run(ctx context.Context) error { return f(ctx) }

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started in order and stopped in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	services []namedService
	running  []*runningService
}

type namedService struct {
	name    string
	service Service
}

type runningService struct {
	name   string
	cancel context.CancelFunc
	done   chan error
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service. Services are started in the order they are
// added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Start launches every registered service that is not already running. Each
// service gets its own context derived from ctx.
func (l *Lifecycle) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ns := range l.services[len(l.running):] {
		svcCtx, cancel := context.WithCancel(ctx)
		rs := &runningService{name: ns.name, cancel: cancel, done: make(chan error, 1)}
		l.running = append(l.running, rs)

		l.logger.Debug("starting service", zap.String("service", ns.name))
		go func(svc Service) {
			start := time.Now()
			err := svc.Run(svcCtx)
			if err != nil {
				l.logger.Error("service failed",
					zap.String("service", rs.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(start)),
				)
			}
			rs.done <- err
		}(ns.service)
	}
}

// Stop cancels running services in reverse start order, waiting for each to
// return before stopping the next.
//
// Postcondition: no service is running; returns the services' errors joined,
// or nil.
func (l *Lifecycle) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	start := time.Now()
	var errs []error
	for i := len(l.running) - 1; i >= 0; i-- {
		rs := l.running[i]
		rs.cancel()
		if err := <-rs.done; err != nil {
			errs = append(errs, fmt.Errorf("service %s: %w", rs.name, err))
		}
		l.logger.Debug("service stopped", zap.String("service", rs.name))
	}
	l.running = nil
	l.logger.Debug("all services stopped", zap.Duration("elapsed", time.Since(start)))
	return errors.Join(errs...)
}
