// Package lifecycle manages the ordered startup and teardown of the per-registry
// session contexts used by the streamable HTTP transport.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// Context is one startable/closable runtime context, typically a registry's
// session manager.
type Context struct {
	Name  string
	Start func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// Manager opens contexts in declared order and guarantees every opened
// context is closed again on every exit path: a failed startup unwinds the
// contexts opened so far before the error is returned, and Close tears down
// the rest in reverse order.
type Manager struct {
	logger   *slog.Logger
	contexts []Context

	mu     sync.Mutex
	opened []Context
	closed bool
}

func NewManager(logger *slog.Logger, contexts ...Context) *Manager {
	return &Manager{logger: logger, contexts: contexts}
}

// Start opens every context in order. If one fails, the already-opened
// contexts are closed in reverse order and the startup error is returned
// wrapped; nothing stays open after a failed Start.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.contexts {
		m.logger.Info("Starting session context", slog.String("context", c.Name))
		if err := m.startOne(ctx, c); err != nil {
			m.logger.Error("Session context failed to start",
				slog.String("context", c.Name),
				slog.String("error", err.Error()))
			unwindErr := m.closeOpenedLocked(ctx)
			return pkgerrors.Wrapf(errors.Join(err, unwindErr), "failed to start context %s", c.Name)
		}
		m.opened = append(m.opened, c)
	}
	return nil
}

func (m *Manager) startOne(ctx context.Context, c Context) error {
	if c.Start == nil {
		return nil
	}
	return c.Start(ctx)
}

// Close tears down every opened context in reverse order, best-effort,
// joining any close errors. Calling Close more than once is a no-op.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.closeOpenedLocked(ctx)
}

func (m *Manager) closeOpenedLocked(ctx context.Context) error {
	var errs []error
	for i := len(m.opened) - 1; i >= 0; i-- {
		c := m.opened[i]
		if c.Close == nil {
			continue
		}
		m.logger.Info("Closing session context", slog.String("context", c.Name))
		if err := c.Close(ctx); err != nil {
			m.logger.Error("Session context failed to close",
				slog.String("context", c.Name),
				slog.String("error", err.Error()))
			errs = append(errs, pkgerrors.Wrapf(err, "close %s", c.Name))
		}
	}
	m.opened = nil
	return errors.Join(errs...)
}
