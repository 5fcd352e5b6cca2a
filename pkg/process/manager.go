// Package process ties the lifetime of CLI operations to OS signals.
package process

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/poltergeist/mlfq/pkg/logger"
)

// Manager cancels a context on SIGINT or SIGTERM and runs shutdown
// handlers in reverse registration order.
type Manager struct {
	logger           logger.Logger
	shutdownHandlers []func()
	signals          chan os.Signal
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

// NewManager creates a new process manager
func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		logger:  log.WithComponent("process"),
		signals: make(chan os.Signal, 1),
	}
}

// RegisterShutdownHandler adds a shutdown handler
func (m *Manager) RegisterShutdownHandler(handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownHandlers = append(m.shutdownHandlers, handler)
}

// Start begins listening for signals. The returned context is cancelled
// on the first signal, when ctx ends, or on Stop.
func (m *Manager) Start(ctx context.Context) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ctx
	}
	m.running = true

	ctx, m.cancel = context.WithCancel(ctx)
	signal.Notify(m.signals, os.Interrupt, syscall.SIGTERM)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case <-ctx.Done():
		case sig := <-m.signals:
			m.logger.Info("Received signal", logger.WithField("signal", sig))
		}
		m.handleShutdown()
	}()
	return ctx
}

// Stop cancels the context handed out by Start and waits for the shutdown
// handlers to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// IsRunning reports whether Start was called and shutdown has not run.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) handleShutdown() {
	signal.Stop(m.signals)

	m.mu.Lock()
	handlers := make([]func(), len(m.shutdownHandlers))
	copy(handlers, m.shutdownHandlers)
	m.running = false
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.logger.Debug("Shutting down", logger.WithField("handlers", len(handlers)))
	for i := len(handlers) - 1; i >= 0; i-- {
		handlers[i]()
	}
}
