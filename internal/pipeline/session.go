package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/nao1215/domainscan/internal/browser"
)

// SessionManager owns the browser session of one orchestrator. A session is
// launched on first use and closed after batchSize domains; the next domain
// launches a fresh one.
type SessionManager struct {
	launcher  browser.Launcher
	batchSize int
	logger    *slog.Logger

	// reclaim is called after a session is recycled.
	reclaim func()

	session browser.Session
	used    int

	opened   int
	recycles int
}

// NewSessionManager creates a SessionManager recycling after batchSize domains.
func NewSessionManager(launcher browser.Launcher, batchSize int, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &SessionManager{
		launcher:  launcher,
		batchSize: batchSize,
		logger:    logger,
		reclaim:   debug.FreeOSMemory,
	}
}

// Acquire returns the current session, launching one if none is open.
func (m *SessionManager) Acquire(ctx context.Context) (browser.Session, error) {
	if m.session != nil {
		return m.session, nil
	}

	session, err := m.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	m.session = session
	m.used = 0
	m.opened++
	m.logger.Info("browser session started", "session", m.opened)
	return session, nil
}

// Done marks one domain as processed in the current session. When the batch
// is full the session is closed and memory is handed back to the OS.
func (m *SessionManager) Done() {
	if m.session == nil {
		return
	}
	m.used++
	if m.used < m.batchSize {
		return
	}

	m.closeSession()
	m.recycles++
	m.reclaim()
	m.logger.Info("browser session recycled", "session", m.opened, "domains", m.batchSize)
}

// Reset closes the current session without counting a recycle. It is used
// when the session itself looks broken.
func (m *SessionManager) Reset() {
	m.closeSession()
}

// Close closes the current session, if any.
func (m *SessionManager) Close() error {
	m.closeSession()
	return nil
}

func (m *SessionManager) closeSession() {
	if m.session == nil {
		return
	}
	if err := m.session.Close(); err != nil {
		m.logger.Warn("failed to close browser session", "error", err)
	}
	m.session = nil
	m.used = 0
}

// Opened returns the number of sessions launched.
func (m *SessionManager) Opened() int {
	return m.opened
}

// Recycles returns the number of sessions closed because their batch was full.
func (m *SessionManager) Recycles() int {
	return m.recycles
}
