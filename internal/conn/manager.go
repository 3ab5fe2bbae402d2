// internal/conn/manager.go
package conn

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// failureLogThreshold is the consecutive-failure count past which
// connect failures log at error severity. Never a hard stop: the
// device may come back at any time.
const failureLogThreshold = 5

// DefaultRetryInterval is the minimum spacing between a failed connect
// attempt and the next one. Protects the device from reconnect storms.
const DefaultRetryInterval = 5 * time.Second

// Config is the minimal transport config the manager needs.
type Config struct {
	Host          string
	Port          int
	DialTimeout   time.Duration
	RetryInterval time.Duration

	// FailureCounter, when set, counts failed dial attempts.
	FailureCounter prometheus.Counter
}

// Manager owns the TCP connection to the receiver.
//
// The device tolerates very few simultaneous clients, so callers must
// hold the connection only for one operation cycle and then
// disconnect. Holding it open idle can evict the vendor's own app.
type Manager struct {
	mu sync.Mutex

	cfg Config
	log *zap.Logger

	conn        net.Conn
	connected   bool
	lastAttempt time.Time
	failures    int
}

// New creates a disconnected manager.
func New(cfg Config, log *zap.Logger) *Manager {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	return &Manager{cfg: cfg, log: log}
}

// Connect establishes the TCP session. Idempotent: returns true
// immediately when already connected. Returns false without touching
// the network when the previous attempt failed less than
// RetryInterval ago.
func (m *Manager) Connect() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected && m.conn != nil {
		return true
	}

	if m.failures > 0 && time.Since(m.lastAttempt) < m.cfg.RetryInterval {
		m.log.Debug("reconnect throttled",
			zap.Duration("wait", m.cfg.RetryInterval-time.Since(m.lastAttempt)))
		return false
	}

	m.lastAttempt = time.Now()
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))

	conn, err := net.DialTimeout("tcp", addr, m.cfg.DialTimeout)
	if err != nil {
		m.failures++
		if m.cfg.FailureCounter != nil {
			m.cfg.FailureCounter.Inc()
		}
		if m.failures >= failureLogThreshold {
			m.log.Error("connect failed",
				zap.String("addr", addr), zap.Int("failures", m.failures), zap.Error(err))
		} else {
			m.log.Warn("connect failed",
				zap.String("addr", addr), zap.Int("failures", m.failures), zap.Error(err))
		}
		return false
	}

	m.conn = conn
	m.connected = true
	m.failures = 0
	m.log.Info("connected", zap.String("addr", addr))
	return true
}

// Disconnect closes the session. Best effort: the connected flag and
// the handle are cleared even when the close itself fails.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.log.Debug("close failed", zap.Error(err))
		}
	}
	m.conn = nil
	m.connected = false
}

// IsConnected reports whether a session is currently open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Conn returns the live connection, or nil when disconnected.
func (m *Manager) Conn() net.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

// Failures returns the consecutive connect-failure count.
func (m *Manager) Failures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}
