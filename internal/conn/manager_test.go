// internal/conn/manager_test.go
package conn

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openavctl/lexibridge/internal/metrics"
)

// listen opens a loopback listener and returns its port.
func listen(t *testing.T) (net.Listener, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return ln, port
}

func newManager(t *testing.T, port int) *Manager {
	t.Helper()
	return New(Config{
		Host:          "127.0.0.1",
		Port:          port,
		DialTimeout:   time.Second,
		RetryInterval: 100 * time.Millisecond,
	}, zaptest.NewLogger(t))
}

func TestConnect_Succeeds(t *testing.T) {
	_, port := listen(t)
	m := newManager(t, port)
	defer m.Disconnect()

	require.True(t, m.Connect())
	require.True(t, m.IsConnected())
	require.NotNil(t, m.Conn())
	require.Equal(t, 0, m.Failures())
}

func TestConnect_Idempotent(t *testing.T) {
	ln, port := listen(t)
	m := newManager(t, port)
	defer m.Disconnect()

	require.True(t, m.Connect())
	first := m.Conn()

	// Second connect must not open a second session.
	require.True(t, m.Connect())
	require.Same(t, first, m.Conn())
	_ = ln
}

func TestConnect_RefusedIncrementsFailures(t *testing.T) {
	ln, port := listen(t)
	ln.Close() // port is now closed

	m := newManager(t, port)

	require.False(t, m.Connect())
	require.False(t, m.IsConnected())
	require.Equal(t, 1, m.Failures())
}

func TestConnect_RefusedBumpsFailureCounter(t *testing.T) {
	ln, port := listen(t)
	ln.Close()

	met := metrics.New(nil)
	m := New(Config{
		Host:           "127.0.0.1",
		Port:           port,
		DialTimeout:    time.Second,
		RetryInterval:  100 * time.Millisecond,
		FailureCounter: met.ConnectFailures,
	}, zaptest.NewLogger(t))

	require.False(t, m.Connect())
	require.Equal(t, 1.0, testutil.ToFloat64(met.ConnectFailures))

	// A throttled attempt never reaches the network and must not count.
	require.False(t, m.Connect())
	require.Equal(t, 1.0, testutil.ToFloat64(met.ConnectFailures))
}

func TestConnect_ThrottledAfterFailure(t *testing.T) {
	ln, port := listen(t)
	ln.Close()

	m := newManager(t, port)
	require.False(t, m.Connect())

	// Within the retry interval the manager must refuse without a
	// network attempt, leaving the failure count unchanged.
	require.False(t, m.Connect())
	require.Equal(t, 1, m.Failures())

	time.Sleep(120 * time.Millisecond)
	require.False(t, m.Connect())
	require.Equal(t, 2, m.Failures())
}

func TestConnect_SuccessResetsFailures(t *testing.T) {
	ln, port := listen(t)
	ln.Close()

	m := newManager(t, port)
	require.False(t, m.Connect())
	require.Equal(t, 1, m.Failures())

	time.Sleep(120 * time.Millisecond)

	ln2, err := net.Listen("tcp", "127.0.0.1:"+strconv.Itoa(port))
	if err != nil {
		t.Skipf("port %d not reusable: %v", port, err)
	}
	defer ln2.Close()
	defer m.Disconnect()

	require.True(t, m.Connect())
	require.Equal(t, 0, m.Failures())
}

func TestDisconnect_ClearsStateEvenWhenCloseFails(t *testing.T) {
	_, port := listen(t)
	m := newManager(t, port)

	require.True(t, m.Connect())

	// Close underneath the manager so its own close fails.
	require.NoError(t, m.Conn().Close())

	m.Disconnect()
	require.False(t, m.IsConnected())
	require.Nil(t, m.Conn())
}

func TestDisconnect_NoSessionIsNoop(t *testing.T) {
	_, port := listen(t)
	m := newManager(t, port)

	m.Disconnect()
	require.False(t, m.IsConnected())
}
