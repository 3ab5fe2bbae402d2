// internal/httpapi/server_test.go
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/openavctl/lexibridge/internal/driver"
	"github.com/openavctl/lexibridge/internal/protocol"
)

// okTransport accepts everything and answers queries from a fixed map.
type okTransport struct {
	responses map[byte][]byte
	commands  int
}

func (f *okTransport) Connect() bool { return true }
func (f *okTransport) Disconnect()   {}

func (f *okTransport) SendCommand(frame []byte) bool {
	f.commands++
	return true
}
func (f *okTransport) SendQuery(frame []byte) []byte {
	return f.responses[frame[2]]
}
func (f *okTransport) SendQueryTimeout(frame []byte, _ time.Duration) []byte {
	return f.SendQuery(frame)
}

func newServer(t *testing.T) (*Server, *okTransport, *driver.Driver) {
	t.Helper()

	tr := &okTransport{responses: map[byte][]byte{
		protocol.CmdPower:         {0x01},
		protocol.CmdVolume:        {0x32},
		protocol.CmdMute:          {0x01},
		protocol.CmdCurrentSource: {0x02},
	}}

	drv := driver.New(tr, driver.Config{
		SettleDelay:       time.Millisecond,
		SourceSettleDelay: time.Millisecond,
		MinSpacing:        time.Millisecond,
		PowerOnWindow:     50 * time.Millisecond,
	}, nil, zaptest.NewLogger(t))

	return New(drv, zaptest.NewLogger(t)), tr, drv
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestGetStatus(t *testing.T) {
	s, _, drv := newServer(t)
	drv.Poll()

	w := do(t, s, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "on", resp["power"])
	assert.InDelta(t, 0.51, resp["volume_level"].(float64), 0.001)
	assert.Equal(t, "BD", resp["source"])
}

func TestGetSources(t *testing.T) {
	s, _, _ := newServer(t)

	w := do(t, s, http.MethodGet, "/api/v1/sources", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BD")
}

func TestSetVolume_Valid(t *testing.T) {
	s, tr, drv := newServer(t)

	w := do(t, s, http.MethodPut, "/api/v1/volume", `{"level":0.5}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, tr.commands)
	assert.Equal(t, 50, drv.Snapshot().Volume)
}

func TestSetVolume_OutOfRangeIs400(t *testing.T) {
	s, tr, _ := newServer(t)

	w := do(t, s, http.MethodPut, "/api/v1/volume", `{"level":1.5}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, tr.commands, "domain guard must reject before any socket write")
}

func TestSelectSource_UnknownIs400(t *testing.T) {
	s, _, _ := newServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/source", `{"name":"LASERDISC"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectSource_Valid(t *testing.T) {
	s, _, drv := newServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/source", `{"name":"BD"}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "BD", drv.Snapshot().Source)
}

func TestPowerOn(t *testing.T) {
	s, tr, drv := newServer(t)

	w := do(t, s, http.MethodPost, "/api/v1/power/on", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, tr.commands)
	assert.Equal(t, "on", string(drv.Snapshot().Power))
	assert.False(t, drv.Snapshot().Ready, "optimistic on is never immediately ready")
}

func TestHealthz(t *testing.T) {
	s, _, _ := newServer(t)

	w := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s, _, _ := newServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down after cancel")
	}
}
